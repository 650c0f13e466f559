package logshrink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// This file implements the compact, self-describing, length-prefixed
// binary framing used both for the per-column payloads and the outer
// container. The archive format is a fixed, documented on-disk
// contract that must stay bit-exact across versions, so it is
// hand-rolled with encoding/binary rather than delegated to a
// general-purpose codec. Every multi-byte integer is little-endian.

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func putString(buf *bytes.Buffer, s string) {
	putUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func putOptionalUint32(buf *bytes.Buffer, v *uint32) {
	if v == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	putUint32(buf, *v)
}

func putBlock(buf *bytes.Buffer, block []byte) {
	putUint32(buf, uint32(len(block)))
	buf.Write(block)
}

// byteReader is a small cursor over a decoded buffer, returning
// ErrFormatCorrupt rather than panicking on truncation.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("%w: unexpected end of data", ErrFormatCorrupt)
	}
	return nil
}

func (r *byteReader) uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) int64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return int64(v), nil
}

func (r *byteReader) byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) string() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *byteReader) optionalUint32() (*uint32, error) {
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	v, err := r.uint32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *byteReader) block() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	return r.bytes(int(n))
}

func (r *byteReader) done() bool { return r.pos >= len(r.data) }
