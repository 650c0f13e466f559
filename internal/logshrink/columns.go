package logshrink

import "bytes"

// This file serialises and deserialises the ten typed record columns
// into the raw payload that gets handed to the entropy coder. Each
// column is self-describing: a uint32 element count followed by the
// elements.

func serializeInt64Column(values []int64) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	for _, v := range values {
		putInt64(&buf, v)
	}
	return buf.Bytes()
}

func deserializeInt64Column(data []byte) ([]int64, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		v, err := r.int64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func serializeUint8Column(values []uint8) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	buf.Write(values)
	return buf.Bytes()
}

func deserializeUint8Column(data []byte) ([]uint8, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out, err := r.bytes(int(n))
	if err != nil {
		return nil, err
	}
	cp := make([]uint8, n)
	copy(cp, out)
	return cp, nil
}

func serializeOptionalUint32Column(values []*uint32) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	for _, v := range values {
		putOptionalUint32(&buf, v)
	}
	return buf.Bytes()
}

func deserializeOptionalUint32Column(data []byte) ([]*uint32, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]*uint32, n)
	for i := range out {
		v, err := r.optionalUint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func serializeUint32Column(values []uint32) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	for _, v := range values {
		putUint32(&buf, v)
	}
	return buf.Bytes()
}

func deserializeUint32Column(data []byte) ([]uint32, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := r.uint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func serializeVariablesColumn(values [][]string) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	for _, vars := range values {
		putUint32(&buf, uint32(len(vars)))
		for _, v := range vars {
			putString(&buf, v)
		}
	}
	return buf.Bytes()
}

func deserializeVariablesColumn(data []byte) ([][]string, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([][]string, n)
	for i := range out {
		m, err := r.uint32()
		if err != nil {
			return nil, err
		}
		vars := make([]string, m)
		for j := range vars {
			s, err := r.string()
			if err != nil {
				return nil, err
			}
			vars[j] = s
		}
		out[i] = vars
	}
	return out, nil
}

func serializeBoolColumn(values []bool) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(values)))
	for _, v := range values {
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

func deserializeBoolColumn(data []byte) ([]bool, error) {
	r := newByteReader(data)
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i := range out {
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		out[i] = b != 0
	}
	return out, nil
}
