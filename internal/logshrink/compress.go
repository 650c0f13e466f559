package logshrink

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// compressionLevel is fixed at 3, part of the archive contract; it is
// documented, not negotiated.
const compressionLevel = zstd.SpeedDefault

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error

	decoderOnce sync.Once
	decoder     *zstd.Decoder
	decoderErr  error
)

func sharedEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(compressionLevel))
	})
	return encoder, encoderErr
}

func sharedDecoder() (*zstd.Decoder, error) {
	decoderOnce.Do(func() {
		decoder, decoderErr = zstd.NewReader(nil)
	})
	return decoder, decoderErr
}

// compressBlock runs the streaming entropy coder (zstd, level 3) over
// a serialised column, producing the bytes stored as a block.
func compressBlock(raw []byte) ([]byte, error) {
	enc, err := sharedEncoder()
	if err != nil {
		return nil, fmt.Errorf("logshrink: creating zstd encoder: %w", err)
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

// decompressBlock reverses compressBlock. A corrupt or truncated block
// surfaces as ErrFormatCorrupt.
func decompressBlock(block []byte) ([]byte, error) {
	dec, err := sharedDecoder()
	if err != nil {
		return nil, fmt.Errorf("logshrink: creating zstd decoder: %w", err)
	}
	raw, err := dec.DecodeAll(block, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing block: %v", ErrFormatCorrupt, err)
	}
	return raw, nil
}
