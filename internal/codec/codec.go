// Package codec compresses CSV payloads for storage and transit.
//
// A payload travels as Content{Type, Compression, Value}. The compression tag
// selects the decoder, so content written with an older algorithm stays
// readable after the default changes.
package codec

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the algorithm used for Content.Value.
type Compression string

const (
	Snappy Compression = "Snappy"
	Zstd   Compression = "Zstd"
	None   Compression = "None"
)

// ContentTypeCSV is the only content type accepted for batch uploads.
const ContentTypeCSV = "text/csv"

// maxDecodedSize bounds decompressed output to guard against decompression bombs.
const maxDecodedSize = 64 << 20

// Content is a tagged, possibly compressed payload. Value is base64 in JSON.
type Content struct {
	Type        string      `json:"type"`
	Compression Compression `json:"compression"`
	Value       []byte      `json:"value"`
}

// DecompressionError reports corrupt, truncated or oversized input.
type DecompressionError struct {
	Compression Compression
	Err         error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress %s content: %v", e.Compression, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// ErrUnknownCompression is returned for a compression tag with no decoder.
var ErrUnknownCompression = errors.New("unknown compression")

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
)

// Compress compresses b with Snappy.
func Compress(b []byte) []byte {
	return snappy.Encode(nil, b)
}

// Decompress reverses Compress.
func Decompress(b []byte) ([]byte, error) {
	return decode(Snappy, b)
}

// Encode compresses raw with the given algorithm and tags the result.
func Encode(contentType string, c Compression, raw []byte) (Content, error) {
	var value []byte
	switch c {
	case Snappy:
		value = snappy.Encode(nil, raw)
	case Zstd:
		value = zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
	case None:
		value = append([]byte(nil), raw...)
	default:
		return Content{}, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
	return Content{Type: contentType, Compression: c, Value: value}, nil
}

// Decode returns the raw payload, dispatching on the compression tag.
func (c Content) Decode() ([]byte, error) {
	return decode(c.Compression, c.Value)
}

func decode(c Compression, value []byte) ([]byte, error) {
	switch c {
	case Snappy:
		n, err := snappy.DecodedLen(value)
		if err != nil {
			return nil, &DecompressionError{Compression: c, Err: err}
		}
		if n > maxDecodedSize {
			return nil, &DecompressionError{Compression: c, Err: fmt.Errorf("decoded size %d exceeds limit", n)}
		}
		out, err := snappy.Decode(nil, value)
		if err != nil {
			return nil, &DecompressionError{Compression: c, Err: err}
		}
		return out, nil
	case Zstd:
		out, err := zstdDecoder.DecodeAll(value, nil)
		if err != nil {
			return nil, &DecompressionError{Compression: c, Err: err}
		}
		return out, nil
	case None:
		return append([]byte(nil), value...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}

// ParseCompression maps a tag string to a Compression, case-sensitively as
// stored. An empty tag means Snappy.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "":
		return Snappy, nil
	case Snappy, Zstd, None:
		return Compression(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}
