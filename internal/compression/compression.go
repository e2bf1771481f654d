// Package compression picks a decompressor for catalog documents by file
// name suffix.
package compression

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies a compression format.
type Codec string

const (
	None Codec = ""
	Gzip Codec = "gzip"
	Zstd Codec = "zstd"
)

var suffixes = []struct {
	suffix string
	codec  Codec
}{
	{".gz", Gzip},
	{".zst", Zstd},
}

// Detect returns the codec of name and the name without its compression
// suffix.
func Detect(name string) (Codec, string) {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.codec, name[:len(name)-len(s.suffix)]
		}
	}
	return None, name
}

// NewReader wraps r with the decompressor for codec.
func NewReader(codec Codec, r io.Reader) (io.ReadCloser, error) {
	switch codec {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

// NewWriter wraps w with the compressor for codec. Level follows the zstd
// speed presets: 1 fastest, 2 default, 3 better compression.
func NewWriter(codec Codec, w io.Writer, level int) (io.WriteCloser, error) {
	switch codec {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		gzLevel := gzip.DefaultCompression
		switch level {
		case 1:
			gzLevel = gzip.BestSpeed
		case 3:
			gzLevel = gzip.BestCompression
		}
		return gzip.NewWriterLevel(w, gzLevel)
	case Zstd:
		var encoderLevel zstd.EncoderLevel
		switch level {
		case 1:
			encoderLevel = zstd.SpeedFastest
		case 3:
			encoderLevel = zstd.SpeedBetterCompression
		default:
			encoderLevel = zstd.SpeedDefault
		}
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(encoderLevel),
			zstd.WithEncoderConcurrency(1),
		)
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
