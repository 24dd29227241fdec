// Package compression provides the codecs scenepool catalogs may be stored
// with. The codec is chosen from the file extension, so "catalog.yaml.zst"
// is a zstd-compressed YAML catalog.
//
// # Algorithms
//
//   - Zstd (.zst): best ratio, the default for shipped catalogs
//   - LZ4 (.lz4): fastest to decode
//   - Gzip (.gz), Snappy (.sz) and S2 (.s2) for interoperability
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Best,
//	})
//
//	compressed, err := comp.Compress(data)
//	original, err := comp.Decompress(compressed)
package compression

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":  Gzip,
	".sz":  Snappy,
	".lz4": LZ4,
	".zst": Zstd,
	".s2":  S2,
}

// Compressor provides compression and decompression functionality.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data and returns the original bytes.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses from reader to writer.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses from reader to writer.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration.
type Config struct {
	Algorithm Algorithm // Compression algorithm to use
	Level     Level     // Compression level
}

// DefaultConfig returns the configuration used for written catalogs.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: Zstd,
		Level:     Default,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	base := baseCompressor{algorithm: config.Algorithm, level: config.Level}

	switch config.Algorithm {
	case None, "":
		base.algorithm = None
		return &streamCompressor{baseCompressor: base, writer: nopWriter, reader: nopReader}, nil
	case Gzip:
		return &streamCompressor{baseCompressor: base, writer: gzipWriter(config.Level), reader: gzipReader}, nil
	case Snappy:
		return &streamCompressor{baseCompressor: base, writer: snappyWriter, reader: snappyReader}, nil
	case LZ4:
		return &streamCompressor{baseCompressor: base, writer: lz4Writer(config.Level), reader: lz4Reader}, nil
	case Zstd:
		return &streamCompressor{baseCompressor: base, writer: zstdWriter(config.Level), reader: zstdReader}, nil
	case S2:
		return &streamCompressor{baseCompressor: base, writer: s2Writer, reader: s2Reader}, nil
	default:
		return nil, errors.New(errors.ErrorTypeValidation, "unsupported compression algorithm").
			WithDetail("algorithm", string(config.Algorithm))
	}
}

// ForPath returns the algorithm implied by path's final extension and the
// path with that extension removed. Paths without a known extension map to None.
func ForPath(path string) (Algorithm, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := extensions[ext]; ok {
		return alg, strings.TrimSuffix(path, path[len(path)-len(ext):])
	}
	return None, path
}

// Extension returns the file extension written for alg, empty for None.
func Extension(alg Algorithm) string {
	for ext, a := range extensions {
		if a == alg {
			return ext
		}
	}
	return ""
}

// Base compressor implementation
type baseCompressor struct {
	algorithm Algorithm
	level     Level
}

// Algorithm returns the compression algorithm
func (bc *baseCompressor) Algorithm() Algorithm {
	return bc.algorithm
}

// Level returns the compression level
func (bc *baseCompressor) Level() Level {
	return bc.level
}

type (
	writerFunc func(io.Writer) (io.WriteCloser, error)
	readerFunc func(io.Reader) (io.ReadCloser, error)
)

// streamCompressor implements every algorithm in terms of its stream codec.
type streamCompressor struct {
	baseCompressor
	writer writerFunc
	reader readerFunc
}

func (sc *streamCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := sc.CompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sc *streamCompressor) Decompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := sc.DecompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sc *streamCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := sc.writer(dst)
	if err != nil {
		return sc.wrap(err, "failed to create encoder")
	}
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return sc.wrap(err, "compression failed")
	}
	if err := w.Close(); err != nil {
		return sc.wrap(err, "failed to flush encoder")
	}
	return nil
}

func (sc *streamCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r, err := sc.reader(src)
	if err != nil {
		return sc.wrap(err, "failed to create decoder")
	}
	defer r.Close()

	if _, err := io.Copy(dst, r); err != nil { //nolint:gosec // G110: catalogs are operator-supplied
		return sc.wrap(err, "decompression failed")
	}
	return nil
}

func (sc *streamCompressor) wrap(err error, msg string) error {
	return errors.Wrap(err, errors.ErrorTypeFile, msg).
		WithDetail("algorithm", string(sc.algorithm))
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func nopWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
func nopReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(r), nil }

func gzipWriter(level Level) writerFunc {
	return func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, mapGzipLevel(level))
	}
}

func gzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func snappyWriter(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

func snappyReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(r)), nil
}

func s2Writer(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w), nil
}

func s2Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

func lz4Writer(level Level) writerFunc {
	return func(w io.Writer) (io.WriteCloser, error) {
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, err
		}
		return zw, nil
	}
}

func lz4Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func zstdWriter(level Level) writerFunc {
	return func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
	}
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func zstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zstdReadCloser{dec}, nil
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Better:
		return 7
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Better:
		return lz4.Level6
	case Best:
		return lz4.Level9
	default:
		return lz4.Level3
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
