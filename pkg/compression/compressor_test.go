package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

var sample = []byte(strings.Repeat("templates:\n  - name: enemy/grunt\n    tag: enemy\n", 64))

func TestRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2} {
		for _, level := range []Level{Fastest, Default, Better, Best} {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: level})
			require.NoError(t, err, alg)
			assert.Equal(t, alg, comp.Algorithm())
			assert.Equal(t, level, comp.Level())

			compressed, err := comp.Compress(sample)
			require.NoError(t, err, alg)
			if alg != None {
				assert.Less(t, len(compressed), len(sample), alg)
			}

			out, err := comp.Decompress(compressed)
			require.NoError(t, err, alg)
			assert.Equal(t, sample, out, alg)

			var streamed, restored bytes.Buffer
			require.NoError(t, comp.CompressStream(&streamed, bytes.NewReader(sample)))
			require.NoError(t, comp.DecompressStream(&restored, &streamed))
			assert.Equal(t, sample, restored.Bytes(), alg)
		}
	}
}

func TestNewCompressorDefaults(t *testing.T) {
	comp, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Zstd, comp.Algorithm())

	comp, err = NewCompressor(&Config{})
	require.NoError(t, err)
	assert.Equal(t, None, comp.Algorithm())
}

func TestNewCompressorRejectsUnknown(t *testing.T) {
	_, err := NewCompressor(&Config{Algorithm: "brotli"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestDecompressCorruptInput(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Zstd})
	require.NoError(t, err)

	_, err = comp.Decompress([]byte("definitely not zstd"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		alg  Algorithm
		rest string
	}{
		{"catalog.yaml", None, "catalog.yaml"},
		{"catalog.yaml.zst", Zstd, "catalog.yaml"},
		{"dir/catalog.json.LZ4", LZ4, "dir/catalog.json"},
		{"catalog.yml.gz", Gzip, "catalog.yml"},
		{"catalog.json.s2", S2, "catalog.json"},
		{"catalog.json.sz", Snappy, "catalog.json"},
	}
	for _, tt := range tests {
		alg, rest := ForPath(tt.path)
		assert.Equal(t, tt.alg, alg, tt.path)
		assert.Equal(t, tt.rest, rest, tt.path)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".zst", Extension(Zstd))
	assert.Equal(t, ".lz4", Extension(LZ4))
	assert.Equal(t, "", Extension(None))
}
