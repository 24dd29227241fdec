package catalog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/scenepool/pkg/compression"
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/json"
)

// Format is the document encoding of a catalog.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat derives the document format and compression of a catalog
// file from its name: "catalog.json.zst" is zstd-compressed JSON.
func DetectFormat(path string) (Format, compression.Algorithm, error) {
	alg, rest := compression.ForPath(path)
	switch strings.ToLower(filepath.Ext(rest)) {
	case ".yaml", ".yml":
		return FormatYAML, alg, nil
	case ".json":
		return FormatJSON, alg, nil
	default:
		return "", alg, errors.New(errors.ErrorTypeConfig, "unrecognized catalog extension").
			WithDetail("path", path)
	}
}

// Parse decodes and validates a catalog document. JSON catalogs must not
// carry fields the schema does not declare.
func Parse(data []byte, format Format) (*Catalog, error) {
	var c Catalog
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&c)
		if err == io.EOF {
			err = nil
		}
	case FormatJSON:
		err = json.UnmarshalStrict(data, &c)
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unsupported catalog format").
			WithDetail("format", string(format))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode catalog").
			WithDetail("format", string(format))
	}
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Open reads, decompresses and parses the catalog at path.
func Open(path string) (*Catalog, error) {
	format, alg, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: catalog path is operator-supplied
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read catalog").
			WithDetail("path", path)
	}
	if alg != compression.None {
		comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg})
		if err != nil {
			return nil, err
		}
		if data, err = comp.Decompress(data); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress catalog").
				WithDetail("path", path)
		}
	}
	return Parse(data, format)
}

// Encode writes c to w in the given format.
func Encode(w io.Writer, c *Catalog, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode catalog")
		}
		return enc.Close()
	case FormatJSON:
		if err := json.Write(w, c); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode catalog")
		}
		return nil
	default:
		return errors.New(errors.ErrorTypeConfig, "unsupported catalog format").
			WithDetail("format", string(format))
	}
}

// Save writes c to path, choosing format and compression from the name.
func Save(path string, c *Catalog) error {
	format, alg, err := DetectFormat(path)
	if err != nil {
		return err
	}
	var doc bytes.Buffer
	if err := Encode(&doc, c, format); err != nil {
		return err
	}
	data := doc.Bytes()
	if alg != compression.None {
		comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: compression.Best})
		if err != nil {
			return err
		}
		if data, err = comp.Compress(data); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write catalog").
			WithDetail("path", path)
	}
	return nil
}
