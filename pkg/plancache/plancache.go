// Package plancache persists query plans, table set snapshots, schemas and
// column sets as compressed JSON. Entries carry a small header naming the codec, so
// readers do not need to know how an entry was written.
package plancache

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/errors"
	"github.com/dlr-eoc/ukis-h3cellstore-sub001/pkg/metrics"
)

// Codec selects the compression of cache entries.
type Codec string

const (
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
	CodecNone Codec = "none"
)

// entry header: magic plus one codec byte
var magic = []byte("h3pc")

var codecBytes = map[Codec]byte{
	CodecNone: 0,
	CodecZstd: 1,
	CodecLZ4:  2,
}

// Cache writes and reads cache entries with a fixed codec. The zero value
// is not usable, construct via New.
type Cache struct {
	codec Codec
}

// New creates a cache using the given codec for writes. Reads accept any
// codec.
func New(codec Codec) (*Cache, error) {
	if _, ok := codecBytes[codec]; !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown cache codec %q", codec)
	}
	return &Cache{codec: codec}, nil
}

// Write encodes v as JSON, compresses it and writes the entry to w.
func (c *Cache) Write(w io.Writer, v interface{}) error {
	if err := c.write(w, v); err != nil {
		metrics.CacheOperations.WithLabelValues("write", "error").Inc()
		return err
	}
	metrics.CacheOperations.WithLabelValues("write", "ok").Inc()
	return nil
}

func (c *Cache) write(w io.Writer, v interface{}) error {
	if _, err := w.Write(magic); err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "writing header")
	}
	if _, err := w.Write([]byte{codecBytes[c.codec]}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "writing header")
	}

	switch c.codec {
	case CodecZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeSerialization, "zstd writer")
		}
		if err := json.NewEncoder(zw).Encode(v); err != nil {
			zw.Close()
			return errors.Wrap(err, errors.ErrorTypeSerialization, "encoding entry")
		}
		return zw.Close()
	case CodecLZ4:
		lw := lz4.NewWriter(w)
		if err := json.NewEncoder(lw).Encode(v); err != nil {
			lw.Close()
			return errors.Wrap(err, errors.ErrorTypeSerialization, "encoding entry")
		}
		return lw.Close()
	default:
		return json.NewEncoder(w).Encode(v)
	}
}

// Read decodes a cache entry from r into v, detecting the codec from the
// entry header.
func (c *Cache) Read(r io.Reader, v interface{}) error {
	if err := readEntry(r, v); err != nil {
		metrics.CacheOperations.WithLabelValues("read", "error").Inc()
		return err
	}
	metrics.CacheOperations.WithLabelValues("read", "ok").Inc()
	return nil
}

func readEntry(r io.Reader, v interface{}) error {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "reading header")
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return errors.New(errors.ErrorTypeSerialization, "not a cache entry")
	}

	switch header[len(magic)] {
	case codecBytes[CodecZstd]:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeSerialization, "zstd reader")
		}
		defer zr.Close()
		return decode(zr, v)
	case codecBytes[CodecLZ4]:
		return decode(lz4.NewReader(r), v)
	case codecBytes[CodecNone]:
		return decode(r, v)
	}
	return errors.New(errors.ErrorTypeSerialization, "unknown cache entry codec")
}

func decode(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "decoding entry")
	}
	return nil
}

// Store writes an entry into a directory under the given name.
func (c *Cache) Store(dir, name string, v interface{}) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "creating cache directory")
	}
	f, err := os.Create(filepath.Join(dir, name)) //nolint:gosec // G304: dir is the configured cache location
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "creating cache file")
	}
	defer f.Close()
	return c.Write(f, v)
}

// Load reads a named entry from a directory.
func (c *Cache) Load(dir, name string, v interface{}) error {
	f, err := os.Open(filepath.Join(dir, name)) //nolint:gosec // G304: dir is the configured cache location
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeSerialization, "opening cache file")
	}
	defer f.Close()
	return c.Read(f, v)
}
