package zarr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/coocood/freecache"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// codec compresses and decompresses chunk payloads. Decompression runs on
// every chunk read, compression only on the write path.
type codec interface {
	id() string
	decompress(data []byte) ([]byte, error)
	compress(data []byte) ([]byte, error)
}

// newCodec resolves a numcodecs compressor id to a codec implementation.
// A nil compressor entry in .zarray means raw chunks.
func newCodec(id string) (codec, error) {
	switch id {
	case "":
		return rawCodec{}, nil
	case "zlib":
		return zlibCodec{}, nil
	case "gzip":
		return gzipCodec{}, nil
	case "zstd":
		return zstdCodec{}, nil
	case "blosc":
		return nil, errors.New("blosc-compressed chunks are not supported")
	default:
		return nil, fmt.Errorf("unsupported compressor %q", id)
	}
}

type rawCodec struct{}

func (rawCodec) id() string                             { return "" }
func (rawCodec) decompress(data []byte) ([]byte, error) { return data, nil }
func (rawCodec) compress(data []byte) ([]byte, error)   { return data, nil }

type zlibCodec struct{}

func (zlibCodec) id() string { return "zlib" }

func (zlibCodec) decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer func() { _ = r.Close() }()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return out, nil
}

func (zlibCodec) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type gzipCodec struct{}

func (gzipCodec) id() string { return "gzip" }

func (gzipCodec) decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer func() { _ = r.Close() }()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}

func (gzipCodec) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type zstdCodec struct{}

func (zstdCodec) id() string { return "zstd" }

func (zstdCodec) decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

func (zstdCodec) compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChunkCache holds decoded chunk payloads keyed by array path and chunk
// coordinates, so repeated tile reads over the same chunks skip store I/O
// and decompression. A nil *ChunkCache disables caching.
type ChunkCache struct {
	c *freecache.Cache
}

// NewChunkCache returns a cache of roughly sizeBytes capacity.
func NewChunkCache(sizeBytes int) *ChunkCache {
	return &ChunkCache{c: freecache.NewCache(sizeBytes)}
}

func (cc *ChunkCache) get(key string) ([]byte, bool) {
	if cc == nil {
		return nil, false
	}
	v, err := cc.c.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return v, true
}

func (cc *ChunkCache) set(key string, value []byte) {
	if cc == nil {
		return
	}
	// Entries beyond freecache's per-entry limit are simply not cached.
	_ = cc.c.Set([]byte(key), value, 0)
}

// Clear drops every cached chunk, releasing the cache's memory for reuse.
func (cc *ChunkCache) Clear() {
	if cc == nil {
		return
	}
	cc.c.Clear()
}

func (cc *ChunkCache) del(key string) {
	if cc == nil {
		return
	}
	cc.c.Del([]byte(key))
}

// chunkKey builds the store key of one chunk from its grid coordinates,
// honoring the array's dimension separator.
func (a *Array) chunkKey(coords []int) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%d", c)
	}
	name := strings.Join(parts, a.sep)
	if a.path == "" {
		return name
	}
	return a.path + "/" + name
}

// chunkData returns the decoded payload of one chunk, always the full
// chunk shape in C order. Absent chunks materialize as fill value.
func (a *Array) chunkData(coords []int) ([]byte, error) {
	key := a.chunkKey(coords)
	if data, ok := a.cache.get(key); ok {
		return data, nil
	}
	raw, err := a.store.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		data := a.fillChunk()
		a.cache.set(key, data)
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := a.codec.decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", key, err)
	}
	if len(data) != a.chunkBytes {
		return nil, fmt.Errorf("chunk %s: decoded %d bytes, want %d",
			key, len(data), a.chunkBytes)
	}
	a.cache.set(key, data)
	return data, nil
}

// fillChunk materializes a full chunk of fill value in stored byte order.
func (a *Array) fillChunk() []byte {
	data := make([]byte, a.chunkBytes)
	if a.fillZero {
		return data
	}
	es := a.dtype.Size
	a.dtype.PutValue(data[:es], a.fill)
	for off := es; off < len(data); off *= 2 {
		copy(data[off:], data[:off])
	}
	return data
}
