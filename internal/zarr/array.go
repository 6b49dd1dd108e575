package zarr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MetadataKey is the store key suffix holding an array's metadata document.
const MetadataKey = ".zarray"

// arrayMeta mirrors the .zarray document of a Zarr v2 array.
type arrayMeta struct {
	ZarrFormat         int             `json:"zarr_format"`
	Shape              []int           `json:"shape"`
	Chunks             []int           `json:"chunks"`
	DType              string          `json:"dtype"`
	Compressor         *compressorMeta `json:"compressor"`
	FillValue          json.RawMessage `json:"fill_value"`
	Order              string          `json:"order"`
	Filters            json.RawMessage `json:"filters"`
	DimensionSeparator string          `json:"dimension_separator,omitempty"`
}

type compressorMeta struct {
	ID    string `json:"id"`
	Level int    `json:"level,omitempty"`
}

// Array is an open handle on one Zarr v2 chunked array. It is immutable
// apart from the chunk cache and safe for concurrent reads.
type Array struct {
	store Store
	path  string // key prefix within the store, "" for the store root

	dtype      DataType
	shape      []int
	chunks     []int
	sep        string
	codec      codec
	fill       float64
	fillZero   bool
	chunkBytes int
	cache      *ChunkCache
}

// OpenArray opens the array at path within store. The cache may be nil.
// It fails if the metadata document is absent, malformed, or declares
// features outside the supported subset (C order, numeric dtypes, known
// compressors, no filter pipeline).
func OpenArray(store Store, path string, cache *ChunkCache) (*Array, error) {
	key := MetadataKey
	if path != "" {
		key = path + "/" + MetadataKey
	}
	raw, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("array metadata %q: %w", key, err)
	}
	var meta arrayMeta
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("array metadata %q: %w", key, err)
	}
	if meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("array %q: unsupported zarr_format %d", path, meta.ZarrFormat)
	}
	if len(meta.Shape) == 0 || len(meta.Shape) != len(meta.Chunks) {
		return nil, fmt.Errorf("array %q: shape rank %d does not match chunk rank %d",
			path, len(meta.Shape), len(meta.Chunks))
	}
	for i := range meta.Shape {
		if meta.Shape[i] < 1 {
			return nil, fmt.Errorf("array %q: non-positive extent %d in dimension %d",
				path, meta.Shape[i], i)
		}
		if meta.Chunks[i] < 1 {
			return nil, fmt.Errorf("array %q: non-positive chunk extent %d in dimension %d",
				path, meta.Chunks[i], i)
		}
	}
	if meta.Order != "" && meta.Order != "C" {
		return nil, fmt.Errorf("array %q: unsupported memory order %q", path, meta.Order)
	}
	if len(meta.Filters) > 0 && string(meta.Filters) != "null" && string(meta.Filters) != "[]" {
		return nil, fmt.Errorf("array %q: filter pipelines are not supported", path)
	}
	dtype, err := ParseDataType(meta.DType)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", path, err)
	}
	compID := ""
	if meta.Compressor != nil {
		compID = meta.Compressor.ID
	}
	cdc, err := newCodec(compID)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", path, err)
	}
	fill, err := parseFillValue(meta.FillValue)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", path, err)
	}
	sep := meta.DimensionSeparator
	if sep == "" {
		sep = "."
	}
	if sep != "." && sep != "/" {
		return nil, fmt.Errorf("array %q: unsupported dimension separator %q", path, sep)
	}

	chunkElems := 1
	for _, c := range meta.Chunks {
		if chunkElems > math.MaxInt/c {
			return nil, fmt.Errorf("array %q: chunk size overflows", path)
		}
		chunkElems *= c
	}
	if chunkElems > math.MaxInt/dtype.Size {
		return nil, fmt.Errorf("array %q: chunk size overflows", path)
	}
	return &Array{
		store:      store,
		path:       path,
		dtype:      dtype,
		shape:      meta.Shape,
		chunks:     meta.Chunks,
		sep:        sep,
		codec:      cdc,
		fill:       fill,
		fillZero:   fill == 0,
		chunkBytes: chunkElems * dtype.Size,
		cache:      cache,
	}, nil
}

// parseFillValue handles the JSON encodings numcodecs emits: a number,
// null (treated as zero), or the IEEE specials as strings.
func parseFillValue(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return 0, fmt.Errorf("unsupported fill_value %s", string(raw))
}

// Shape returns the per-dimension extents of the array.
func (a *Array) Shape() []int {
	out := make([]int, len(a.shape))
	copy(out, a.shape)
	return out
}

// ChunkShape returns the native chunk extents of the array.
func (a *Array) ChunkShape() []int {
	out := make([]int, len(a.chunks))
	copy(out, a.chunks)
	return out
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.shape)
}

// DataType returns the element type description.
func (a *Array) DataType() DataType {
	return a.dtype
}

// Path returns the array's key prefix within its store.
func (a *Array) Path() string {
	return a.path
}
