package zarr

import (
	"encoding/json"
	"fmt"
)

// ArraySpec describes an array to create.
type ArraySpec struct {
	Shape  []int
	Chunks []int
	DType  string

	// Compressor is a numcodecs id: "", "zlib", "gzip" or "zstd".
	Compressor string

	// DimensionSeparator defaults to "/" (nested chunk files).
	DimensionSeparator string

	FillValue float64
}

// Create writes the metadata document for a new array at path within store
// and returns an open handle on it.
func Create(store Store, path string, spec ArraySpec, cache *ChunkCache) (*Array, error) {
	if len(spec.Shape) == 0 || len(spec.Shape) != len(spec.Chunks) {
		return nil, fmt.Errorf("create %q: shape rank %d does not match chunk rank %d",
			path, len(spec.Shape), len(spec.Chunks))
	}
	if _, err := ParseDataType(spec.DType); err != nil {
		return nil, fmt.Errorf("create %q: %w", path, err)
	}
	if _, err := newCodec(spec.Compressor); err != nil {
		return nil, fmt.Errorf("create %q: %w", path, err)
	}
	sep := spec.DimensionSeparator
	if sep == "" {
		sep = "/"
	}

	meta := arrayMeta{
		ZarrFormat:         2,
		Shape:              spec.Shape,
		Chunks:             spec.Chunks,
		DType:              spec.DType,
		Order:              "C",
		Filters:            json.RawMessage("null"),
		DimensionSeparator: sep,
	}
	if spec.Compressor != "" {
		meta.Compressor = &compressorMeta{ID: spec.Compressor, Level: 1}
	}
	fill, err := json.Marshal(spec.FillValue)
	if err != nil {
		return nil, err
	}
	meta.FillValue = fill

	doc, err := json.MarshalIndent(&meta, "", "    ")
	if err != nil {
		return nil, err
	}
	key := MetadataKey
	if path != "" {
		key = path + "/" + MetadataKey
	}
	if err := store.Set(key, doc); err != nil {
		return nil, fmt.Errorf("create %q: %w", path, err)
	}
	return OpenArray(store, path, cache)
}

// WriteSlice writes data into the hyperslab [start, start+count). data
// holds the selection's elements packed in C order in the array's stored
// byte order, and must be exactly the selection's size. Partially covered
// chunks are read, modified and rewritten.
func (a *Array) WriteSlice(start, count []int, data []byte) error {
	if err := a.checkSelection(start, count); err != nil {
		return err
	}
	want := a.dtype.Size
	for _, c := range count {
		want *= c
	}
	if len(data) != want {
		return fmt.Errorf("write: got %d bytes for a %d-byte selection", len(data), want)
	}

	return a.eachChunkIn(start, count, func(ci []int) error {
		chunk, err := a.chunkData(ci)
		if err != nil {
			return err
		}
		// chunkData may hand back a cached slice; modify a private copy.
		buf := make([]byte, len(chunk))
		copy(buf, chunk)
		a.copyOverlap(data, buf, ci, start, count, true)

		encoded, err := a.codec.compress(buf)
		if err != nil {
			return err
		}
		key := a.chunkKey(ci)
		if err := a.store.Set(key, encoded); err != nil {
			return err
		}
		a.cache.del(key)
		return nil
	})
}
