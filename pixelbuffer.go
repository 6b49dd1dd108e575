// Package ngff provides read access to multiscale microscopy image
// pyramids stored as Zarr chunked arrays (the OME-NGFF layout). It serves
// exact rectangular pixel regions out of any resolution level, channel,
// Z section and timepoint, together with the region-resolution and mirror
// transforms a tile-serving layer needs around those reads.
package ngff

import (
	"fmt"

	"github.com/scigolib/ngff/internal/zarr"
)

// Dimensions are an image's declared, authoritative extents, independent
// of any one pyramid level's stored extents. All must be at least 1.
type Dimensions struct {
	T, C, Z, Y, X int
}

func (d Dimensions) validate() error {
	for _, s := range []struct {
		axis string
		size int
	}{{"T", d.T}, {"C", d.C}, {"Z", d.Z}, {"Y", d.Y}, {"X", d.X}} {
		if s.size < 1 {
			return fmt.Errorf("%w: nominal size%s %d", ErrInvalidArgument, s.axis, s.size)
		}
	}
	return nil
}

// PixelKind is the numeric class of a pyramid's stored samples.
type PixelKind uint8

// Pixel kinds. Pyramids hold a closed set of numeric sample types.
const (
	PixelInt PixelKind = iota
	PixelUint
	PixelFloat
)

// PixelType describes the stored sample format: numeric kind and element
// width in bytes.
type PixelType struct {
	Kind PixelKind
	Size int
}

// Signed reports whether samples are signed integers.
func (t PixelType) Signed() bool {
	return t.Kind == PixelInt
}

func (t PixelType) String() string {
	switch t.Kind {
	case PixelInt:
		return fmt.Sprintf("int%d", t.Size*8)
	case PixelUint:
		return fmt.Sprintf("uint%d", t.Size*8)
	case PixelFloat:
		return fmt.Sprintf("float%d", t.Size*8)
	}
	return "unknown"
}

// ResolutionDescription is one level's stored X and Y extents.
type ResolutionDescription struct {
	SizeX, SizeY int
}

// DefaultChunkCacheBytes is the decoded-chunk cache capacity a pixel
// buffer is opened with.
const DefaultChunkCacheBytes = 32 << 20

// PixelBuffer owns one open pyramid: a handle per resolution level plus
// the parsed multiscale descriptor. Resolution levels are indexed from 0
// (most downsampled) to ResolutionLevels()-1 (full resolution); the full
// resolution level is active after Open.
//
// SetResolutionLevel mutates instance state read by all size queries and
// tile reads, so concurrent use of one instance requires external
// synchronization. Independent instances are fully independent.
type PixelBuffer struct {
	dims        Dimensions
	maxTileSize int
	datasets    []Dataset
	levels      []*zarr.Array // index 0 is the coarsest level
	level       int
	cache       *zarr.ChunkCache
	closed      bool
}

// Open opens the pyramid rooted at the directory root, which must hold a
// multiscale attribute document and one chunked array per resolution
// level. dims are the image's authoritative extents; maxTileSize caps
// GetTile requests in elements (width times height).
//
// Open is atomic: on any failure no partially usable buffer is returned
// and everything already opened is released.
func Open(dims Dimensions, root string, maxTileSize int) (*PixelBuffer, error) {
	if err := dims.validate(); err != nil {
		return nil, err
	}
	if maxTileSize < 1 {
		return nil, fmt.Errorf("%w: max tile size %d", ErrInvalidArgument, maxTileSize)
	}

	store := zarr.NewDirectoryStore(root)
	raw, err := store.Get(AttrsKey)
	if err != nil {
		return nil, fmt.Errorf("open pyramid %q: %w", root, err)
	}
	ms, err := parseMultiscales(raw)
	if err != nil {
		return nil, fmt.Errorf("open pyramid %q: %w", root, err)
	}

	cache := zarr.NewChunkCache(DefaultChunkCacheBytes)
	n := len(ms.Datasets)
	levels := make([]*zarr.Array, n)
	for i, ds := range ms.Datasets {
		a, err := zarr.OpenArray(store, ds.Path(), cache)
		if err != nil {
			cache.Clear()
			return nil, fmt.Errorf("open pyramid %q: dataset %q: %w", root, ds.Path(), err)
		}
		if a.Rank() != 5 {
			cache.Clear()
			return nil, fmt.Errorf("open pyramid %q: dataset %q has rank %d, want 5 (t,c,z,y,x)",
				root, ds.Path(), a.Rank())
		}
		// Dataset order is authoritative and entry 0 is full resolution,
		// so level indices run opposite to descriptor order.
		levels[n-1-i] = a
	}

	top := levels[n-1].Shape()
	if top[4] != dims.X || top[3] != dims.Y {
		cache.Clear()
		return nil, fmt.Errorf(
			"open pyramid %q: full-resolution extents %dx%d disagree with declared dimensions %dx%d",
			root, top[4], top[3], dims.X, dims.Y)
	}

	return &PixelBuffer{
		dims:        dims,
		maxTileSize: maxTileSize,
		datasets:    ms.Datasets,
		levels:      levels,
		level:       n - 1,
		cache:       cache,
	}, nil
}

// Close releases the buffer's chunk cache. It is idempotent. Tile reads
// and level selection after Close fail with ErrClosed; size and metadata
// queries keep answering from the parsed descriptor.
func (b *PixelBuffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.cache.Clear()
	return nil
}

// ResolutionLevels returns the number of pyramid levels.
func (b *PixelBuffer) ResolutionLevels() int {
	return len(b.levels)
}

// ResolutionLevel returns the active level index.
func (b *PixelBuffer) ResolutionLevel() int {
	return b.level
}

// SetResolutionLevel selects the level all subsequent size queries and
// tile reads apply to.
func (b *PixelBuffer) SetResolutionLevel(level int) error {
	if b.closed {
		return ErrClosed
	}
	if level < 0 || level >= len(b.levels) {
		return fmt.Errorf("%w: level %d not in [0, %d)",
			ErrLevelOutOfRange, level, len(b.levels))
	}
	b.level = level
	return nil
}

// ResolutionDescriptions returns each level's stored X and Y extents,
// coarsest first. Levels below full resolution legitimately disagree with
// the nominal dimensions.
func (b *PixelBuffer) ResolutionDescriptions() []ResolutionDescription {
	out := make([]ResolutionDescription, len(b.levels))
	for i, a := range b.levels {
		shape := a.Shape()
		out[i] = ResolutionDescription{SizeX: shape[4], SizeY: shape[3]}
	}
	return out
}

// Chunks returns each level's native (t,c,z,y,x) chunk shape, coarsest
// first, verbatim from the stored chunk geometry.
func (b *PixelBuffer) Chunks() [][]int {
	out := make([][]int, len(b.levels))
	for i, a := range b.levels {
		out[i] = a.ChunkShape()
	}
	return out
}

// Datasets returns the multiscale descriptor's dataset entries in their
// declared order, unmodified, for external metadata consumers. The slice
// is a copy; the entry maps are shared.
func (b *PixelBuffer) Datasets() []Dataset {
	out := make([]Dataset, len(b.datasets))
	copy(out, b.datasets)
	return out
}

// PixelType returns the stored sample format.
func (b *PixelBuffer) PixelType() PixelType {
	dt := b.levels[b.level].DataType()
	pt := PixelType{Size: dt.Size}
	switch dt.Kind {
	case zarr.KindUint:
		pt.Kind = PixelUint
	case zarr.KindFloat:
		pt.Kind = PixelFloat
	default:
		pt.Kind = PixelInt
	}
	return pt
}

func (b *PixelBuffer) activeShape() []int {
	return b.levels[b.level].Shape()
}

// SizeT returns the active level's T extent.
func (b *PixelBuffer) SizeT() int { return b.activeShape()[0] }

// SizeC returns the active level's C extent.
func (b *PixelBuffer) SizeC() int { return b.activeShape()[1] }

// SizeZ returns the active level's Z extent.
func (b *PixelBuffer) SizeZ() int { return b.activeShape()[2] }

// SizeY returns the active level's Y extent.
func (b *PixelBuffer) SizeY() int { return b.activeShape()[3] }

// SizeX returns the active level's X extent.
func (b *PixelBuffer) SizeX() int { return b.activeShape()[4] }

// GetTile reads the width-by-height rectangle at offset (x, y) of plane
// (t, c, z) from the active resolution level. The result is a freshly
// allocated buffer of exactly width*height samples in row-major order
// (Y outer, X inner), big-endian, in the pyramid's stored sample format;
// the caller owns it.
//
// A request larger than the configured maximum tile size returns
// (nil, nil): not an error but a signal to re-request smaller tiles. The
// policy check runs before any bounds validation. Requests outside the
// active level's extents fail with a DimensionsError; failures of the
// backing store surface as a StorageError.
func (b *PixelBuffer) GetTile(t, c, z, y, x, width, height int) ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if width >= 1 && height >= 1 && width > b.maxTileSize/height {
		return nil, nil
	}

	shape := b.activeShape()
	for _, p := range []struct {
		axis string
		idx  int
		size int
	}{{"T", t, shape[0]}, {"C", c, shape[1]}, {"Z", z, shape[2]}} {
		if p.idx < 0 || p.idx >= p.size {
			return nil, &DimensionsError{Axis: p.axis, Offset: p.idx, Extent: 1, Size: p.size}
		}
	}
	// Subtraction form keeps offsets near MaxInt from wrapping past the
	// bound; width and height are at least 1 here.
	if height < 1 || y < 0 || y > shape[3]-height {
		return nil, &DimensionsError{Axis: "Y", Offset: y, Extent: height, Size: shape[3]}
	}
	if width < 1 || x < 0 || x > shape[4]-width {
		return nil, &DimensionsError{Axis: "X", Offset: x, Extent: width, Size: shape[4]}
	}

	level := b.levels[b.level]
	data, err := level.ReadSlice([]int{t, c, z, y, x}, []int{1, 1, 1, height, width})
	if err != nil {
		return nil, &StorageError{Level: b.level, Err: err}
	}
	level.DataType().ToBigEndian(data)
	return data, nil
}
