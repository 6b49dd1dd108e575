package ngff

// Region is a pixel rectangle in image coordinates.
type Region struct {
	X, Y, Width, Height int
}

// TileIndex addresses a tile in units of the storage's native tile size.
type TileIndex struct {
	X, Y int
}

// RegionContext carries one request's region selection and mirror flags.
// Tile and Region are mutually exclusive; Tile wins if both are set.
// With neither set the whole image is selected.
type RegionContext struct {
	Tile    *TileIndex
	Region  *Region
	MirrorX bool
	MirrorY bool
}

// ResolveRegion computes the pixel rectangle to fetch for ctx against an
// image of nominal size sizeX by sizeY, whose storage serves native tiles
// of tileWidth by tileHeight.
//
// The raw rectangle's width and height are clipped to the image bounds, so
// the last tile row and column at image edges come out partial instead of
// overrunning. Clipping happens strictly before mirroring: a partial edge
// tile mirrors to the matching rectangle on the opposite edge. Offsets are
// not clipped.
//
// ResolveRegion is pure and safe for unrestricted concurrent use.
func ResolveRegion(ctx RegionContext, sizeX, sizeY, tileWidth, tileHeight int) Region {
	var r Region
	switch {
	case ctx.Tile != nil:
		r = Region{
			X:      ctx.Tile.X * tileWidth,
			Y:      ctx.Tile.Y * tileHeight,
			Width:  tileWidth,
			Height: tileHeight,
		}
	case ctx.Region != nil:
		r = *ctx.Region
	default:
		r = Region{Width: sizeX, Height: sizeY}
	}

	if r.Width > sizeX-r.X {
		r.Width = sizeX - r.X
	}
	if r.Height > sizeY-r.Y {
		r.Height = sizeY - r.Y
	}

	if ctx.MirrorX {
		r.X = sizeX - r.X - r.Width
	}
	if ctx.MirrorY {
		r.Y = sizeY - r.Y - r.Height
	}
	return r
}
