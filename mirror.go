package ngff

import "fmt"

// Mirror reverses the column order, row order, or both of a row-major
// pixel slice of sizeY rows by sizeX columns, returning a freshly
// allocated slice. With both flags set the result is the 180-degree flip;
// with neither it is a plain copy.
//
// Mirror is pure and safe for unrestricted concurrent use.
func Mirror[T any](pixels []T, sizeX, sizeY int, mirrorX, mirrorY bool) ([]T, error) {
	if pixels == nil {
		return nil, fmt.Errorf("%w: nil pixel slice", ErrInvalidArgument)
	}
	if sizeX < 1 || sizeY < 1 {
		return nil, fmt.Errorf("%w: non-positive mirror dimensions %dx%d",
			ErrInvalidArgument, sizeX, sizeY)
	}
	if len(pixels) != sizeX*sizeY {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d mirror",
			ErrInvalidArgument, len(pixels), sizeX, sizeY)
	}
	out := make([]T, len(pixels))
	for n, v := range pixels {
		col := n % sizeX
		row := n / sizeX
		if mirrorX {
			col = sizeX - 1 - col
		}
		if mirrorY {
			row = sizeY - 1 - row
		}
		out[row*sizeX+col] = v
	}
	return out, nil
}

// MirrorBytes applies the same transform to a raw sample buffer of
// bytesPerSample-wide elements, as returned by PixelBuffer.GetTile, without
// decoding the samples.
func MirrorBytes(pixels []byte, sizeX, sizeY, bytesPerSample int, mirrorX, mirrorY bool) ([]byte, error) {
	if pixels == nil {
		return nil, fmt.Errorf("%w: nil pixel buffer", ErrInvalidArgument)
	}
	if sizeX < 1 || sizeY < 1 {
		return nil, fmt.Errorf("%w: non-positive mirror dimensions %dx%d",
			ErrInvalidArgument, sizeX, sizeY)
	}
	if bytesPerSample < 1 {
		return nil, fmt.Errorf("%w: non-positive sample width %d",
			ErrInvalidArgument, bytesPerSample)
	}
	if len(pixels) != sizeX*sizeY*bytesPerSample {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d mirror of %d-byte samples",
			ErrInvalidArgument, len(pixels), sizeX, sizeY, bytesPerSample)
	}
	out := make([]byte, len(pixels))
	for n := 0; n < sizeX*sizeY; n++ {
		col := n % sizeX
		row := n / sizeX
		if mirrorX {
			col = sizeX - 1 - col
		}
		if mirrorY {
			row = sizeY - 1 - row
		}
		src := n * bytesPerSample
		dst := (row*sizeX + col) * bytesPerSample
		copy(out[dst:dst+bytesPerSample], pixels[src:src+bytesPerSample])
	}
	return out, nil
}
