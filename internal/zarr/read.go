package zarr

import (
	"fmt"
	"math"
)

// ReadSlice reads the hyperslab [start, start+count) and returns its
// elements packed in C order, in the array's stored byte order. The
// selection must lie fully inside the array extents.
func (a *Array) ReadSlice(start, count []int) ([]byte, error) {
	if err := a.checkSelection(start, count); err != nil {
		return nil, err
	}
	es := a.dtype.Size
	total := 1
	for _, c := range count {
		if total > math.MaxInt/c {
			return nil, fmt.Errorf("selection size overflows")
		}
		total *= c
	}
	if total > math.MaxInt/es {
		return nil, fmt.Errorf("selection size overflows")
	}
	out := make([]byte, total*es)

	err := a.eachChunkIn(start, count, func(ci []int) error {
		chunk, err := a.chunkData(ci)
		if err != nil {
			return err
		}
		a.copyOverlap(out, chunk, ci, start, count, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Array) checkSelection(start, count []int) error {
	if len(start) != len(a.shape) || len(count) != len(a.shape) {
		return fmt.Errorf("selection rank %d/%d does not match array rank %d",
			len(start), len(count), len(a.shape))
	}
	for i := range start {
		if start[i] < 0 || count[i] < 1 {
			return fmt.Errorf("invalid selection in dimension %d: start=%d count=%d",
				i, start[i], count[i])
		}
		// start+count can wrap for starts near MaxInt; compare in
		// subtraction form (count is at least 1 here).
		if start[i] > a.shape[i]-count[i] {
			return fmt.Errorf("selection out of bounds in dimension %d: start=%d + count=%d > size=%d",
				i, start[i], count[i], a.shape[i])
		}
	}
	return nil
}

// eachChunkIn walks the grid of chunks intersecting the selection in C
// order, invoking fn with each chunk's grid coordinates.
func (a *Array) eachChunkIn(start, count []int, fn func(ci []int) error) error {
	rank := len(a.shape)
	first := make([]int, rank)
	last := make([]int, rank)
	for i := range first {
		first[i] = start[i] / a.chunks[i]
		last[i] = (start[i] + count[i] - 1) / a.chunks[i]
	}
	ci := make([]int, rank)
	copy(ci, first)
	for {
		if err := fn(ci); err != nil {
			return err
		}
		d := rank - 1
		for d >= 0 {
			ci[d]++
			if ci[d] <= last[d] {
				break
			}
			ci[d] = first[d]
			d--
		}
		if d < 0 {
			return nil
		}
	}
}

// copyOverlap copies the intersection between one chunk and the selection,
// either chunk-to-buffer (read) or buffer-to-chunk (write). buf holds the
// selection in C order; chunk holds the full chunk in C order.
func (a *Array) copyOverlap(buf, chunk []byte, ci, start, count []int, toChunk bool) {
	rank := len(a.shape)
	es := a.dtype.Size

	lo := make([]int, rank)
	hi := make([]int, rank)
	for i := range lo {
		base := ci[i] * a.chunks[i]
		lo[i] = max(start[i], base)
		hi[i] = min(start[i]+count[i], base+a.chunks[i])
	}

	// Byte strides over the chunk and over the selection buffer.
	chunkStride := make([]int, rank)
	bufStride := make([]int, rank)
	chunkStride[rank-1] = es
	bufStride[rank-1] = es
	for i := rank - 2; i >= 0; i-- {
		chunkStride[i] = chunkStride[i+1] * a.chunks[i+1]
		bufStride[i] = bufStride[i+1] * count[i+1]
	}

	runBytes := (hi[rank-1] - lo[rank-1]) * es
	idx := make([]int, rank)
	copy(idx, lo)
	for {
		chunkOff := 0
		bufOff := 0
		for i := 0; i < rank-1; i++ {
			chunkOff += (idx[i] - ci[i]*a.chunks[i]) * chunkStride[i]
			bufOff += (idx[i] - start[i]) * bufStride[i]
		}
		chunkOff += (lo[rank-1] - ci[rank-1]*a.chunks[rank-1]) * es
		bufOff += (lo[rank-1] - start[rank-1]) * es

		if toChunk {
			copy(chunk[chunkOff:chunkOff+runBytes], buf[bufOff:bufOff+runBytes])
		} else {
			copy(buf[bufOff:bufOff+runBytes], chunk[chunkOff:chunkOff+runBytes])
		}

		// Advance the row odometer over all dimensions but the innermost.
		d := rank - 2
		for d >= 0 {
			idx[d]++
			if idx[d] < hi[d] {
				break
			}
			idx[d] = lo[d]
			d--
		}
		if d < 0 {
			return
		}
	}
}
