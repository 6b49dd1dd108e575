package ngff

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialPixels(n int) []int {
	src := make([]int, n)
	for i := range src {
		src[i] = i
	}
	return src
}

func checkMirror(t *testing.T, sizeX, sizeY int, mirrorX, mirrorY bool) {
	t.Helper()
	src := sequentialPixels(sizeX * sizeY)
	mirrored, err := Mirror(src, sizeX, sizeY, mirrorX, mirrorY)
	require.NoError(t, err)
	for n := 0; n < sizeX*sizeY; n++ {
		col := n % sizeX
		if mirrorX {
			col = sizeX - 1 - col
		}
		row := n / sizeX
		if mirrorY {
			row = sizeY - 1 - row
		}
		require.Equal(t, n, mirrored[row*sizeX+col])
	}
}

func TestMirrorShapes(t *testing.T) {
	shapes := []struct{ sizeX, sizeY int }{
		{4, 4}, // even square
		{5, 5}, // odd square
		{7, 4}, // wide rectangle
		{4, 7}, // tall rectangle
		{7, 1}, // single row
		{1, 7}, // single column
		{1, 1}, // single entry
	}
	for _, s := range shapes {
		for _, flags := range [][2]bool{{false, true}, {true, false}, {true, true}} {
			name := fmt.Sprintf("%dx%d_x%v_y%v", s.sizeX, s.sizeY, flags[0], flags[1])
			t.Run(name, func(t *testing.T) {
				checkMirror(t, s.sizeX, s.sizeY, flags[0], flags[1])
			})
		}
	}
}

func TestMirrorNoFlagsIsCopy(t *testing.T) {
	src := sequentialPixels(12)
	out, err := Mirror(src, 4, 3, false, false)
	require.NoError(t, err)
	require.Equal(t, src, out)
	// Fresh allocation, not the input slice.
	out[0] = 99
	assert.Equal(t, 0, src[0])
}

func TestMirrorTwiceIsIdentity(t *testing.T) {
	src := sequentialPixels(20)
	once, err := Mirror(src, 5, 4, true, true)
	require.NoError(t, err)
	twice, err := Mirror(once, 5, 4, true, true)
	require.NoError(t, err)
	require.Equal(t, src, twice)
}

func TestMirrorInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		pixels []int
		sizeX  int
		sizeY  int
	}{
		{"nil pixels", nil, 4, 4},
		{"zero width", []int{1}, 0, 4},
		{"zero height", []int{1}, 4, 0},
		{"length mismatch", []int{1, 2, 3}, 4, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Mirror(tc.pixels, tc.sizeX, tc.sizeY, true, true)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMirrorBytesMatchesMirror(t *testing.T) {
	const sizeX, sizeY = 5, 3
	src := make([]uint16, sizeX*sizeY)
	raw := make([]byte, len(src)*2)
	for i := range src {
		src[i] = uint16(i * 11)
		binary.BigEndian.PutUint16(raw[i*2:], src[i])
	}

	for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
		wantVals, err := Mirror(src, sizeX, sizeY, flags[0], flags[1])
		require.NoError(t, err)
		gotRaw, err := MirrorBytes(raw, sizeX, sizeY, 2, flags[0], flags[1])
		require.NoError(t, err)
		for i, want := range wantVals {
			require.Equal(t, want, binary.BigEndian.Uint16(gotRaw[i*2:]))
		}
	}
}

func TestMirrorBytesInvalidArguments(t *testing.T) {
	_, err := MirrorBytes(nil, 4, 4, 2, true, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = MirrorBytes([]byte{1, 2}, 1, 1, 0, true, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = MirrorBytes([]byte{1, 2}, 2, 2, 2, true, true)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
