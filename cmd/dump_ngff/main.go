// Package main provides a command-line utility to inspect NGFF pyramids.
// It prints level geometry and metadata, and optionally fetches one tile
// or region to a raw sample file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/scigolib/ngff"
	"github.com/scigolib/ngff/internal/zarr"
)

func main() {
	maxTile := flag.Int("max-tile", 4096*4096, "Maximum tile size in elements (width*height)")
	level := flag.Int("level", -1, "Resolution level to read from (default: full resolution)")
	theT := flag.Int("t", 0, "Timepoint index")
	theC := flag.Int("c", 0, "Channel index")
	theZ := flag.Int("z", 0, "Z-section index")
	tileX := flag.Int("tile-x", -1, "Tile column index (native tile units)")
	tileY := flag.Int("tile-y", -1, "Tile row index (native tile units)")
	region := flag.String("region", "", "Explicit region as x,y,width,height")
	mirrorX := flag.Bool("mirror-x", false, "Mirror horizontally")
	mirrorY := flag.Bool("mirror-y", false, "Mirror vertically")
	out := flag.String("out", "", "Write fetched samples (raw, big-endian) to this file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: dump_ngff [flags] <pyramid directory>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}
	root := args[0]

	dims, err := nominalDimensions(root)
	if err != nil {
		log.Fatalf("Failed to determine image dimensions: %v", err)
	}

	buf, err := ngff.Open(dims, root, *maxTile)
	if err != nil {
		log.Fatalf("Failed to open pyramid: %v", err)
	}
	defer func() {
		if err := buf.Close(); err != nil {
			log.Printf("Failed to close pyramid: %v", err)
		}
	}()

	printSummary(buf, dims)

	if *out == "" {
		return
	}

	if *level >= 0 {
		if err := buf.SetResolutionLevel(*level); err != nil {
			log.Fatalf("Bad level: %v", err)
		}
	}

	ctx := ngff.RegionContext{MirrorX: *mirrorX, MirrorY: *mirrorY}
	if *tileX >= 0 || *tileY >= 0 {
		ctx.Tile = &ngff.TileIndex{X: *tileX, Y: *tileY}
	} else if *region != "" {
		var r ngff.Region
		if _, err := fmt.Sscanf(*region, "%d,%d,%d,%d", &r.X, &r.Y, &r.Width, &r.Height); err != nil {
			log.Fatalf("Bad region %q: %v", *region, err)
		}
		ctx.Region = &r
	}

	chunk := buf.Chunks()[buf.ResolutionLevel()]
	r := ngff.ResolveRegion(ctx, buf.SizeX(), buf.SizeY(), chunk[4], chunk[3])
	fmt.Printf("\nFetching region x=%d y=%d w=%d h=%d at level %d\n",
		r.X, r.Y, r.Width, r.Height, buf.ResolutionLevel())

	data, err := buf.GetTile(*theT, *theC, *theZ, r.Y, r.X, r.Width, r.Height)
	if err != nil {
		log.Fatalf("Tile read failed: %v", err)
	}
	if data == nil {
		log.Fatalf("Region of %d elements exceeds the %d element limit; re-request smaller tiles",
			r.Width*r.Height, *maxTile)
	}
	if *mirrorX || *mirrorY {
		data, err = ngff.MirrorBytes(data, r.Width, r.Height, buf.PixelType().Size, *mirrorX, *mirrorY)
		if err != nil {
			log.Fatalf("Mirror failed: %v", err)
		}
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Wrote %s to %s\n", humanize.IBytes(uint64(len(data))), *out)
}

// nominalDimensions derives the image's extents from the pyramid's
// full-resolution array. Serving deployments take these from the image's
// authoritative record instead; for a dump tool the stored extents are it.
func nominalDimensions(root string) (ngff.Dimensions, error) {
	raw, err := os.ReadFile(filepath.Join(root, ngff.AttrsKey))
	if err != nil {
		return ngff.Dimensions{}, err
	}
	var attrs struct {
		Multiscales []struct {
			Datasets []struct {
				Path string `json:"path"`
			} `json:"datasets"`
		} `json:"multiscales"`
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return ngff.Dimensions{}, err
	}
	if len(attrs.Multiscales) == 0 || len(attrs.Multiscales[0].Datasets) == 0 {
		return ngff.Dimensions{}, fmt.Errorf("no multiscale datasets in %s", root)
	}
	a, err := zarr.OpenArray(zarr.NewDirectoryStore(root), attrs.Multiscales[0].Datasets[0].Path, nil)
	if err != nil {
		return ngff.Dimensions{}, err
	}
	s := a.Shape()
	if len(s) != 5 {
		return ngff.Dimensions{}, fmt.Errorf("dataset rank %d, want 5", len(s))
	}
	return ngff.Dimensions{T: s[0], C: s[1], Z: s[2], Y: s[3], X: s[4]}, nil
}

func printSummary(buf *ngff.PixelBuffer, dims ngff.Dimensions) {
	pt := buf.PixelType()
	fmt.Printf("Pyramid: %d levels, %s samples, nominal %dx%d (TCZ %d/%d/%d)\n",
		buf.ResolutionLevels(), pt, dims.X, dims.Y, dims.T, dims.C, dims.Z)

	descs := buf.ResolutionDescriptions()
	chunks := buf.Chunks()
	datasets := buf.Datasets()
	n := len(descs)
	for i := n - 1; i >= 0; i-- {
		planeBytes := uint64(descs[i].SizeX) * uint64(descs[i].SizeY) * uint64(pt.Size)
		fmt.Printf("  level %d: %6dx%-6d chunks %v path %q plane %s\n",
			i, descs[i].SizeX, descs[i].SizeY, chunks[i],
			datasets[n-1-i].Path(), humanize.IBytes(planeBytes))
	}
}
