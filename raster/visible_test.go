package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/opertusmundi/ipr-core/geotiff"
)

func writeWatermarkPNG(t *testing.T, w, h int, r, g, b, a uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{r, g, b, a})
		}
	}
	path := filepath.Join(t.TempDir(), "wm.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestEmbedVisibleStretchPreservesDimensions(t *testing.T) {
	d := geotiff.NewDataset(40, 30, 3)
	for b := range d.Bands {
		for i := range d.Bands[b] {
			d.Bands[b][i] = 100
		}
	}
	srcPath := filepath.Join(t.TempDir(), "src.tif")
	if err := d.WriteFile(srcPath); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rd, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	wmPath := writeWatermarkPNG(t, 10, 10, 255, 0, 0, 255)
	outPath := filepath.Join(t.TempDir(), "out.tif")
	opt := VisibleOptions{Fit: FitStretch, Position: PositionCenter, Transparency: 1.0}
	if err := EmbedVisible(rd, wmPath, outPath, opt); err != nil {
		t.Fatalf("EmbedVisible: %v", err)
	}

	out, err := Open(outPath, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if out.Width != 40 || out.Height != 30 {
		t.Fatalf("dims changed: got %dx%d, want 40x30", out.Width, out.Height)
	}
}

func TestEmbedVisibleLeavesTransparentWatermarkPixelsUnchanged(t *testing.T) {
	d := geotiff.NewDataset(20, 20, 3)
	for b := range d.Bands {
		for i := range d.Bands[b] {
			d.Bands[b][i] = 77
		}
	}
	srcPath := filepath.Join(t.TempDir(), "src.tif")
	if err := d.WriteFile(srcPath); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	rd, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// fully transparent watermark: wm_value*alpha == 0 everywhere, so the
	// composited output must equal the input exactly (spec.md §4.5 edge
	// case, alpha=0 case of "wm_value*alpha <= 0.1").
	wmPath := writeWatermarkPNG(t, 20, 20, 200, 200, 200, 0)
	outPath := filepath.Join(t.TempDir(), "out.tif")
	opt := VisibleOptions{Fit: FitStretch, Position: PositionCenter, Transparency: 1.0}
	if err := EmbedVisible(rd, wmPath, outPath, opt); err != nil {
		t.Fatalf("EmbedVisible: %v", err)
	}

	out, err := Open(outPath, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for b := 0; b < 3; b++ {
		for i, v := range out.Band(b) {
			if v != 77 {
				t.Fatalf("band %d pixel %d changed: got %d, want 77", b, i, v)
			}
		}
	}
}

func TestEmbedVisibleRejectsUnknownFit(t *testing.T) {
	d := geotiff.NewDataset(10, 10, 3)
	srcPath := filepath.Join(t.TempDir(), "src.tif")
	if err := d.WriteFile(srcPath); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	rd, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	wmPath := writeWatermarkPNG(t, 4, 4, 1, 1, 1, 255)
	err = EmbedVisible(rd, wmPath, filepath.Join(t.TempDir(), "out.tif"), VisibleOptions{Fit: "bogus"})
	if err == nil {
		t.Fatal("expected an error for an unknown fit")
	}
}

func TestPrepareWatermarkTileRejectsOutOfRangeDistance(t *testing.T) {
	wm := newWatermark(5, 5)
	_, err := prepareWatermark(wm, 20, 20, VisibleOptions{Fit: FitTile, DistanceX: 0, DistanceY: 5})
	if err == nil {
		t.Fatal("expected an error for a zero tile distance")
	}
}
