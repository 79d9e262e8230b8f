package raster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opertusmundi/ipr-core/geotiff"
)

func writeTestTIFF(t *testing.T, bands int) string {
	t.Helper()
	d := geotiff.NewDataset(12, 9, bands)
	for b := range d.Bands {
		for i := range d.Bands[b] {
			d.Bands[b][i] = byte((i*13 + b*37) % 256)
		}
	}
	path := filepath.Join(t.TempDir(), "test.tif")
	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpenClassifiesGrayscale(t *testing.T) {
	path := writeTestTIFF(t, 1)
	d, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Mode != ModeGrayscale {
		t.Fatalf("got mode %v, want Grayscale", d.Mode)
	}
}

func TestOpenClassifiesRGB(t *testing.T) {
	path := writeTestTIFF(t, 3)
	d, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Mode != ModeRGB {
		t.Fatalf("got mode %v, want RGB", d.Mode)
	}
}

func TestOpenClassifiesRGBA(t *testing.T) {
	path := writeTestTIFF(t, 4)
	d, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Mode != ModeRGBA {
		t.Fatalf("got mode %v, want RGBA", d.Mode)
	}
	if len(d.ColorBands()) != 3 {
		t.Fatalf("expected 3 color bands, got %d", len(d.ColorBands()))
	}
}

func TestOpenAppliesEPSGOverride(t *testing.T) {
	path := writeTestTIFF(t, 3)
	d, err := Open(path, 4326)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.EPSG != 4326 {
		t.Fatalf("got EPSG %d, want 4326", d.EPSG)
	}
}

func TestCreateCopyPreservesGeoreference(t *testing.T) {
	path := writeTestTIFF(t, 3)
	d, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.HasGeoTransform = true
	d.GeoTransform = [6]float64{100, 2, 0, 200, 0, -2}

	outPath := filepath.Join(t.TempDir(), "out.tif")
	if err := d.CreateCopy(outPath); err != nil {
		t.Fatalf("CreateCopy: %v", err)
	}

	got, err := Open(outPath, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !got.HasGeoTransform || got.GeoTransform != d.GeoTransform {
		t.Fatalf("geotransform not preserved: got %v", got.GeoTransform)
	}
}

func TestRgb2PctBandsRoundTripsThroughPalette(t *testing.T) {
	path := writeTestTIFF(t, 3)
	d, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.PaletteCount = 64

	outPath := filepath.Join(t.TempDir(), "pct.tif")
	if err := d.CreateCopy(outPath); err != nil {
		t.Fatalf("CreateCopy: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tiff, err := geotiff.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !tiff.Palette {
		t.Fatal("expected palette output")
	}
	if len(tiff.ColorMap) == 0 || len(tiff.ColorMap) > 64 {
		t.Fatalf("unexpected color map size: %d", len(tiff.ColorMap))
	}
}
