package raster

import (
	"path/filepath"
	"testing"

	"github.com/opertusmundi/ipr-core/geotiff"
)

// invisibleTestSize is chosen so a 3-level Haar decomposition's HH3 side
// comes out to exactly 21 — QR version 1's native side — so
// EmbedInvisible/DetectInvisible exercise the embed/detect path without
// also depending on BitMatrix.Resize's lossy up/down-scaling.
const invisibleTestSize = 168

func writeGradientTIFF(t *testing.T, bands int) string {
	t.Helper()
	d := geotiff.NewDataset(invisibleTestSize, invisibleTestSize, bands)
	for b := range d.Bands {
		for i := range d.Bands[b] {
			x, y := i%invisibleTestSize, i/invisibleTestSize
			d.Bands[b][i] = byte((x + y + b*17) % 256)
		}
	}
	path := filepath.Join(t.TempDir(), "src.tif")
	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestEmbedInvisibleDetectInvisibleRoundTrip(t *testing.T) {
	srcPath := writeGradientTIFF(t, 1)
	original, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open original: %v", err)
	}

	if got := original.ColorBands(); len(got) != 1 {
		t.Fatalf("expected 1 color band for grayscale, got %d", len(got))
	}

	outPath := filepath.Join(t.TempDir(), "marked.tif")
	const message = "HI"
	if err := EmbedInvisible(original, message, outPath, nil); err != nil {
		t.Fatalf("EmbedInvisible: %v", err)
	}

	// original was mutated in place by EmbedInvisible's band rewrite, so
	// reopen a pristine copy to detect against.
	pristine, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("reopen pristine: %v", err)
	}
	suspect, err := Open(outPath, 0)
	if err != nil {
		t.Fatalf("Open suspect: %v", err)
	}

	got, ok, err := DetectInvisible(pristine, suspect, nil)
	if err != nil {
		t.Fatalf("DetectInvisible: %v", err)
	}
	if !ok {
		t.Fatal("expected a detected message, got none")
	}
	if got != message {
		t.Fatalf("got message %q, want %q", got, message)
	}
}

func TestDetectInvisibleOnUnmarkedReturnsFalseOrMismatch(t *testing.T) {
	srcPath := writeGradientTIFF(t, 1)
	original, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	other, err := Open(srcPath, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, ok, err := DetectInvisible(original, other, nil)
	if err != nil {
		t.Fatalf("DetectInvisible: %v", err)
	}
	if ok && got != "" {
		t.Fatalf("expected no confident message on an unmarked raster, got %q", got)
	}
}

func TestEmbedInvisibleNoColorBandsFails(t *testing.T) {
	d := &Dataset{Width: 4, Height: 4, Roles: []Role{RoleUndefined}}
	if err := EmbedInvisible(d, "x", "/tmp/out.tif", nil); err == nil {
		t.Fatal("expected an error for a dataset with no color bands")
	}
}
