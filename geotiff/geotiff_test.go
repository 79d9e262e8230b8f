package geotiff

import "testing"

func buildTestDataset(bands int) *Dataset {
	d := NewDataset(17, 11, bands)
	for b := range d.Bands {
		for i := range d.Bands[b] {
			d.Bands[b][i] = byte((i*7 + b*31) % 256)
		}
	}
	return d
}

func TestEncodeDecodeRoundTripGray(t *testing.T) {
	d := buildTestDataset(1)
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertDatasetPixelsEqual(t, d, got)
}

func TestEncodeDecodeRoundTripRGBA(t *testing.T) {
	d := buildTestDataset(4)
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertDatasetPixelsEqual(t, d, got)
}

func TestGeoTransformRoundTrip(t *testing.T) {
	d := buildTestDataset(3)
	d.HasGeoTransform = true
	d.GeoTransform = [6]float64{500000, 10, 0, 4500000, 0, -10}
	d.EPSG = 32634

	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.HasGeoTransform {
		t.Fatal("decoded dataset lost its geotransform")
	}
	if got.GeoTransform != d.GeoTransform {
		t.Fatalf("geotransform mismatch: got %v, want %v", got.GeoTransform, d.GeoTransform)
	}
	if got.EPSG != d.EPSG {
		t.Fatalf("EPSG mismatch: got %d, want %d", got.EPSG, d.EPSG)
	}
}

func TestGCPRoundTrip(t *testing.T) {
	d := buildTestDataset(3)
	d.GCPs = []GCP{
		{Pixel: 0, Line: 0, X: 100, Y: 200, Z: 0},
		{Pixel: 16, Line: 10, X: 150, Y: 250, Z: 0},
	}
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.GCPs) != len(d.GCPs) {
		t.Fatalf("GCP count mismatch: got %d, want %d", len(got.GCPs), len(d.GCPs))
	}
	for i := range d.GCPs {
		if got.GCPs[i] != d.GCPs[i] {
			t.Errorf("GCP[%d] mismatch: got %+v, want %+v", i, got.GCPs[i], d.GCPs[i])
		}
	}
}

func TestNoDataRoundTrip(t *testing.T) {
	d := buildTestDataset(1)
	d.HasNoData = true
	d.NoData = "-9999"
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.HasNoData || got.NoData != "-9999" {
		t.Fatalf("NoData round trip failed: got %q (has=%v)", got.NoData, got.HasNoData)
	}
}

func TestPaletteRoundTrip(t *testing.T) {
	d := buildTestDataset(1)
	d.Palette = true
	d.ColorMap = make([][3]uint16, 256)
	for i := range d.ColorMap {
		d.ColorMap[i] = [3]uint16{uint16(i * 257), uint16(i * 113), uint16(i * 31)}
	}
	raw, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Palette {
		t.Fatal("decoded dataset lost Palette flag")
	}
	if len(got.ColorMap) != len(d.ColorMap) {
		t.Fatalf("color map length mismatch: got %d, want %d", len(got.ColorMap), len(d.ColorMap))
	}
	if got.ColorMap[128] != d.ColorMap[128] {
		t.Errorf("color map entry 128 mismatch: got %v, want %v", got.ColorMap[128], d.ColorMap[128])
	}
}

func assertDatasetPixelsEqual(t *testing.T, want, got *Dataset) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("dims mismatch: got %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	if len(got.Bands) != len(want.Bands) {
		t.Fatalf("band count mismatch: got %d, want %d", len(got.Bands), len(want.Bands))
	}
	for b := range want.Bands {
		for i := range want.Bands[b] {
			if got.Bands[b][i] != want.Bands[b][i] {
				t.Fatalf("band %d pixel %d mismatch: got %d, want %d", b, i, got.Bands[b][i], want.Bands[b][i])
			}
		}
	}
}
