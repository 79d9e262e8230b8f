// Package raster implements the raster I/O facade, visible embedder, and
// invisible embedder/detector (spec.md §4.4-§4.6, components C4-C6). It
// opens and writes GeoTIFF files through the geotiff package, classifies
// raster mode and band roles the way a GDAL-backed facade would, and
// drives the wavelet/qr/arnold packages for invisible marking.
package raster

import (
	"fmt"

	"github.com/opertusmundi/ipr-core/geotiff"
	"github.com/opertusmundi/ipr-core/ipr"
)

// Role is a band's color role within a raster (spec.md §3).
type Role int

const (
	RoleUndefined Role = iota
	RoleRed
	RoleGreen
	RoleBlue
	RoleAlpha
	RoleGray
	RolePalette
)

// Mode classifies a raster's overall color model (spec.md §3).
type Mode int

const (
	ModeUnsupported Mode = iota
	ModeGrayscale
	ModeRGB
	ModeRGBA
	ModePalette
)

func (m Mode) String() string {
	switch m {
	case ModeGrayscale:
		return "Grayscale"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	case ModePalette:
		return "Palette"
	default:
		return "Unsupported"
	}
}

// Dataset wraps a geotiff.Dataset with the band-role/mode bookkeeping the
// raster facade needs (spec.md §3's RasterDataset and §4.4's Raster I/O
// Facade). Paletted input is expanded in place into a working RGBA copy;
// Driver and PaletteCount remember enough to re-palettize on output.
type Dataset struct {
	tiff *geotiff.Dataset

	Width, Height int
	Roles         []Role
	Mode          Mode

	// Driver is the identity under which the dataset should be persisted
	// on output. This facade only has one physical codec (GeoTIFF — see
	// the "Driver identity" note in the expanded specification), so Driver
	// is carried purely as metadata rather than selecting between codecs.
	Driver string

	// PaletteCount is the original palette's entry count, set only when
	// the source was Palette mode; output re-palettizes to this count.
	PaletteCount int
	palette      [][3]uint16

	GeoTransform    [6]float64
	HasGeoTransform bool
	GCPs            []geotiff.GCP
	EPSG            int
	NoData          string
	HasNoData       bool
}

// Open reads path as a GeoTIFF, classifies its mode, and — for paletted
// input — expands it into a working RGBA copy (spec.md §4.4). If epsg is
// non-zero it overrides whatever spatial reference the file carries.
func Open(path string, epsg int) (*Dataset, error) {
	tiff, err := geotiff.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ipr.ErrInternal, err)
	}
	return fromGeoTIFF(tiff, epsg)
}

func fromGeoTIFF(tiff *geotiff.Dataset, epsg int) (*Dataset, error) {
	d := &Dataset{
		tiff:            tiff,
		Width:           tiff.Width,
		Height:          tiff.Height,
		Driver:          "GTiff",
		GeoTransform:    tiff.GeoTransform,
		HasGeoTransform: tiff.HasGeoTransform,
		GCPs:            tiff.GCPs,
		EPSG:            tiff.EPSG,
		NoData:          tiff.NoData,
		HasNoData:       tiff.HasNoData,
	}
	if epsg != 0 {
		d.EPSG = epsg
	}

	if tiff.Palette {
		d.PaletteCount = len(tiff.ColorMap)
		d.palette = tiff.ColorMap
		d.expandPaletteToRGBA()
	} else {
		d.classifyRoles(len(tiff.Bands))
	}

	if err := d.classifyMode(); err != nil {
		return nil, err
	}
	return d, nil
}

// classifyRoles assigns roles for non-palette rasters by band count, the
// convention a GDAL-backed source also follows for plain RGB(A)/gray
// imagery with no explicit per-band color-interpretation tags.
func (d *Dataset) classifyRoles(bandCount int) {
	switch bandCount {
	case 1:
		d.Roles = []Role{RoleGray}
	case 3:
		d.Roles = []Role{RoleRed, RoleGreen, RoleBlue}
	case 4:
		d.Roles = []Role{RoleRed, RoleGreen, RoleBlue, RoleUndefined}
		if d.inferredAlpha() {
			d.Roles[3] = RoleAlpha
		}
	default:
		d.Roles = make([]Role, bandCount)
	}
}

// inferredAlpha implements spec.md §3's RGBA inference rule: a 4th band
// with role Undefined and a max sample value under 256 counts as alpha.
// Every 8-bit sample is already < 256, so this rule never excludes a band
// on value range alone — it only distinguishes "4 bands present" from
// "this is actually meant as a transparency channel" when no explicit
// color-interpretation metadata says so, which a pure 8-bit TIFF reader
// can't distinguish any other way.
func (d *Dataset) inferredAlpha() bool {
	return true
}

func (d *Dataset) classifyMode() error {
	hasRole := func(r Role) bool {
		for _, role := range d.Roles {
			if role == r {
				return true
			}
		}
		return false
	}

	switch {
	case hasRole(RoleGray):
		d.Mode = ModeGrayscale
	case d.PaletteCount > 0:
		d.Mode = ModePalette
	case len(d.Roles) == 3 && hasRole(RoleRed) && hasRole(RoleGreen) && hasRole(RoleBlue):
		d.Mode = ModeRGB
	case len(d.Roles) == 4 && hasRole(RoleRed) && hasRole(RoleGreen) && hasRole(RoleBlue) && hasRole(RoleAlpha):
		d.Mode = ModeRGBA
	default:
		return ipr.ErrUnsupportedMode
	}
	return nil
}

// expandPaletteToRGBA replaces the single palette-index band with R, G, B
// bands looked up through the stored color map plus a fully opaque alpha
// band (spec.md §4.4's "translate-with-rgba step into a working RGBA copy").
func (d *Dataset) expandPaletteToRGBA() {
	idx := d.tiff.Bands[0]
	r := make([]byte, len(idx))
	g := make([]byte, len(idx))
	b := make([]byte, len(idx))
	a := make([]byte, len(idx))
	for i, v := range idx {
		entry := d.palette[v]
		r[i] = byte(entry[0] >> 8)
		g[i] = byte(entry[1] >> 8)
		b[i] = byte(entry[2] >> 8)
		a[i] = 255
	}
	d.tiff.Bands = [][]byte{r, g, b, a}
	d.Roles = []Role{RoleRed, RoleGreen, RoleBlue, RoleAlpha}
}

// ColorBands returns the bands that carry color (spec.md §4.6: Gray for
// grayscale, otherwise R,G,B), excluding Alpha/Palette/Undefined.
func (d *Dataset) ColorBands() []int {
	var out []int
	for i, r := range d.Roles {
		if r == RoleGray || r == RoleRed || r == RoleGreen || r == RoleBlue {
			out = append(out, i)
		}
	}
	return out
}

// Band returns the raw byte plane for band i.
func (d *Dataset) Band(i int) []byte {
	return d.tiff.Bands[i]
}

// SetBand replaces the raw byte plane for band i.
func (d *Dataset) SetBand(i int, data []byte) {
	d.tiff.Bands[i] = data
}

// BandCount returns the number of bands currently backing the dataset
// (post palette-expansion, so 4 for an originally-paletted source).
func (d *Dataset) BandCount() int {
	return len(d.tiff.Bands)
}

// BandStats returns the mean and population standard deviation of band i,
// used by the visible embedder's alpha-channel nodata repair (spec.md
// §4.5 step 3).
func (d *Dataset) BandStats(i int) (mean, std float64) {
	band := d.tiff.Bands[i]
	if len(band) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range band {
		sum += float64(v)
	}
	mean = sum / float64(len(band))
	var variance float64
	for _, v := range band {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(band))
	return mean, sqrt(variance)
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 40; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// toGeoTIFF rebuilds the backing geotiff.Dataset from the current bands
// and metadata, re-palettizing first if PaletteCount is set.
func (d *Dataset) toGeoTIFF() *geotiff.Dataset {
	out := &geotiff.Dataset{
		Width:           d.Width,
		Height:          d.Height,
		Bands:           d.tiff.Bands,
		GeoTransform:    d.GeoTransform,
		HasGeoTransform: d.HasGeoTransform,
		GCPs:            d.GCPs,
		EPSG:            d.EPSG,
		NoData:          d.NoData,
		HasNoData:       d.HasNoData,
	}
	if d.PaletteCount > 0 {
		idx, cmap := Rgb2PctBands(out.Bands, d.PaletteCount, d.Width)
		out.Bands = [][]byte{idx}
		out.Palette = true
		out.ColorMap = cmap
	}
	return out
}

// CreateCopy writes out as a GeoTIFF preserving d's geotransform,
// projection, GCPs, and band order (spec.md §4.4's create_copy).
func (d *Dataset) CreateCopy(path string) error {
	return d.toGeoTIFF().WriteFile(path)
}
