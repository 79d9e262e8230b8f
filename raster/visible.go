package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strconv"

	"github.com/opertusmundi/ipr-core/ipr"
)

// VisibleOptions configures the visible embedder (spec.md §4.5).
type VisibleOptions struct {
	Fit           Fit
	Position      Position
	Transparency  float64
	DistanceX     int
	DistanceY     int
	Grayscale     bool
}

// watermarkImage is a minimal RGBA plane set, decoded from a PNG/JPEG file
// and otherwise manipulated entirely by this package (resize, crop, tile,
// pad), mirroring the byte-plane model raster.Dataset already uses for the
// raster itself.
type watermarkImage struct {
	Width, Height int
	R, G, B, A    []byte
}

func loadWatermarkImage(path string) (*watermarkImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ipr.ErrDatasetMissing, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode watermark: %v", ipr.ErrInvalidOption, err)
	}
	return fromImage(img), nil
}

func fromImage(img image.Image) *watermarkImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	wm := newWatermark(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := y*w + x
			wm.R[i] = byte(r >> 8)
			wm.G[i] = byte(g >> 8)
			wm.B[i] = byte(bb >> 8)
			wm.A[i] = byte(a >> 8)
		}
	}
	return wm
}

func newWatermark(w, h int) *watermarkImage {
	n := w * h
	return &watermarkImage{
		Width: w, Height: h,
		R: make([]byte, n), G: make([]byte, n), B: make([]byte, n), A: make([]byte, n),
	}
}

// transparentCanvas is newWatermark with alpha left at 0 everywhere, used
// as the backing for pad/tile compositing.
func transparentCanvas(w, h int) *watermarkImage {
	return newWatermark(w, h)
}

func (wm *watermarkImage) at(x, y int) (r, g, b, a byte) {
	if x < 0 || x >= wm.Width || y < 0 || y >= wm.Height {
		return 0, 0, 0, 0
	}
	i := y*wm.Width + x
	return wm.R[i], wm.G[i], wm.B[i], wm.A[i]
}

func (wm *watermarkImage) set(x, y int, r, g, b, a byte) {
	if x < 0 || x >= wm.Width || y < 0 || y >= wm.Height {
		return
	}
	i := y*wm.Width + x
	wm.R[i], wm.G[i], wm.B[i], wm.A[i] = r, g, b, a
}

// resize performs nearest-neighbor resampling to (w,h), the same strategy
// qr.BitMatrix.Resize uses for its own up/down scaling.
func (wm *watermarkImage) resize(w, h int) *watermarkImage {
	if w == wm.Width && h == wm.Height {
		return wm
	}
	out := newWatermark(w, h)
	for y := 0; y < h; y++ {
		sy := y * wm.Height / h
		for x := 0; x < w; x++ {
			sx := x * wm.Width / w
			r, g, b, a := wm.at(sx, sy)
			out.set(x, y, r, g, b, a)
		}
	}
	return out
}

// centerCrop crops wm to (w,h), centered on its own extent.
func (wm *watermarkImage) centerCrop(w, h int) *watermarkImage {
	if w >= wm.Width && h >= wm.Height {
		return wm
	}
	ox := maxInt(0, (wm.Width-w)/2)
	oy := maxInt(0, (wm.Height-h)/2)
	out := newWatermark(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := wm.at(ox+x, oy+y)
			out.set(x, y, r, g, b, a)
		}
	}
	return out
}

// pad places wm onto a transparent (W,H) canvas at margins determined by
// position (spec.md §4.5's non-tile fit step).
func (wm *watermarkImage) pad(w, h int, pos Position) *watermarkImage {
	var ox, oy int
	switch pos {
	case PositionTopLeft:
		ox, oy = 0, 0
	case PositionTopRight:
		ox, oy = w-wm.Width, 0
	case PositionBottomLeft:
		ox, oy = 0, h-wm.Height
	case PositionBottomRight:
		ox, oy = w-wm.Width, h-wm.Height
	default: // center
		ox, oy = (w-wm.Width)/2, (h-wm.Height)/2
	}
	canvas := transparentCanvas(w, h)
	for y := 0; y < wm.Height; y++ {
		for x := 0; x < wm.Width; x++ {
			r, g, b, a := wm.at(x, y)
			canvas.set(ox+x, oy+y, r, g, b, a)
		}
	}
	return canvas
}

// tile builds a (W,H) canvas with copies of wm pasted at
// (dx+i·(w+dx), dy+j·(h+dy)), row-wrapping per spec.md §4.5.
func (wm *watermarkImage) tile(w, h, dx, dy int) *watermarkImage {
	canvas := transparentCanvas(w, h)
	x, y := dx, dy
	for y < h {
		wx := x
		for wx < w {
			pasteInto(canvas, wm, wx, y)
			wx += wm.Width + dx
		}
		x = dx
		y += wm.Height + dy
	}
	return canvas
}

// toGrayscale collapses R,G,B into the ITU-R BT.601 luma value, matching
// a convert-to-LA step (alpha is left untouched).
func (wm *watermarkImage) toGrayscale() {
	for i := range wm.R {
		luma := byte((299*int(wm.R[i]) + 587*int(wm.G[i]) + 114*int(wm.B[i])) / 1000)
		wm.R[i], wm.G[i], wm.B[i] = luma, luma, luma
	}
}

func pasteInto(canvas, wm *watermarkImage, ox, oy int) {
	for y := 0; y < wm.Height; y++ {
		for x := 0; x < wm.Width; x++ {
			r, g, b, a := wm.at(x, y)
			canvas.set(ox+x, oy+y, r, g, b, a)
		}
	}
}

// prepareWatermark implements spec.md §4.5's "Watermark preparation" step.
func prepareWatermark(wm *watermarkImage, W, H int, opt VisibleOptions) (*watermarkImage, error) {
	switch opt.Fit {
	case FitStretch:
		wm = wm.resize(W, H)
	case FitHeight:
		w := int(math.Round(float64(wm.Width) * float64(H) / float64(wm.Height)))
		wm = wm.resize(w, H)
	case FitWidth:
		h := int(math.Round(float64(wm.Height) * float64(W) / float64(wm.Width)))
		wm = wm.resize(W, h)
	case FitOriginal:
		// no resize
	case FitTile:
		if opt.DistanceX <= 0 || opt.DistanceX >= W || opt.DistanceY <= 0 || opt.DistanceY >= H {
			return nil, ErrInvalidTileDistance
		}
		tiled := wm.tile(W, H, opt.DistanceX, opt.DistanceY)
		if opt.Grayscale {
			tiled.toGrayscale()
		}
		return tiled, nil
	default:
		return nil, fmt.Errorf("%w: unknown fit %q", ipr.ErrInvalidOption, opt.Fit)
	}

	if wm.Width > W || wm.Height > H {
		cw, ch := minInt(wm.Width, W), minInt(wm.Height, H)
		wm = wm.centerCrop(cw, ch)
	}
	if wm.Width < W || wm.Height < H {
		wm = wm.pad(W, H, opt.Position)
	}
	return wm, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// EmbedVisible composites wm onto d at outPath per spec.md §4.5.
func EmbedVisible(d *Dataset, watermarkPath, outPath string, opt VisibleOptions) error {
	if !validFit(opt.Fit) {
		return fmt.Errorf("%w: unknown fit %q", ipr.ErrInvalidOption, opt.Fit)
	}
	if opt.Fit != FitTile && !validPosition(opt.Position) {
		return fmt.Errorf("%w: unknown position %q", ipr.ErrInvalidOption, opt.Position)
	}
	if opt.Transparency < 0 {
		return fmt.Errorf("%w: negative transparency %v", ipr.ErrInvalidOption, opt.Transparency)
	}

	raw, err := loadWatermarkImage(watermarkPath)
	if err != nil {
		return err
	}
	wm, err := prepareWatermark(raw, d.Width, d.Height, opt)
	if err != nil {
		return err
	}

	colorBands := d.ColorBands()
	hasAlpha := d.Mode == ModeRGBA
	alphaBandIdx := -1
	if hasAlpha {
		for i, r := range d.Roles {
			if r == RoleAlpha {
				alphaBandIdx = i
			}
		}
	}

	for _, bandIdx := range colorBands {
		band := append([]byte(nil), d.Band(bandIdx)...)
		mean, std := d.BandStats(bandIdx)
		compositeBand(band, d.Width, d.Height, wm, bandForRole(d.Roles[bandIdx]), opt.Transparency, false, mean, std, d.HasNoData, d.NoData)
		d.SetBand(bandIdx, band)
	}
	if alphaBandIdx >= 0 {
		band := append([]byte(nil), d.Band(alphaBandIdx)...)
		mean, std := d.BandStats(alphaBandIdx)
		compositeBand(band, d.Width, d.Height, wm, wmAlphaChannel, opt.Transparency, true, mean, std, d.HasNoData, d.NoData)
		d.SetBand(alphaBandIdx, band)
	}

	// CreateCopy re-palettizes automatically when d.PaletteCount is set.
	return d.CreateCopy(outPath)
}

type wmChannel int

const (
	wmGrayOrRed wmChannel = iota
	wmGreen
	wmBlue
	wmAlphaChannel
)

func bandForRole(r Role) wmChannel {
	switch r {
	case RoleGreen:
		return wmGreen
	case RoleBlue:
		return wmBlue
	default:
		return wmGrayOrRed
	}
}

// compositeBand applies spec.md §4.5 step 2-4 to a single band plane.
func compositeBand(band []byte, w, h int, wm *watermarkImage, ch wmChannel, transparency float64, isAlphaBand bool, mean, std float64, hasNoData bool, noData string) {
	noDataValue, haveNoDataValue := parseNoDataValue(noData)
	hasNoData = hasNoData && haveNoDataValue

	const bandMax = 255.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			r, g, b, a := wm.at(x, y)
			var sample byte
			switch ch {
			case wmGreen:
				sample = g
			case wmBlue:
				sample = b
			default:
				sample = r
			}
			wmValue := float64(sample) / 255.0
			alpha := float64(a) / 255.0
			if wmValue*alpha <= 0.1 {
				continue
			}

			target := band[i]
			isNodata := hasNoData && float64(target) == noDataValue

			if isAlphaBand {
				if isNodata || target == 0 {
					band[i] = clampBandByte(math.Round(mean + std))
				}
				continue
			}

			aa := alpha * transparency
			n := (1 - wmValue) * aa
			if isNodata {
				band[i] = clampBandByte(math.Round((1 - n) * bandMax))
				continue
			}
			trueVal := float64(target) / bandMax
			band[i] = clampBandByte(math.Round((1 - (1-trueVal)*(1-aa) - n) * bandMax))
		}
	}
}

// parseNoDataValue parses a GDAL NoData tag string (e.g. "-9999", "0", "255")
// into its numeric value for comparison against band samples. GDAL carries
// NoData as arbitrary ASCII text, not a fixed sentinel (geotiff.Dataset.NoData,
// geotiff_test.go's TestNoDataRoundTrip), so it must be parsed rather than
// assumed to be 0.
func parseNoDataValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clampBandByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
