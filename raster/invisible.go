package raster

import (
	"fmt"

	"github.com/opertusmundi/ipr-core/arnold"
	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/qr"
	"github.com/opertusmundi/ipr-core/wavelet"
)

// haarLevels is the decomposition depth spec.md §4.6 calls for: three
// detail levels (LH3,HL3,HH3) plus the coarser C2/C1 tuples.
const haarLevels = 3

// arnoldIterations is the scramble strength spec.md §4.6 fixes at 20.
const arnoldIterations = 20

// EmbedInvisible hides message in d's color bands' HH3 subband and writes
// the result to outPath (spec.md §4.6's Embed).
func EmbedInvisible(d *Dataset, message, outPath string, cancel *ipr.CancelFlag) error {
	colorBands := d.ColorBands()
	if len(colorBands) == 0 {
		return fmt.Errorf("%w: no color bands to embed into", ipr.ErrUnsupportedMode)
	}

	var scrambled [][]bool
	for _, bandIdx := range colorBands {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return err
		}

		plane := bytesToFloat64(d.Band(bandIdx))
		decomp := wavelet.ForwardMultilevel(plane, d.Width, d.Height, haarLevels)
		dim := decomp.HHDim()

		if scrambled == nil {
			bits, err := qr.EncodeAtSize(message, dim)
			if err != nil {
				return fmt.Errorf("%w: qr encode: %v", ipr.ErrInvalidOption, err)
			}
			s, err := arnold.Scramble(bits, arnoldIterations)
			if err != nil {
				return fmt.Errorf("%w: %v", ipr.ErrInternal, err)
			}
			scrambled = s
		}

		alpha := decomp.MeanAbsHH()
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				v := decomp.HHValue(x, y)
				if scrambled[y][x] {
					decomp.SetHHValue(x, y, v+alpha)
				} else {
					decomp.SetHHValue(x, y, v-alpha)
				}
			}
		}

		wavelet.InverseMultilevel(decomp)
		writeBackCropped(d, bandIdx, plane)
	}

	return d.CreateCopy(outPath)
}

// writeBackCropped copies the reconstructed plane into band bandIdx, but
// only over the (xsize-1, ysize-1) region (spec.md §4.6 step 6): the last
// row and column of the band are left exactly as they were, matching the
// source's reconstruction-crop convention without needing to reproduce its
// internal boundary handling bit-for-bit.
func writeBackCropped(d *Dataset, bandIdx int, plane []float64) {
	band := d.Band(bandIdx)
	w, h := d.Width, d.Height
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			i := y*w + x
			band[i] = clampBandByte(plane[i])
		}
	}
}

// DetectInvisible recovers the message embedded into suspect relative to
// original, or returns ("", false) if no band matches or decoding fails
// (spec.md §4.6's Detect). original and suspect must have already been
// opened as rasters of the same band roles; bands are matched by role.
func DetectInvisible(original, suspect *Dataset, cancel *ipr.CancelFlag) (string, bool, error) {
	origByRole := make(map[Role]int, len(original.Roles))
	for i, r := range original.Roles {
		origByRole[r] = i
	}

	var dim int
	var bitmap [][]float64
	matched := false

	for sIdx, role := range suspect.Roles {
		oIdx, ok := origByRole[role]
		if !ok || (role != RoleGray && role != RoleRed && role != RoleGreen && role != RoleBlue) {
			continue
		}
		if err := ipr.CheckCanceled(cancel); err != nil {
			return "", false, err
		}

		origPlane := bytesToFloat64(original.Band(oIdx))
		suspectPlane := bytesToFloat64(suspect.Band(sIdx))

		origDecomp := wavelet.ForwardMultilevel(origPlane, original.Width, original.Height, haarLevels)
		suspectDecomp := wavelet.ForwardMultilevel(suspectPlane, suspect.Width, suspect.Height, haarLevels)

		if bitmap == nil {
			dim = origDecomp.HHDim()
			bitmap = make([][]float64, dim)
			for i := range bitmap {
				bitmap[i] = make([]float64, dim)
			}
		}
		matched = true

		alpha := origDecomp.MeanAbsHH()
		if alpha == 0 {
			continue
		}
		sDim := suspectDecomp.HHDim()
		for y := 0; y < dim && y < sDim; y++ {
			for x := 0; x < dim && x < sDim; x++ {
				bitmap[y][x] += (suspectDecomp.HHValue(x, y) - origDecomp.HHValue(x, y)) / alpha
			}
		}
	}

	if !matched {
		return "", false, nil
	}

	thresholded := make([][]bool, dim)
	for y := range thresholded {
		thresholded[y] = make([]bool, dim)
		for x := range thresholded[y] {
			thresholded[y][x] = bitmap[y][x] >= 0
		}
	}

	unscrambled, err := arnold.Unscramble(thresholded, arnoldIterations)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ipr.ErrInternal, err)
	}

	msg, ok := qr.Decode(qr.BitMatrix(unscrambled))
	if !ok {
		return "", false, nil
	}
	return msg, true, nil
}

func bytesToFloat64(band []byte) []float64 {
	out := make([]float64, len(band))
	for i, v := range band {
		out[i] = float64(v)
	}
	return out
}
