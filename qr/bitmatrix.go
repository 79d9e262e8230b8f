package qr

// BitMatrix is a square grid of modules: true is a dark module, false a
// light one. Used both for the raw QR symbol and for the Arnold-scrambled
// form embedded in a raster's wavelet coefficients.
type BitMatrix [][]bool

// Size returns the side length of m, or 0 for a nil/empty matrix.
func (m BitMatrix) Size() int {
	return len(m)
}

func newBitMatrix(size int) BitMatrix {
	m := make(BitMatrix, size)
	for i := range m {
		m[i] = make([]bool, size)
	}
	return m
}

// Resize scales m to a dim x dim matrix using nearest-neighbor sampling —
// the only sensible resampling scheme for boolean data, and (for the
// correct target dim) its own approximate inverse, which is what lets
// Decode recover the original QR symbol size from a watermark that was
// embedded at a different dim (spec.md §4.3, §4.6 step 3).
func (m BitMatrix) Resize(dim int) BitMatrix {
	src := m.Size()
	if src == 0 || dim == src {
		return m
	}
	out := newBitMatrix(dim)
	for y := 0; y < dim; y++ {
		sy := (2*y + 1) * src / (2 * dim)
		if sy >= src {
			sy = src - 1
		}
		for x := 0; x < dim; x++ {
			sx := (2*x + 1) * src / (2 * dim)
			if sx >= src {
				sx = src - 1
			}
			out[y][x] = m[sy][sx]
		}
	}
	return out
}

func getBit(v uint32, i int) bool {
	return (v>>uint(i))&1 != 0
}
