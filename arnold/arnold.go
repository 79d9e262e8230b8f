// Package arnold implements the forward/inverse Arnold cat-map scramble used
// to pseudo-randomize a QR bit matrix before it is hidden in a raster's
// frequency domain (spec.md §4.2, component C2).
package arnold

import "fmt"

// Scramble applies the Arnold cat-map transform to a square boolean matrix
// iterations times (spec.md §4.2, 1-indexed formula, 0-indexed storage):
//
//	S[(x+2y) mod N][(x+y) mod N] = M[y][x]
//
// Implemented iteratively (not recursively, per spec.md §9) to bound stack
// depth regardless of the iteration count.
func Scramble(m [][]bool, iterations int) ([][]bool, error) {
	n, err := squareSide(m)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("arnold: iterations must be >= 1, got %d", iterations)
	}

	cur := cloneMatrix(m, n)
	for it := 0; it < iterations; it++ {
		next := newMatrix(n)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				xp := mod(x+2*y, n)
				yp := mod(x+y, n)
				next[xp][yp] = cur[y][x]
			}
		}
		cur = next
	}
	return cur, nil
}

// Unscramble applies the inverse Arnold cat-map transform, recovering the
// original matrix from a matrix scrambled with the same iteration count
// (spec.md §4.2):
//
//	M[(-x+y) mod N][(2x-y) mod N] = S[y][x]
func Unscramble(s [][]bool, iterations int) ([][]bool, error) {
	n, err := squareSide(s)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, fmt.Errorf("arnold: iterations must be >= 1, got %d", iterations)
	}

	cur := cloneMatrix(s, n)
	for it := 0; it < iterations; it++ {
		next := newMatrix(n)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				xp := mod(-x+y, n)
				yp := mod(2*x-y, n)
				next[xp][yp] = cur[y][x]
			}
		}
		cur = next
	}
	return cur, nil
}

func squareSide(m [][]bool) (int, error) {
	n := len(m)
	if n < 2 {
		return 0, fmt.Errorf("arnold: matrix side must be >= 2, got %d", n)
	}
	for _, row := range m {
		if len(row) != n {
			return 0, fmt.Errorf("arnold: matrix must be square, got %dx%d", n, len(row))
		}
	}
	return n, nil
}

func newMatrix(n int) [][]bool {
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	return m
}

func cloneMatrix(m [][]bool, n int) [][]bool {
	out := newMatrix(n)
	for i := 0; i < n; i++ {
		copy(out[i], m[i])
	}
	return out
}

// mod is the Euclidean modulo (always non-negative), matching Python's %
// semantics used by the formulas in spec.md §4.2.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
