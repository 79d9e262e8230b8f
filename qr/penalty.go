package qr

const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// finderRunHistory tracks the last seven run lengths along a row or column
// to detect finder-like 1:1:3:1:1 patterns, exactly as ISO 18004's penalty
// rule 3 requires.
type finderRunHistory struct {
	size    int
	history [7]int
}

func newFinderRunHistory(size int) *finderRunHistory {
	return &finderRunHistory{size: size}
}

func (h *finderRunHistory) add(runLength int) {
	if h.history[0] == 0 {
		runLength += h.size
	}
	copy(h.history[1:], h.history[:6])
	h.history[0] = runLength
}

func (h *finderRunHistory) countPatterns() int {
	n := h.history[1]
	core := n > 0 && h.history[2] == n && h.history[3] == n*3 && h.history[4] == n && h.history[5] == n
	count := 0
	if core && h.history[0] >= n*4 && h.history[6] >= n {
		count++
	}
	if core && h.history[6] >= n*4 && h.history[0] >= n {
		count++
	}
	return count
}

func (h *finderRunHistory) terminate(runColor bool, runLength int) int {
	if runColor {
		h.add(runLength)
		runLength = 0
	}
	runLength += h.size
	h.add(runLength)
	return h.countPatterns()
}

// penaltyScore computes the four ISO 18004 penalty rules over the current
// (masked) module grid, used by Encode to pick the mask that minimizes
// them.
func (s *symbol) penaltyScore() int {
	size := s.size
	result := 0

	for y := 0; y < size; y++ {
		var runColor bool
		runLen := 0
		hist := newFinderRunHistory(size)
		for x := 0; x < size; x++ {
			if s.at(x, y) == runColor {
				runLen++
				if runLen == 5 {
					result += penaltyN1
				} else if runLen > 5 {
					result++
				}
			} else {
				hist.add(runLen)
				if !runColor {
					result += hist.countPatterns() * penaltyN3
				}
				runColor = s.at(x, y)
				runLen = 1
			}
		}
		result += hist.terminate(runColor, runLen) * penaltyN3
	}

	for x := 0; x < size; x++ {
		var runColor bool
		runLen := 0
		hist := newFinderRunHistory(size)
		for y := 0; y < size; y++ {
			if s.at(x, y) == runColor {
				runLen++
				if runLen == 5 {
					result += penaltyN1
				} else if runLen > 5 {
					result++
				}
			} else {
				hist.add(runLen)
				if !runColor {
					result += hist.countPatterns() * penaltyN3
				}
				runColor = s.at(x, y)
				runLen = 1
			}
		}
		result += hist.terminate(runColor, runLen) * penaltyN3
	}

	for y := 0; y < size-1; y++ {
		for x := 0; x < size-1; x++ {
			c := s.at(x, y)
			if c == s.at(x+1, y) && c == s.at(x, y+1) && c == s.at(x+1, y+1) {
				result += penaltyN2
			}
		}
	}

	dark := 0
	for _, v := range s.modules {
		if v {
			dark++
		}
	}
	total := size * size
	k := (absInt(dark*20-total*10)+total-1)/total - 1
	if k > 0 {
		result += k * penaltyN4
	}
	return result
}
