package raster

// Rgb2PctBands quantizes an RGB(A) band set down to colorCount palette
// entries using median-cut color quantization followed by Floyd-Steinberg
// error-diffusion dithering (spec.md §4.4's rgb2pct), returning the
// resulting index band and its color map. Only the first three bands
// (R, G, B) participate in quantization; a 4th band, if present, is
// ignored here since palette rasters carry no alpha of their own. stride
// is the plane's row length, needed so dithering's error diffusion steps
// to the correct row-major neighbors.
func Rgb2PctBands(bands [][]byte, colorCount int, stride int) (index []byte, colorMap [][3]uint16) {
	n := 0
	if len(bands) > 0 {
		n = len(bands[0])
	}
	pixels := make([][3]int, n)
	for i := 0; i < n; i++ {
		pixels[i] = [3]int{int(bands[0][i]), int(bands[1][i]), int(bands[2][i])}
	}

	palette := medianCutPalette(pixels, colorCount)
	colorMap = make([][3]uint16, len(palette))
	for i, c := range palette {
		colorMap[i] = [3]uint16{
			uint16(c[0]) * 257,
			uint16(c[1]) * 257,
			uint16(c[2]) * 257,
		}
	}

	index = floydSteinbergDither(pixels, palette, stride)
	return index, colorMap
}

type colorBox struct {
	pixels []int // indices into the shared pixel slice
}

// medianCutPalette repeatedly splits the pixel population along its
// widest color channel at the median, producing colorCount representative
// colors (the mean of each final box).
func medianCutPalette(pixels [][3]int, colorCount int) [][3]int {
	if colorCount < 1 {
		colorCount = 1
	}
	if len(pixels) == 0 {
		return [][3]int{{0, 0, 0}}
	}

	all := make([]int, len(pixels))
	for i := range all {
		all[i] = i
	}
	boxes := []colorBox{{pixels: all}}

	for len(boxes) < colorCount {
		widest := -1
		widestRange := -1
		for i, b := range boxes {
			if len(b.pixels) < 2 {
				continue
			}
			_, rng := widestChannel(pixels, b.pixels)
			if rng > widestRange {
				widestRange = rng
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		ch, _ := widestChannel(pixels, boxes[widest].pixels)
		left, right := splitAtMedian(pixels, boxes[widest].pixels, ch)
		boxes = append(boxes[:widest], append([]colorBox{{pixels: left}, {pixels: right}}, boxes[widest+1:]...)...)
	}

	palette := make([][3]int, len(boxes))
	for i, b := range boxes {
		palette[i] = meanColor(pixels, b.pixels)
	}
	return palette
}

func widestChannel(pixels [][3]int, idx []int) (channel int, rng int) {
	var lo, hi [3]int
	lo = pixels[idx[0]]
	hi = pixels[idx[0]]
	for _, i := range idx {
		p := pixels[i]
		for c := 0; c < 3; c++ {
			if p[c] < lo[c] {
				lo[c] = p[c]
			}
			if p[c] > hi[c] {
				hi[c] = p[c]
			}
		}
	}
	best, bestRange := 0, -1
	for c := 0; c < 3; c++ {
		r := hi[c] - lo[c]
		if r > bestRange {
			bestRange = r
			best = c
		}
	}
	return best, bestRange
}

func splitAtMedian(pixels [][3]int, idx []int, channel int) (left, right []int) {
	sorted := append([]int(nil), idx...)
	// insertion sort: boxes are small relative to a full-image sort and
	// this keeps the package allocation-light and dependency-free.
	for i := 1; i < len(sorted); i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && pixels[sorted[j]][channel] > pixels[v][channel] {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

func meanColor(pixels [][3]int, idx []int) [3]int {
	var sum [3]int
	for _, i := range idx {
		p := pixels[i]
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := len(idx)
	if n == 0 {
		return [3]int{0, 0, 0}
	}
	return [3]int{sum[0] / n, sum[1] / n, sum[2] / n}
}

// floydSteinbergDither maps each pixel to its nearest palette entry,
// diffusing the quantization error to its right and below neighbors in
// the classic Floyd-Steinberg pattern (7/16, 3/16, 5/16, 1/16).
func floydSteinbergDither(pixels [][3]int, palette [][3]int, stride int) []byte {
	n := len(pixels)
	out := make([]byte, n)
	work := make([][3]float64, n)
	for i, p := range pixels {
		work[i] = [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
	}
	if stride <= 0 {
		stride = n
	}
	height := 1
	if stride > 0 {
		height = (n + stride - 1) / stride
	}

	for y := 0; y < height; y++ {
		for x := 0; x < stride; x++ {
			i := y*stride + x
			if i >= n {
				continue
			}
			cur := work[i]
			clamped := [3]int{clampByte(cur[0]), clampByte(cur[1]), clampByte(cur[2])}
			idx, nearest := nearestPaletteEntry(palette, clamped)
			out[i] = byte(idx)

			var errc [3]float64
			for c := 0; c < 3; c++ {
				errc[c] = cur[c] - float64(nearest[c])
			}
			diffuse(work, x+1, y, stride, height, errc, 7.0/16)
			diffuse(work, x-1, y+1, stride, height, errc, 3.0/16)
			diffuse(work, x, y+1, stride, height, errc, 5.0/16)
			diffuse(work, x+1, y+1, stride, height, errc, 1.0/16)
		}
	}
	return out
}

func diffuse(work [][3]float64, x, y, stride, height int, errc [3]float64, weight float64) {
	if x < 0 || x >= stride || y < 0 || y >= height {
		return
	}
	i := y*stride + x
	if i >= len(work) {
		return
	}
	for c := 0; c < 3; c++ {
		work[i][c] += errc[c] * weight
	}
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v + 0.5)
}

func nearestPaletteEntry(palette [][3]int, c [3]int) (int, [3]int) {
	best := 0
	bestDist := -1
	for i, p := range palette {
		d := sq(c[0]-p[0]) + sq(c[1]-p[1]) + sq(c[2]-p[2])
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, palette[best]
}

func sq(v int) int { return v * v }
