package vector

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/rng"
)

// TransformValue applies spec.md §4.7's shape-preserving deterministic
// mutation to v, using a local RNG seeded by seed (not the marker-keyed
// stream — each cell gets its own short-lived generator).
func TransformValue(v Value, seed int64) Value {
	switch v.Kind {
	case KindInt:
		return Value{Kind: KindInt, Int: transformInt(v.Int, seed)}
	case KindFloat:
		return Value{Kind: KindFloat, Float: transformFloat(v.Float, seed)}
	case KindString:
		return Value{Kind: KindString, Str: transformString(v.Str, seed)}
	default:
		return v
	}
}

// digitCount is the number of decimal digits in |v| (at least 1).
func digitCount(v int64) int {
	if v < 0 {
		v = -v
	}
	if v == 0 {
		return 1
	}
	n := 0
	for v > 0 {
		n++
		v /= 10
	}
	return n
}

func transformInt(v, seed int64) int64 {
	d := digitCount(v)
	lo := int64(1)
	for i := 1; i < d; i++ {
		lo *= 10
	}
	hi := lo * 10
	r := rng.FromSeed(seed)
	result := r.Int(lo, hi)
	if v < 0 {
		result = -result
	}
	return result
}

// transformFloat applies the integer rule to the digit string with the
// decimal point removed, then re-inserts the decimal at its original
// position (spec.md §4.7).
func transformFloat(v float64, seed int64) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	dot := strings.IndexByte(s, '.')
	digits := strings.Replace(s, ".", "", 1)

	asInt, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// digit string too long for int64 (pathological input); fall back
		// to the value unmutated rather than overflow.
		return v
	}
	transformed := transformInt(asInt, seed)
	out := strconv.FormatInt(transformed, 10)
	if neg {
		out = strings.TrimPrefix(out, "-")
	}
	// pad to original digit-string length so the decimal re-insertion
	// point lines up the same way it did in the input.
	for len(out) < len(digits) {
		out = "0" + out
	}

	if dot < 0 {
		result, _ := strconv.ParseFloat(out, 64)
		if neg {
			result = -result
		}
		return result
	}
	reinserted := out[:dot] + "." + out[dot:]
	result, _ := strconv.ParseFloat(reinserted, 64)
	if neg {
		result = -result
	}
	return result
}

var numberPattern = regexp.MustCompile(`[1-9][0-9]*`)

// transformString replaces every match of [1-9][0-9]* with its integer
// transform, seeded by seed+i where i is the match's ordinal index
// (spec.md §4.7).
func transformString(s string, seed int64) string {
	matchIdx := 0
	return numberPattern.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseInt(m, 10, 64)
		i := matchIdx
		matchIdx++
		if err != nil {
			return m
		}
		return strconv.FormatInt(transformInt(n, seed+int64(i)), 10)
	})
}

// decimalExponent returns the (possibly negative) base-10 exponent of x's
// last significant digit: 2 decimal places -> -2, a value rounded to tens
// -> 1. Used by RoundToSample's precision derivation.
func decimalExponent(x float64) int {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	s = strings.TrimPrefix(s, "-")
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		// count trailing zeros as positive exponent magnitude
		trimmed := strings.TrimRight(s, "0")
		if trimmed == "" {
			return 0
		}
		return len(s) - len(trimmed)
	}
	frac := s[dot+1:]
	return -len(frac)
}

// RoundToSample computes precision = max(|exponent|) over sample's decimal
// representations, then rounds v to that many decimal places (spec.md
// §4.7's round_to_sample).
func RoundToSample(v float64, sample []float64) float64 {
	precision := 0
	for _, x := range sample {
		e := decimalExponent(x)
		if e < 0 {
			e = -e
		}
		if e > precision {
			precision = e
		}
	}
	return roundTo(v, precision)
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// TransformGeometry applies spec.md §4.7's shape-preserving vertex
// insertion. For MultiLineString/MultiPolygon it recurses into one
// uniformly-chosen part.
func TransformGeometry(g Geometry, r *rng.Rng) (Geometry, error) {
	switch g.Type {
	case TypeLineString, TypePolygon:
		return transformSimple(g, r)
	case TypeMultiLineString, TypeMultiPolygon:
		if len(g.Parts) == 0 {
			return g, nil
		}
		pick := int(r.Int(0, int64(len(g.Parts))))
		transformedPart, err := TransformGeometry(g.Parts[pick], r)
		if err != nil {
			return Geometry{}, err
		}
		out := Geometry{Type: g.Type, Parts: append([]Geometry(nil), g.Parts...)}
		out.Parts[pick] = transformedPart
		return out, nil
	default:
		return Geometry{}, ipr.ErrUnsupportedGeometry
	}
}

func transformSimple(g Geometry, r *rng.Rng) (Geometry, error) {
	v := g.Vertices
	if len(v) < 2 {
		return g, nil
	}
	size := minInt(5, ceilDiv(len(v), 6))
	idxs := distinctAscendingIndices(r, size, 1, len(v))

	out := append([]Point(nil), v...)
	shift := 0
	for _, idx := range idxs {
		pos := idx + shift
		a := out[pos-1]
		b := out[pos]
		p := collinearPoint(a, b, r)
		out = append(out[:pos], append([]Point{p}, out[pos:]...)...)
		shift++
	}

	return Geometry{Type: g.Type, Vertices: out}, nil
}

func collinearPoint(a, b Point, r *rng.Rng) Point {
	var p Point
	if a.X == b.X {
		p.X = a.X
		p.Y = r.Float(minF(a.Y, b.Y), maxF(a.Y, b.Y))
	} else {
		p.X = r.Float(minF(a.X, b.X), maxF(a.X, b.X))
		p.Y = a.Y + (b.Y-a.Y)*(p.X-a.X)/(b.X-a.X)
	}
	precisionX := maxInt(absExp(decimalExponent(a.X)), absExp(decimalExponent(b.X)))
	precisionY := maxInt(absExp(decimalExponent(a.Y)), absExp(decimalExponent(b.Y)))
	p.X = roundTo(p.X, precisionX)
	p.Y = roundTo(p.Y, precisionY)
	return p
}

func absExp(e int) int {
	if e < 0 {
		return -e
	}
	return e
}

// distinctAscendingIndices draws size unique ascending integers in
// [lo, hi) using r, via rejection (sizes here are always small: at most 5,
// and transformSimple's size formula never asks for more than the range
// holds; the loop also stops once every value in the range is taken).
func distinctAscendingIndices(r *rng.Rng, size, lo, hi int) []int {
	if size <= 0 || lo >= hi {
		return nil
	}
	seen := make(map[int]struct{}, size)
	for len(seen) < size && len(seen) < hi-lo {
		v := int(r.Int(int64(lo), int64(hi)))
		seen[v] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sortInts(out)
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

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

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
