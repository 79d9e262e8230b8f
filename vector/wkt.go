package vector

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseWKT parses a subset of Well-Known Text: POINT, LINESTRING, POLYGON,
// MULTILINESTRING, MULTIPOLYGON. Unrecognized or malformed text yields a
// zero-value Geometry and an error; callers that only care about the
// subset transform_geometry supports (spec.md §4.7) can check
// IsSupportedTransformType on the result.
func ParseWKT(s string) (Geometry, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "POINT"):
		pts, err := parseVertexList(inner(s))
		if err != nil || len(pts) != 1 {
			return Geometry{}, fmt.Errorf("vector: bad POINT WKT %q", s)
		}
		return Geometry{Type: 0, Vertices: pts}, nil
	case strings.HasPrefix(upper, "MULTIPOLYGON"):
		parts, err := parseMultiPolygonParts(inner(s))
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: TypeMultiPolygon, Parts: parts}, nil
	case strings.HasPrefix(upper, "MULTILINESTRING"):
		parts, err := parseMultiLineParts(inner(s))
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: TypeMultiLineString, Parts: parts}, nil
	case strings.HasPrefix(upper, "POLYGON"):
		ring, err := parseSingleRing(inner(s))
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: TypePolygon, Vertices: ring}, nil
	case strings.HasPrefix(upper, "LINESTRING"):
		pts, err := parseVertexList(inner(s))
		if err != nil {
			return Geometry{}, err
		}
		return Geometry{Type: TypeLineString, Vertices: pts}, nil
	default:
		return Geometry{}, fmt.Errorf("vector: unrecognized WKT %q", s)
	}
}

// inner strips the leading WKT tag and the outermost parenthesis pair.
func inner(s string) string {
	i := strings.IndexByte(s, '(')
	j := strings.LastIndexByte(s, ')')
	if i < 0 || j < 0 || j < i {
		return ""
	}
	return s[i+1 : j]
}

func parseVertexList(s string) ([]Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Point, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(strings.TrimSpace(p))
		if len(fields) < 2 {
			return nil, fmt.Errorf("vector: bad coordinate pair %q", p)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{X: x, Y: y})
	}
	return out, nil
}

// parseSingleRing parses a POLYGON's "(ring)" or "(ring),(hole)..." body,
// keeping only the outer ring (interior rings are out of scope — see
// Geometry's doc comment).
func parseSingleRing(s string) ([]Point, error) {
	ring := firstParenGroup(s)
	return parseVertexList(ring)
}

func firstParenGroup(s string) string {
	i := strings.IndexByte(s, '(')
	if i < 0 {
		return s
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[i+1 : j]
			}
		}
	}
	return s[i+1:]
}

func splitTopLevelGroups(s string) []string {
	var groups []string
	depth := 0
	start := -1
	for i, c := range s {
		switch c {
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, s[start:i])
				start = -1
			}
		}
	}
	return groups
}

func parseMultiLineParts(s string) ([]Geometry, error) {
	var parts []Geometry
	for _, g := range splitTopLevelGroups(s) {
		pts, err := parseVertexList(g)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Geometry{Type: TypeLineString, Vertices: pts})
	}
	return parts, nil
}

func parseMultiPolygonParts(s string) ([]Geometry, error) {
	var parts []Geometry
	for _, polyBody := range splitTopLevelGroups(s) {
		ring, err := parseSingleRing(polyBody)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Geometry{Type: TypePolygon, Vertices: ring})
	}
	return parts, nil
}

// WriteWKT renders g back to WKT text.
func WriteWKT(g Geometry) string {
	return g.String()
}
