// Package vector implements the value/geometry transforms and the
// fictitious-row and geometry-perturbation watermarking operations over
// tabular vector datasets (spec.md §4.7-§4.9, components C7-C9).
package vector

import "fmt"

// GeometryType is an OGC simple-feature type id, restricted to the subset
// this module transforms (spec.md §4.7).
type GeometryType int

const (
	TypeLineString      GeometryType = 1
	TypePolygon         GeometryType = 3
	TypeMultiLineString GeometryType = 5
	TypeMultiPolygon    GeometryType = 6
)

// Point is a 2-D vertex.
type Point struct {
	X, Y float64
}

// Geometry is any of the OGC types this module understands. LineString and
// Polygon share a flat vertex list (a Polygon's list is its (closed) outer
// ring — interior rings are out of scope, matching what the fictitious and
// geometry-mark operations actually perturb); MultiLineString/MultiPolygon
// hold one Geometry per part.
type Geometry struct {
	Type     GeometryType
	Vertices []Point    // valid for LineString, Polygon
	Parts    []Geometry // valid for MultiLineString, MultiPolygon
}

func (g Geometry) String() string {
	switch g.Type {
	case TypeLineString:
		return fmt.Sprintf("LINESTRING(%s)", formatVertices(g.Vertices))
	case TypePolygon:
		return fmt.Sprintf("POLYGON((%s))", formatVertices(g.Vertices))
	case TypeMultiLineString:
		return fmt.Sprintf("MULTILINESTRING(%s)", formatParts(g.Parts))
	case TypeMultiPolygon:
		polys := ""
		for i, p := range g.Parts {
			if i > 0 {
				polys += ","
			}
			polys += fmt.Sprintf("((%s))", formatVertices(p.Vertices))
		}
		return fmt.Sprintf("MULTIPOLYGON(%s)", polys)
	default:
		return "GEOMETRY()"
	}
}

func formatVertices(vs []Point) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%g %g", v.X, v.Y)
	}
	return out
}

func formatParts(parts []Geometry) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("(%s)", formatVertices(p.Vertices))
	}
	return out
}

// Equal reports whether two geometries have the same type and coordinates,
// exactly (no tolerance) — the comparison detect_geometries needs against
// a suspect dataset's geometry column.
func (g Geometry) Equal(other Geometry) bool {
	if g.Type != other.Type {
		return false
	}
	if len(g.Vertices) != len(other.Vertices) {
		return false
	}
	for i := range g.Vertices {
		if g.Vertices[i] != other.Vertices[i] {
			return false
		}
	}
	if len(g.Parts) != len(other.Parts) {
		return false
	}
	for i := range g.Parts {
		if !g.Parts[i].Equal(other.Parts[i]) {
			return false
		}
	}
	return true
}

// IsSupportedTransformType reports whether t is one of the four geometry
// types transform_geometry and select_candidate_geometries operate on.
func IsSupportedTransformType(t GeometryType) bool {
	switch t {
	case TypeLineString, TypePolygon, TypeMultiLineString, TypeMultiPolygon:
		return true
	}
	return false
}
