package vector

import "testing"

func TestParseWKTLineString(t *testing.T) {
	g, err := ParseWKT("LINESTRING(0 0, 1 1, 2 2)")
	if err != nil {
		t.Fatalf("ParseWKT: %v", err)
	}
	if g.Type != TypeLineString {
		t.Fatalf("got type %v, want LineString", g.Type)
	}
	if len(g.Vertices) != 3 {
		t.Fatalf("got %d vertices, want 3", len(g.Vertices))
	}
	if g.Vertices[1] != (Point{X: 1, Y: 1}) {
		t.Fatalf("got %v, want (1,1)", g.Vertices[1])
	}
}

func TestParseWKTPolygon(t *testing.T) {
	g, err := ParseWKT("POLYGON((0 0, 4 0, 4 4, 0 4, 0 0))")
	if err != nil {
		t.Fatalf("ParseWKT: %v", err)
	}
	if g.Type != TypePolygon {
		t.Fatalf("got type %v, want Polygon", g.Type)
	}
	if len(g.Vertices) != 5 {
		t.Fatalf("got %d vertices, want 5", len(g.Vertices))
	}
}

func TestParseWKTMultiPolygon(t *testing.T) {
	g, err := ParseWKT("MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)),((2 2, 3 2, 3 3, 2 2)))")
	if err != nil {
		t.Fatalf("ParseWKT: %v", err)
	}
	if g.Type != TypeMultiPolygon {
		t.Fatalf("got type %v, want MultiPolygon", g.Type)
	}
	if len(g.Parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(g.Parts))
	}
}

func TestGeometryEqual(t *testing.T) {
	a, _ := ParseWKT("LINESTRING(0 0, 1 1)")
	b, _ := ParseWKT("LINESTRING(0 0, 1 1)")
	c, _ := ParseWKT("LINESTRING(0 0, 1 2)")
	if !a.Equal(b) {
		t.Fatal("expected equal geometries to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differing geometries to compare unequal")
	}
}

func TestIsSupportedTransformType(t *testing.T) {
	for _, tt := range []struct {
		typ  GeometryType
		want bool
	}{
		{TypeLineString, true},
		{TypePolygon, true},
		{TypeMultiLineString, true},
		{TypeMultiPolygon, true},
		{0, false},
		{2, false},
	} {
		if got := IsSupportedTransformType(tt.typ); got != tt.want {
			t.Errorf("IsSupportedTransformType(%d) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestRoundTripWKTStringAndParse(t *testing.T) {
	g, err := ParseWKT("LINESTRING(0 0, 1 1, 2 2)")
	if err != nil {
		t.Fatalf("ParseWKT: %v", err)
	}
	reparsed, err := ParseWKT(WriteWKT(g))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !g.Equal(reparsed) {
		t.Fatalf("round trip mismatch: %v != %v", g, reparsed)
	}
}
