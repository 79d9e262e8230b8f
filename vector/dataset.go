package vector

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/slices"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ValueKind discriminates a Value's shape, needed by transform_value
// (spec.md §4.7) to pick its integer/float/string rule.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindNull
)

// Value is one cell. Only one of Int/Float/Str is meaningful, per Kind.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindNull:
		return ""
	default:
		return v.Str
	}
}

func parseValue(raw string) Value {
	if raw == "" {
		return Value{Kind: KindNull}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: KindFloat, Float: f}
	}
	return Value{Kind: KindString, Str: raw}
}

// ReadOptions is the vector read-options surface spec.md §6 names.
type ReadOptions struct {
	Delimiter string // only the first character is used; defaults to ","
	Lat, Lon  string // column names synthesizing point geometry
	Geom      string // column name holding WKT geometry text
	CRS       string
	Encoding  string // IANA encoding name; empty means UTF-8
}

// Dataset is an in-memory tabular vector dataset: named columns of Values
// plus an optional parallel Geometry column (spec.md §3's VectorDataset).
type Dataset struct {
	Columns    []string
	Rows       [][]Value
	Geometries []Geometry // len(Geometries) == len(Rows) when HasGeometry
	HasGeometry bool

	sparsityOrder []int // column indices, sparsity-descending; computed lazily
}

// Len returns the row count.
func (d *Dataset) Len() int { return len(d.Rows) }

// ReadCSV parses path as delimited text under opts (spec.md §6's vector
// read-options: delimiter, lat/lon or geom column, crs, encoding).
func ReadCSV(path string, opts ReadOptions) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vector: open %s: %w", path, err)
	}
	return parseCSV(raw, opts)
}

func parseCSV(raw []byte, opts ReadOptions) (*Dataset, error) {
	if opts.Encoding != "" && !strings.EqualFold(opts.Encoding, "UTF-8") {
		enc, err := ianaindex.IANA.Encoding(opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("vector: unknown encoding %q: %w", opts.Encoding, err)
		}
		if enc != nil {
			decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
			if err != nil {
				return nil, fmt.Errorf("vector: decode %q: %w", opts.Encoding, err)
			}
			raw = decoded
		}
	}

	delimRune := ','
	if opts.Delimiter != "" {
		delimRune, _ = utf8.DecodeRuneInString(opts.Delimiter)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = delimRune
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vector: read header: %w", err)
	}

	d := &Dataset{Columns: header}
	geomCol, latCol, lonCol := -1, -1, -1
	for i, h := range header {
		switch {
		case opts.Geom != "" && h == opts.Geom:
			geomCol = i
		case opts.Lat != "" && h == opts.Lat:
			latCol = i
		case opts.Lon != "" && h == opts.Lon:
			lonCol = i
		}
	}
	d.HasGeometry = geomCol >= 0 || (latCol >= 0 && lonCol >= 0)

	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vector: read row: %w", err)
		}
		row := make([]Value, len(header))
		for i := range header {
			if i < len(fields) {
				row[i] = parseValue(fields[i])
			} else {
				row[i] = Value{Kind: KindNull}
			}
		}
		d.Rows = append(d.Rows, row)

		if d.HasGeometry {
			var g Geometry
			switch {
			case geomCol >= 0 && geomCol < len(fields):
				g, _ = ParseWKT(fields[geomCol])
			case latCol >= 0 && lonCol >= 0 && latCol < len(fields) && lonCol < len(fields):
				lat, _ := strconv.ParseFloat(fields[latCol], 64)
				lon, _ := strconv.ParseFloat(fields[lonCol], 64)
				g = Geometry{Vertices: []Point{{X: lon, Y: lat}}}
			}
			d.Geometries = append(d.Geometries, g)
		}
	}
	return d, nil
}

// WriteCSV serializes d back to delimited text.
func (d *Dataset) WriteCSV(w io.Writer, delim string) error {
	delimRune := ','
	if delim != "" {
		delimRune, _ = utf8.DecodeRuneInString(delim)
	}
	cw := csv.NewWriter(w)
	cw.Comma = delimRune
	if err := cw.Write(d.Columns); err != nil {
		return err
	}
	fields := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, v := range row {
			fields[i] = v.String()
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ColumnSparsity samples up to 10,000 rows and scores each column as
// distinct-count/non-null-count (spec.md §3). It recomputes on every call;
// SparsityOrder caches the ordering derived from it.
func (d *Dataset) ColumnSparsity() []float64 {
	sampleSize := len(d.Rows)
	if sampleSize > 10000 {
		sampleSize = 10000
	}
	scores := make([]float64, len(d.Columns))
	for c := range d.Columns {
		seen := make(map[string]struct{})
		nonNull := 0
		for r := 0; r < sampleSize; r++ {
			v := d.Rows[r][c]
			if v.Kind == KindNull {
				continue
			}
			nonNull++
			seen[v.String()] = struct{}{}
		}
		if nonNull == 0 {
			scores[c] = 0
			continue
		}
		scores[c] = float64(len(seen)) / float64(nonNull)
	}
	return scores
}

// SparsityOrder returns column indices ordered sparsity-descending (spec.md
// §4.8's row_exists column order), computed once and cached.
func (d *Dataset) SparsityOrder() []int {
	if d.sparsityOrder != nil {
		return d.sparsityOrder
	}
	scores := d.ColumnSparsity()
	order := make([]int, len(d.Columns))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if scores[a] > scores[b] {
			return -1
		}
		if scores[a] < scores[b] {
			return 1
		}
		return 0
	})
	d.sparsityOrder = order
	return order
}

// ColumnIndex returns the index of a named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone produces a deep copy safe to mutate independently of d.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns:     append([]string(nil), d.Columns...),
		HasGeometry: d.HasGeometry,
	}
	out.Rows = make([][]Value, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	if d.HasGeometry {
		out.Geometries = append([]Geometry(nil), d.Geometries...)
	}
	return out
}
