package vector

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/marker"
	"github.com/opertusmundi/ipr-core/rng"
)

// chunkSize and minChunkSize are spec.md §4.8's N and n_min constants.
const (
	chunkSize    = 1000
	minChunkSize = chunkSize / 10
)

// syntheticRow is one fabricated row and its geometry, needed by both
// EmbedFictitious (to place it) and DetectFictitious (to search for it);
// the chunk bounds it was drawn from are returned separately by
// buildSyntheticRows.
type syntheticRow struct {
	row      []Value
	geometry Geometry
	hasGeom  bool
}

// buildSyntheticRows regenerates spec.md §4.8 step 2's synth_rows from the
// keyed RNG — shared by embed and detect so they agree on content.
func buildSyntheticRows(d *Dataset, rs *rng.Rng, cancel *ipr.CancelFlag) ([]syntheticRow, []int, error) {
	var synths []syntheticRow
	var chunkBounds []int // [lo0, hi0, lo1, hi1, ...]

	n := len(d.Rows)
	for lo := 0; lo < n; lo += chunkSize {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return nil, nil, err
		}
		hi := lo + chunkSize
		if hi > n {
			hi = n
		}
		if hi-lo < minChunkSize {
			continue
		}

		drawCount := len(d.Columns)
		if d.HasGeometry {
			drawCount++
		}
		randMap := rs.Ints(int64(lo), int64(hi), drawCount)

		row := make([]Value, len(d.Columns))
		for i := range d.Columns {
			srcRow := int(randMap[i])
			row[i] = TransformValue(d.Rows[srcRow][i], randMap[i])
		}

		s := syntheticRow{row: row}
		if d.HasGeometry {
			srcRow := int(randMap[len(randMap)-1])
			s.geometry = d.Geometries[srcRow]
			s.hasGeom = true
		}
		synths = append(synths, s)
		chunkBounds = append(chunkBounds, lo, hi)
	}
	return synths, chunkBounds, nil
}

// EmbedFictitious interleaves fabricated rows into df, keyed to marker_id
// (spec.md §4.8). The synthetic row *content* is drawn from the keyed RNG
// so detect can regenerate it, but the insertion *position* is drawn from
// an independent, unkeyed entropy source (spec.md §4.8 step 3, §9): folding
// it into the keyed stream would make watermark locations guessable from
// marker_id and secret alone, which the original implementation avoids by
// drawing positions with a plain, unseeded random source rather than its
// instance RNG.
func EmbedFictitious(df *Dataset, markerID marker.MarkerId, secret marker.Secret, cancel *ipr.CancelFlag) (*Dataset, error) {
	rs, err := rng.For(markerID, secret)
	if err != nil {
		return nil, err
	}

	synths, chunkBounds, err := buildSyntheticRows(df, rs, cancel)
	if err != nil {
		return nil, err
	}

	out := &Dataset{Columns: append([]string(nil), df.Columns...), HasGeometry: df.HasGeometry}
	cursor := 0
	for i, s := range synths {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return nil, err
		}
		lo, hi := chunkBounds[2*i], chunkBounds[2*i+1]
		insertAt, err := randomInsertionIndex(lo, hi)
		if err != nil {
			return nil, err
		}

		appendRows(out, df, cursor, insertAt)
		cursor = insertAt

		out.Rows = append(out.Rows, s.row)
		if out.HasGeometry {
			if s.hasGeom {
				out.Geometries = append(out.Geometries, s.geometry)
			} else {
				out.Geometries = append(out.Geometries, Geometry{})
			}
		}
	}
	appendRows(out, df, cursor, len(df.Rows))

	return out, nil
}

// randomInsertionIndex draws a uniform index in [lo, hi) from crypto/rand,
// deliberately independent of the keyed rng.Rng stream (see EmbedFictitious).
func randomInsertionIndex(lo, hi int) (int, error) {
	span := int64(hi - lo)
	if span <= 0 {
		return lo, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, fmt.Errorf("%w: insertion index draw: %v", ipr.ErrInternal, err)
	}
	return lo + int(n.Int64()), nil
}

func appendRows(out, df *Dataset, from, to int) {
	for r := from; r < to; r++ {
		out.Rows = append(out.Rows, append([]Value(nil), df.Rows[r]...))
		if out.HasGeometry {
			out.Geometries = append(out.Geometries, df.Geometries[r])
		}
	}
}

// DetectFictitious regenerates synth_rows from original (the dataset
// embed_fictitious was originally called with) under markerID, and reports
// whether any of them is present in suspect (spec.md §4.8). Checking
// multiple candidate marker ids is the caller's responsibility (spec.md
// §6's vector.detect_fictitious returns the first matching id).
func DetectFictitious(original, suspect *Dataset, markerID marker.MarkerId, secret marker.Secret, cancel *ipr.CancelFlag) (bool, error) {
	rs, err := rng.For(markerID, secret)
	if err != nil {
		return false, err
	}
	synths, _, err := buildSyntheticRows(original, rs, cancel)
	if err != nil {
		return false, err
	}
	for _, s := range synths {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return false, err
		}
		if rowExists(suspect, original.Columns, s.row) {
			return true, nil
		}
	}
	return false, nil
}

// rowExists implements spec.md §4.8: orders columns sparsity-descending,
// incrementally filters the candidate row set, and returns true iff
// exactly one row survives.
func rowExists(df *Dataset, cols []string, row []Value) bool {
	order := df.SparsityOrder()
	candidates := make([]int, len(df.Rows))
	for i := range candidates {
		candidates[i] = i
	}

	for _, colIdx := range order {
		colName := df.Columns[colIdx]
		rowColIdx := indexOf(cols, colName)
		if rowColIdx < 0 {
			continue
		}
		want := row[rowColIdx]

		var next []int
		for _, r := range candidates {
			if df.Rows[r][colIdx] == want {
				next = append(next, r)
			}
		}
		candidates = next
		if len(candidates) == 0 {
			return false
		}
	}
	return len(candidates) == 1
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
