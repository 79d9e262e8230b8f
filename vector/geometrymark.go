package vector

import (
	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/marker"
	"github.com/opertusmundi/ipr-core/rng"
)

// selectCandidateGeometries implements spec.md §4.9's select_candidate_
// geometries: oversample candidate indices by 10x the expected unique
// count, dedup, sort ascending.
func selectCandidateGeometries(d *Dataset, r *rng.Rng) (idxs []int, geoms []Geometry) {
	var cand []int
	for i, g := range d.Geometries {
		if IsSupportedTransformType(g.Type) {
			cand = append(cand, i)
		}
	}
	if len(cand) == 0 {
		return nil, nil
	}

	count := ceilDiv(len(cand), chunkSize) * 10
	draws := r.Ints(0, int64(len(cand)), count)

	seen := make(map[int]struct{}, count)
	for _, dr := range draws {
		seen[cand[dr]] = struct{}{}
	}
	idxs = make([]int, 0, len(seen))
	for i := range seen {
		idxs = append(idxs, i)
	}
	sortInts(idxs)

	geoms = make([]Geometry, len(idxs))
	for i, idx := range idxs {
		geoms[i] = d.Geometries[idx]
	}
	return idxs, geoms
}

// EmbedGeometries perturbs a candidate subset of df's geometries, keyed to
// marker_id (spec.md §4.9). Fails with ipr.ErrNotGeometric if df carries no
// geometry column.
func EmbedGeometries(df *Dataset, markerID marker.MarkerId, secret marker.Secret, cancel *ipr.CancelFlag) (*Dataset, error) {
	if !df.HasGeometry {
		return nil, ipr.ErrNotGeometric
	}
	rs, err := rng.For(markerID, secret)
	if err != nil {
		return nil, err
	}
	idxs, geoms := selectCandidateGeometries(df, rs)

	out := df.Clone()
	for i, idx := range idxs {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return nil, err
		}
		transformed, err := TransformGeometry(geoms[i], rs)
		if err != nil {
			return nil, err
		}
		out.Geometries[idx] = transformed
	}
	return out, nil
}

// DetectGeometries recomputes marker_id's candidate geometries and their
// transforms, then reports whether suspect contains any of the resulting
// candidates exactly (spec.md §4.9). Candidate selection and
// transform_geometry must consume rs draws in the same order as
// EmbedGeometries for the two to agree.
func DetectGeometries(original, suspect *Dataset, markerID marker.MarkerId, secret marker.Secret, cancel *ipr.CancelFlag) (bool, error) {
	if !original.HasGeometry {
		return false, ipr.ErrNotGeometric
	}
	rs, err := rng.For(markerID, secret)
	if err != nil {
		return false, err
	}
	_, geoms := selectCandidateGeometries(original, rs)

	for _, g := range geoms {
		if err := ipr.CheckCanceled(cancel); err != nil {
			return false, err
		}
		candidate, err := TransformGeometry(g, rs)
		if err != nil {
			return false, err
		}
		for _, sg := range suspect.Geometries {
			if sg.Equal(candidate) {
				return true, nil
			}
		}
	}
	return false, nil
}
