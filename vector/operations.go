package vector

import (
	"context"
	"fmt"

	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/marker"
)

func init() {
	ipr.Register("vector.embed_fictitious", opEmbedFictitious)
	ipr.Register("vector.detect_fictitious", opDetectFictitious)
	ipr.Register("vector.embed_geometries", opEmbedGeometries)
	ipr.Register("vector.detect_geometries", opDetectGeometries)
}

// EmbedFictitiousArgs is the argument struct for "vector.embed_fictitious".
type EmbedFictitiousArgs struct {
	Dataset  *Dataset
	MarkerID marker.MarkerId
	Secret   marker.Secret
	Cancel   *ipr.CancelFlag
}

func opEmbedFictitious(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(EmbedFictitiousArgs)
	if !ok {
		return nil, fmt.Errorf("%w: vector.embed_fictitious expects EmbedFictitiousArgs", ipr.ErrInvalidOption)
	}
	return EmbedFictitious(a.Dataset, a.MarkerID, a.Secret, a.Cancel)
}

// DetectFictitiousArgs is the argument struct for "vector.detect_fictitious".
// MarkerIDs is tried in order; the first id whose synthetic rows are found
// in Suspect is returned.
type DetectFictitiousArgs struct {
	Original  *Dataset
	Suspect   *Dataset
	MarkerIDs []marker.MarkerId
	Secret    marker.Secret
	Cancel    *ipr.CancelFlag
}

func opDetectFictitious(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(DetectFictitiousArgs)
	if !ok {
		return nil, fmt.Errorf("%w: vector.detect_fictitious expects DetectFictitiousArgs", ipr.ErrInvalidOption)
	}
	for _, id := range a.MarkerIDs {
		found, err := DetectFictitious(a.Original, a.Suspect, id, a.Secret, a.Cancel)
		if err != nil {
			return nil, err
		}
		if found {
			return id, nil
		}
	}
	return nil, nil
}

// EmbedGeometriesArgs is the argument struct for "vector.embed_geometries".
type EmbedGeometriesArgs struct {
	Dataset  *Dataset
	MarkerID marker.MarkerId
	Secret   marker.Secret
	Cancel   *ipr.CancelFlag
}

func opEmbedGeometries(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(EmbedGeometriesArgs)
	if !ok {
		return nil, fmt.Errorf("%w: vector.embed_geometries expects EmbedGeometriesArgs", ipr.ErrInvalidOption)
	}
	return EmbedGeometries(a.Dataset, a.MarkerID, a.Secret, a.Cancel)
}

// DetectGeometriesArgs is the argument struct for "vector.detect_geometries".
type DetectGeometriesArgs struct {
	Original  *Dataset
	Suspect   *Dataset
	MarkerIDs []marker.MarkerId
	Secret    marker.Secret
	Cancel    *ipr.CancelFlag
}

func opDetectGeometries(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(DetectGeometriesArgs)
	if !ok {
		return nil, fmt.Errorf("%w: vector.detect_geometries expects DetectGeometriesArgs", ipr.ErrInvalidOption)
	}
	for _, id := range a.MarkerIDs {
		found, err := DetectGeometries(a.Original, a.Suspect, id, a.Secret, a.Cancel)
		if err != nil {
			return nil, err
		}
		if found {
			return id, nil
		}
	}
	return nil, nil
}
