package raster

import (
	"context"
	"fmt"

	"github.com/opertusmundi/ipr-core/ipr"
)

// init registers this package's operations with the core registry,
// mirroring the teacher's RegisterCodec/init self-registration pattern.
func init() {
	ipr.Register("raster.embed_visible", opEmbedVisible)
	ipr.Register("raster.embed_invisible", opEmbedInvisible)
	ipr.Register("raster.detect_invisible", opDetectInvisible)
}

// EmbedVisibleArgs is the argument struct for the "raster.embed_visible"
// operation (spec.md §6).
type EmbedVisibleArgs struct {
	RasterPath    string
	WatermarkPath string
	OutPath       string
	EPSG          int
	Options       VisibleOptions
}

func opEmbedVisible(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(EmbedVisibleArgs)
	if !ok {
		return nil, fmt.Errorf("%w: raster.embed_visible expects EmbedVisibleArgs", ipr.ErrInvalidOption)
	}
	d, err := Open(a.RasterPath, a.EPSG)
	if err != nil {
		return nil, err
	}
	if err := EmbedVisible(d, a.WatermarkPath, a.OutPath, a.Options); err != nil {
		return nil, err
	}
	return a.OutPath, nil
}

// EmbedInvisibleArgs is the argument struct for "raster.embed_invisible".
type EmbedInvisibleArgs struct {
	RasterPath string
	OutPath    string
	Message    string
	EPSG       int
	Cancel     *ipr.CancelFlag
}

func opEmbedInvisible(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(EmbedInvisibleArgs)
	if !ok {
		return nil, fmt.Errorf("%w: raster.embed_invisible expects EmbedInvisibleArgs", ipr.ErrInvalidOption)
	}
	d, err := Open(a.RasterPath, a.EPSG)
	if err != nil {
		return nil, err
	}
	if err := EmbedInvisible(d, a.Message, a.OutPath, a.Cancel); err != nil {
		return nil, err
	}
	return a.OutPath, nil
}

// DetectInvisibleArgs is the argument struct for "raster.detect_invisible".
type DetectInvisibleArgs struct {
	OriginalPath string
	SuspectPath  string
	EPSG         int
	Cancel       *ipr.CancelFlag
}

func opDetectInvisible(ctx context.Context, args interface{}) (interface{}, error) {
	a, ok := args.(DetectInvisibleArgs)
	if !ok {
		return nil, fmt.Errorf("%w: raster.detect_invisible expects DetectInvisibleArgs", ipr.ErrInvalidOption)
	}
	original, err := Open(a.OriginalPath, a.EPSG)
	if err != nil {
		return nil, err
	}
	suspect, err := Open(a.SuspectPath, a.EPSG)
	if err != nil {
		return nil, err
	}
	msg, ok2, err := DetectInvisible(original, suspect, a.Cancel)
	if err != nil {
		return nil, err
	}
	if !ok2 {
		return nil, nil
	}
	return msg, nil
}
