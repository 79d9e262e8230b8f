// Package ipr ties the individual watermarking components (marker, rng,
// arnold, wavelet, qr, geotiff, raster, vector) together behind a single
// named-operation registry, mirroring the way the teacher's codec package
// exposes a name/UID-keyed registry of otherwise independent codecs.
package ipr

import (
	"errors"
	"fmt"
)

// Error taxonomy (spec.md §7). Every operation returns one of these, wrapped
// with fmt.Errorf's %w where extra context helps, never an out-of-band
// signal (panic, sentinel return value, log-and-continue).
var (
	// ErrUninitialized is returned when a keyed operation runs before the
	// process secret has been loaded (rng.For wraps marker.ErrUninitialized
	// together with this error, so errors.Is matches either).
	ErrUninitialized = errors.New("ipr: uninitialized")

	// ErrUnsupportedMode indicates a raster is neither grayscale, RGB(A),
	// nor paletted.
	ErrUnsupportedMode = errors.New("ipr: unsupported raster mode")

	// ErrUnsupportedGeometry indicates a geometry transform was invoked on
	// an unsupported OGC geometry type.
	ErrUnsupportedGeometry = errors.New("ipr: unsupported geometry type")

	// ErrNotGeometric indicates geometry embedding was invoked on a
	// dataset with no geometry column.
	ErrNotGeometric = errors.New("ipr: dataset has no geometry")

	// ErrInvalidOption indicates a fit/position value outside its enum,
	// tile distances out of range, negative transparency, or an unknown
	// embed/detect variant name.
	ErrInvalidOption = errors.New("ipr: invalid option")

	// ErrDatasetMissing indicates an archive expanded but contained no
	// recognized raster or vector dataset.
	ErrDatasetMissing = errors.New("ipr: dataset missing")

	// ErrCanceled is returned when the cancellation flag was observed
	// mid-operation.
	ErrCanceled = errors.New("ipr: canceled")

	// ErrInternal wraps an I/O or decode failure surfaced from the
	// geospatial layer (geotiff, qr, vector readers).
	ErrInternal = errors.New("ipr: internal error")

	// ErrOperationNotFound is returned when an operation name is not
	// registered. spec.md §7 classifies an unknown embed/detect variant
	// under InvalidOption, so this wraps ErrInvalidOption: callers doing
	// errors.Is(err, ErrInvalidOption) per the documented taxonomy still
	// catch it, while errors.Is(err, ErrOperationNotFound) keeps working
	// for callers that want the precise reason.
	ErrOperationNotFound = fmt.Errorf("%w: operation not found", ErrInvalidOption)
)
