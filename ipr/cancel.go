package ipr

import "sync/atomic"

// CancelFlag is the best-effort cooperative cancellation signal described in
// spec.md §5: polled between bands (raster invisible), between chunks
// (vector fictitious), and between candidate geometries (vector geometry).
// Safe for concurrent use; a single flag may be shared across goroutines
// that all need to observe the same cancellation request.
type CancelFlag struct {
	flag atomic.Bool
}

// Cancel requests cancellation. Idempotent.
func (c *CancelFlag) Cancel() {
	if c != nil {
		c.flag.Store(true)
	}
}

// Canceled reports whether Cancel has been called. A nil *CancelFlag is
// treated as never canceled, so operations can accept a nil flag from
// callers that don't need cancellation.
func (c *CancelFlag) Canceled() bool {
	return c != nil && c.flag.Load()
}

// CheckCanceled returns ErrCanceled if c has been canceled, nil otherwise.
// Operations call this at the poll points named in spec.md §5.
func CheckCanceled(c *CancelFlag) error {
	if c.Canceled() {
		return ErrCanceled
	}
	return nil
}
