// Package rng implements the keyed pseudo-random generator (spec.md §4.1,
// component C1) that every marker-dependent operation in this module draws
// from. An embed and its paired detect, invoked with the same marker id and
// secret, must issue draws in the same order and arity to reproduce the same
// sequence — see the draw-order contracts on vector.EmbedFictitious/
// DetectFictitious and vector.EmbedGeometries/DetectGeometries.
package rng

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/opertusmundi/ipr-core/internal/mt19937"
	"github.com/opertusmundi/ipr-core/ipr"
	"github.com/opertusmundi/ipr-core/marker"
)

// Rng is a reproducible draw source keyed to a single (MarkerId, Secret) pair.
type Rng struct {
	src *mt19937.Source
}

// For derives the keyed RNG for a marker id under the given secret (spec.md
// §4.1). It fails with marker.ErrUninitialized, wrapped together with
// ipr.ErrUninitialized, if secret has not been loaded.
func For(id marker.MarkerId, secret marker.Secret) (*Rng, error) {
	if secret.IsZero() {
		return nil, fmt.Errorf("%w: %w", ipr.ErrUninitialized, marker.ErrUninitialized)
	}
	h := sha512.New()
	h.Write([]byte(id.String()))
	h.Write(secret.Bytes())
	digest := h.Sum(nil) // 64 bytes = 512 bits

	words := make([]uint32, len(digest)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(digest[i*4 : i*4+4])
	}
	return &Rng{src: mt19937.NewFromSeedWords(words)}, nil
}

// FromSeed builds an unkeyed Rng directly from an integer seed, for the
// local, per-value draws transform_value (spec.md §4.7) needs — distinct
// from For's marker/secret-keyed derivation, since each transformed value
// gets its own short-lived RNG rather than sharing the marker's stream.
func FromSeed(seed int64) *Rng {
	words := []uint32{uint32(seed >> 32), uint32(seed)}
	return &Rng{src: mt19937.NewFromSeedWords(words)}
}

// Int draws one uniform integer in [lo, hi).
func (r *Rng) Int(lo, hi int64) int64 {
	return r.Ints(lo, hi, 1)[0]
}

// Ints draws count uniform integers in [lo, hi), in order.
func (r *Rng) Ints(lo, hi int64, count int) []int64 {
	out := make([]int64, count)
	span := uint64(hi - lo)
	for i := range out {
		out[i] = lo + int64(r.boundedUint64(span))
	}
	return out
}

// boundedUint64 draws a uniform value in [0, span) using rejection sampling:
// 64-bit draws above the largest multiple of span that fits in 2^64 are
// rejected, so the result is unbiased regardless of span.
func (r *Rng) boundedUint64(span uint64) uint64 {
	if span == 0 {
		return 0
	}
	limit := ^uint64(0) - (^uint64(0)%span + 1)%span
	for {
		v := r.src.Uint64()
		if v <= limit {
			return v % span
		}
	}
}

// Float draws one uniform float in [a, b].
func (r *Rng) Float(a, b float64) float64 {
	return a + r.src.Float64()*(b-a)
}

// Floats draws count uniform floats in [a, b], in order.
func (r *Rng) Floats(a, b float64, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = r.Float(a, b)
	}
	return out
}
