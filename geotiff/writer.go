package geotiff

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// tagWriter accumulates IFD entries plus an "extra" data area for values
// that don't fit inline in a 4-byte IFD slot, then emits both in one pass
// so offsets can be resolved after every tag is known.
type tagWriter struct {
	order       binary.ByteOrder
	extraBase   uint32
	extra       bytes.Buffer
	entries     map[int]rawEntry
}

type rawEntry struct {
	typ   int
	count uint32
	// inline holds the 4-byte inline value when the data fits; otherwise
	// offset points into extra.
	inline [4]byte
	isInline bool
	offset   uint32
}

func newTagWriter(extraBase uint32, order binary.ByteOrder) *tagWriter {
	return &tagWriter{order: order, extraBase: extraBase, entries: make(map[int]rawEntry)}
}

func (w *tagWriter) addShort(tag int, v uint32) {
	var inline [4]byte
	w.order.PutUint16(inline[:2], uint16(v))
	w.entries[tag] = rawEntry{typ: typeShort, count: 1, inline: inline, isInline: true}
}

func (w *tagWriter) addLong(tag int, v uint32) {
	var inline [4]byte
	w.order.PutUint32(inline[:], v)
	w.entries[tag] = rawEntry{typ: typeLong, count: 1, inline: inline, isInline: true}
}

func (w *tagWriter) addShortArray(tag int, vs []uint16) {
	if len(vs)*2 <= 4 {
		var inline [4]byte
		for i, v := range vs {
			w.order.PutUint16(inline[i*2:], v)
		}
		w.entries[tag] = rawEntry{typ: typeShort, count: uint32(len(vs)), inline: inline, isInline: true}
		return
	}
	off := w.extraBase + uint32(w.extra.Len())
	for _, v := range vs {
		var b [2]byte
		w.order.PutUint16(b[:], v)
		w.extra.Write(b[:])
	}
	w.entries[tag] = rawEntry{typ: typeShort, count: uint32(len(vs)), offset: off}
}

func (w *tagWriter) addDoubleArray(tag int, vs []float64) {
	off := w.extraBase + uint32(w.extra.Len())
	for _, v := range vs {
		var b [8]byte
		w.order.PutUint64(b[:], math.Float64bits(v))
		w.extra.Write(b[:])
	}
	w.entries[tag] = rawEntry{typ: typeDouble, count: uint32(len(vs)), offset: off}
}

func (w *tagWriter) addASCII(tag int, s string) {
	data := append([]byte(s), 0)
	off := w.extraBase + uint32(w.extra.Len())
	w.extra.Write(data)
	w.entries[tag] = rawEntry{typ: typeASCII, count: uint32(len(data)), offset: off}
}

// finish emits the IFD entry count + sorted entries (tags must ascend per
// TIFF 6.0 §2) and returns (ifdBytes, extraBytes). ifdBytes offsets into
// extraBytes assume extraBytes is written immediately before the IFD, at
// extraBase.
func (w *tagWriter) finish() (ifdBytes []byte, extraBytes []byte) {
	tags := make([]int, 0, len(w.entries))
	for t := range w.entries {
		tags = append(tags, t)
	}
	sort.Ints(tags)

	var ifd bytes.Buffer
	binary.Write(&ifd, w.order, uint16(len(tags)))
	for _, tag := range tags {
		e := w.entries[tag]
		binary.Write(&ifd, w.order, uint16(tag))
		binary.Write(&ifd, w.order, uint16(e.typ))
		binary.Write(&ifd, w.order, e.count)
		if e.isInline {
			ifd.Write(e.inline[:])
		} else {
			var b [4]byte
			w.order.PutUint32(b[:], e.offset)
			ifd.Write(b[:])
		}
	}
	return ifd.Bytes(), w.extra.Bytes()
}
