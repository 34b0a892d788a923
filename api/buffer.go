// Package api
// Author: momentics
//
// Zero-copy view over the caller-owned network buffer.
//
// The handshake, every outgoing frame and every decoded payload live inside
// one buffer supplied by the caller. A View never allocates and never
// outlives the buffer it was cut from.

package api

// View is an (offset, length) window on a borrowed byte buffer.
type View struct {
	base []byte
	off  int
	n    int
}

// NewView returns a view covering all of buf.
func NewView(buf []byte) View {
	return View{base: buf, n: len(buf)}
}

// Bytes returns the bytes inside the window. The slice aliases the buffer.
func (v View) Bytes() []byte {
	return v.base[v.off : v.off+v.n : v.off+v.n]
}

// Len returns the window length.
func (v View) Len() int { return v.n }

// Offset returns the window start relative to the backing buffer.
func (v View) Offset() int { return v.off }

// Slice produces a sub-view in O(1). from and to are relative to v; the
// result must lie within v or ok is false.
func (v View) Slice(from, to int) (sub View, ok bool) {
	if from < 0 || to > v.n || from > to {
		return View{}, false
	}
	return View{base: v.base, off: v.off + from, n: to - from}, true
}

// SameBuffer reports whether v and other were cut from the same backing
// buffer.
func (v View) SameBuffer(other View) bool {
	if len(v.base) == 0 || len(other.base) == 0 {
		return false
	}
	return &v.base[0] == &other.base[0] && len(v.base) == len(other.base)
}
