// File: client/transport_client.go
// Package client: raw I/O on the network buffer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package client

import (
	"io"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-wsc/api"
)

// fill performs one read into dst. Zero bytes means the peer closed.
func fill(conn api.Conn, dst []byte) (int, error) {
	n, err := conn.Read(dst)
	if n > 0 {
		// Data first; a trailing error shows up again on the next read.
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, api.ErrRemoteSocketClosed
	}
	return 0, api.ErrReadingFromSocket.Wrap(errors.Wrap(err, "read"))
}

// writeFull writes b in a single call; anything short of len(b) fails.
func writeFull(conn api.Conn, b []byte) error {
	n, err := conn.Write(b)
	if err != nil {
		return api.ErrWritingToSocket.Wrap(errors.Wrap(err, "write"))
	}
	if n != len(b) {
		return api.ErrWritingToSocket.WithContext("written", n).WithContext("length", len(b))
	}
	return nil
}

func (h *Handle) resetPending() {
	h.pendStart, h.pendEnd = 0, 0
}

func (h *Handle) pendingLen() int { return h.pendEnd - h.pendStart }

// compactPending moves pending bytes to the start of the buffer so the next
// frame can use the whole capacity. It invalidates previously returned
// payloads.
func (h *Handle) compactPending() {
	n := h.pendingLen()
	if h.pendStart == 0 || n == 0 {
		if n == 0 {
			h.resetPending()
		}
		return
	}
	copy(h.buf, h.buf[h.pendStart:h.pendEnd])
	h.pendStart, h.pendEnd = 0, n
}

// stashPending moves pending bytes to the tail of the buffer, out of the way
// of the outgoing payload slot. Bytes before the old pendStart are left
// untouched.
func (h *Handle) stashPending() {
	n := h.pendingLen()
	if n == 0 {
		h.resetPending()
		return
	}
	if h.pendEnd == len(h.buf) {
		return
	}
	copy(h.buf[len(h.buf)-n:], h.buf[h.pendStart:h.pendEnd])
	h.pendStart, h.pendEnd = len(h.buf)-n, len(h.buf)
}

// outgoingLimit is the end of the region outgoing frames may use.
func (h *Handle) outgoingLimit() int {
	if h.pendingLen() == 0 {
		return len(h.buf)
	}
	return h.pendStart
}
