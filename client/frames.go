// File: client/frames.go
// Package client: frame send and receive on an established handle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outgoing payloads are written by the caller into OutgoingPayload and
// framed in place. Received payloads are returned as views into the buffer
// and stay valid until the next call on the handle.

package client

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/protocol"
)

// OutgoingPayload returns the slot the next outgoing payload must be written
// to. Call it again after every Receive; the slot may shrink while unread
// frames are buffered.
func (h *Handle) OutgoingPayload() []byte {
	h.stashPending()
	return h.buf[protocol.OutgoingPayloadOffset:h.outgoingLimit()]
}

// SendText sends the first n bytes of OutgoingPayload as a text frame.
func (h *Handle) SendText(n int) error {
	if h.conn == nil {
		return api.ErrWritingToSocket.WithContext("reason", "closed")
	}
	h.stashPending()
	return h.send(protocol.OpcodeText, protocol.OutgoingPayloadOffset, n)
}

// SendPong answers a ping with its payload. payload must be a view into this
// handle's buffer, normally the Payload of the received ping message.
func (h *Handle) SendPong(payload api.View) error {
	if !payload.SameBuffer(h.view) {
		return api.ErrInvalidPongPayload
	}
	if h.conn == nil {
		return api.ErrWritingToSocket.WithContext("reason", "closed")
	}
	h.stashPending()

	off, n := payload.Offset(), payload.Len()
	limit := h.outgoingLimit()
	if off+n > limit {
		return api.ErrInvalidPongPayload.WithContext("reason", "overlaps unread data")
	}
	// No room for the header in front of the payload: move it to the
	// outgoing slot first.
	if off < protocol.HeaderLen(n) {
		dst := protocol.OutgoingPayloadOffset
		if dst+n > limit {
			return api.ErrBufferTooShort.WithContext("capacity", limit)
		}
		copy(h.buf[dst:dst+n], h.buf[off:off+n])
		off = dst
	}
	return h.send(protocol.OpcodePong, off, n)
}

func (h *Handle) send(opcode byte, payloadOff, n int) error {
	var key [protocol.MaskKeyLen]byte
	if _, err := io.ReadFull(h.rand, key[:]); err != nil {
		return errors.Wrap(err, "mask key")
	}
	start, err := protocol.EncodeInPlace(h.buf[:h.outgoingLimit()], payloadOff, n, opcode, key)
	if err != nil {
		return err
	}
	return writeFull(h.conn, h.buf[start:payloadOff+n])
}

// Receive returns the next text, binary or ping message. It waits at most
// timeout for data to arrive (negative waits forever); if none does, it
// returns a message of type api.MessageNone and a nil error.
func (h *Handle) Receive(timeout time.Duration) (api.Message, error) {
	if h.conn == nil {
		return api.Message{}, api.ErrRemoteSocketClosed.WithContext("reason", "closed")
	}
	h.compactPending()
	for {
		msg, ok, err := h.decodePending()
		if err != nil || ok {
			return msg, err
		}

		ready, err := h.conn.WaitReadable(timeout)
		if err != nil {
			return api.Message{}, api.ErrReadingFromSocket.Wrap(err)
		}
		if !ready {
			return api.Message{Type: api.MessageNone}, nil
		}

		n, err := fill(h.conn, h.buf[h.pendEnd:])
		if err != nil {
			return api.Message{}, err
		}
		h.pendEnd += n
		// A full buffer may hide a truncated frame.
		if h.pendEnd == len(h.buf) {
			h.resetPending()
			return api.Message{}, api.ErrBufferTooShort.WithContext("capacity", len(h.buf))
		}
	}
}

// decodePending decodes one frame from the pending bytes, if complete.
func (h *Handle) decodePending() (api.Message, bool, error) {
	raw := h.buf[h.pendStart:h.pendEnd]
	f, consumed, err := protocol.DecodeFrame(raw, len(h.buf)-h.pendStart)
	if err != nil {
		// The stream cannot be resynchronized past a rejected frame.
		h.resetPending()
		return api.Message{}, false, err
	}
	if consumed == 0 {
		return api.Message{}, false, nil
	}

	from := h.pendStart + f.PayloadOffset
	payload, _ := h.view.Slice(from, from+f.PayloadLen)
	h.pendStart += consumed
	if h.pendStart == h.pendEnd {
		h.resetPending()
	}
	return api.Message{Type: f.MessageType(), Payload: payload}, true, nil
}
