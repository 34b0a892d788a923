// File: protocol/frame_codec.go
// Package protocol implements the in-place frame codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outgoing frames are encoded around a payload that already sits in the
// network buffer: the header goes into the gap before it and the payload is
// masked where it lies. Incoming frames are validated and unmasked in place.

package protocol

import (
	"encoding/binary"
	"math"

	"github.com/momentics/hioload-wsc/api"
)

// HeaderLen returns the size of the masked client header for a payload of n
// bytes.
func HeaderLen(n int) int {
	if n <= MaxShortPayloadLen {
		return ShortHeaderLen
	}
	return LongHeaderLen
}

// EncodeInPlace writes a masked frame header for the n-byte payload at
// buf[payloadOff:] into the bytes immediately preceding it and masks the
// payload with key. It returns the offset where the frame starts; the frame
// ends at payloadOff+n.
func EncodeInPlace(buf []byte, payloadOff, n int, opcode byte, key [MaskKeyLen]byte) (int, error) {
	if n < 0 || n > MaxOutgoingPayloadLen {
		return 0, api.ErrPayloadExceededMaxLength.WithContext("length", n)
	}
	hl := HeaderLen(n)
	if payloadOff < hl || payloadOff+n > len(buf) {
		return 0, api.ErrBufferTooShort.WithContext("capacity", len(buf))
	}

	start := payloadOff - hl
	hdr := buf[start:payloadOff]
	hdr[0] = FinBit | opcode&OpcodeMask
	if n <= MaxShortPayloadLen {
		hdr[1] = MaskBit | byte(n)
		copy(hdr[2:], key[:])
	} else {
		hdr[1] = MaskBit | PayloadLen16
		binary.BigEndian.PutUint16(hdr[2:], uint16(n))
		copy(hdr[4:], key[:])
	}

	MaskBytes(buf[payloadOff:payloadOff+n], key)
	return start, nil
}

// DecodeFrame parses the frame at the start of raw and unmasks its payload in
// place. capacity is the largest number of bytes a frame starting at raw[0]
// could ever occupy; frames that would fill it are rejected.
//
// Returns the frame and the bytes it spans. If raw holds only part of a
// frame, consumed is 0 and err is nil.
func DecodeFrame(raw []byte, capacity int) (f Frame, consumed int, err error) {
	if len(raw) < 1 {
		return Frame{}, 0, nil
	}
	if raw[0]&FinBit == 0 {
		return Frame{}, 0, api.ErrContinuationNotSupported
	}
	f.IsFinal = true
	f.Opcode = raw[0] & OpcodeMask
	switch f.Opcode {
	case OpcodeText, OpcodeBinary, OpcodePing:
	default:
		return Frame{}, 0, api.ErrUnsupportedOpcode.WithContext("opcode", f.Opcode)
	}

	if len(raw) < 2 {
		return Frame{}, 0, nil
	}
	f.Masked = raw[1]&MaskBit != 0
	length := uint64(raw[1] & PayloadLenMask)
	offset := 2

	switch length {
	case PayloadLen16:
		if len(raw) < offset+2 {
			return Frame{}, 0, nil
		}
		length = uint64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case PayloadLen64:
		if len(raw) < offset+8 {
			return Frame{}, 0, nil
		}
		length = binary.BigEndian.Uint64(raw[offset:])
		offset += 8
		if length > math.MaxInt {
			return Frame{}, 0, api.ErrPayloadExceededMaxLength.WithContext("length", length)
		}
	}

	if f.Masked {
		if len(raw) < offset+MaskKeyLen {
			return Frame{}, 0, nil
		}
		copy(f.MaskKey[:], raw[offset:])
		offset += MaskKeyLen
	}

	if capacity <= offset || length >= uint64(capacity-offset) {
		return Frame{}, 0, api.ErrBufferTooShort.WithContext("length", length).WithContext("capacity", capacity)
	}
	total := offset + int(length)
	if len(raw) < total {
		return Frame{}, 0, nil
	}

	f.PayloadOffset = offset
	f.PayloadLen = int(length)
	if f.Masked {
		MaskBytes(raw[offset:total], f.MaskKey)
	}
	return f, total, nil
}
