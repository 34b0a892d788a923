// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

const (
	// Opcodes
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA

	// Bit masks
	FinBit         = 0x80
	MaskBit        = 0x80
	OpcodeMask     = 0x0F
	PayloadLenMask = 0x7F

	// Length markers in the second header byte
	PayloadLen16 = 126
	PayloadLen64 = 127

	MaskKeyLen = 4

	// Outgoing frames carry at most a 16-bit extended length, so the header
	// is either 6 or 8 bytes.
	MaxShortPayloadLen    = 125
	MaxOutgoingPayloadLen = 0xFFFF
	ShortHeaderLen        = 2 + MaskKeyLen
	LongHeaderLen         = 4 + MaskKeyLen
	MaxHeaderLen          = LongHeaderLen

	// OutgoingPayloadOffset is where callers place outgoing payloads inside
	// the network buffer; the gap in front of it receives the frame header.
	OutgoingPayloadOffset = MaxHeaderLen
)
