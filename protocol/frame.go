// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Decoded frame descriptor and masking.
//
// Frames are never copied out of the network buffer: a Frame only records
// where its payload lives.

package protocol

import "github.com/momentics/hioload-wsc/api"

// Frame describes one decoded frame inside a raw buffer.
type Frame struct {
	IsFinal       bool
	Opcode        byte
	Masked        bool
	MaskKey       [MaskKeyLen]byte
	PayloadOffset int // relative to the start of the frame
	PayloadLen    int
}

// MessageType maps the opcode to the message kind surfaced to callers.
func (f Frame) MessageType() api.MessageType {
	switch f.Opcode {
	case OpcodeText:
		return api.MessageText
	case OpcodeBinary:
		return api.MessageBinary
	case OpcodePing:
		return api.MessagePing
	default:
		return api.MessageNone
	}
}

// MaskBytes XORs b in place with key, byte i with key[i%4]. Applying it twice
// with the same key restores the input.
func MaskBytes(b []byte, key [MaskKeyLen]byte) {
	for i := range b {
		b[i] ^= key[i%MaskKeyLen]
	}
}
