// File: api/websocket.go
// Author: momentics <momentics@gmail.com>
//
// Message kinds surfaced by the receive path.

package api

// MessageType classifies a received frame. Values are stable and part of the
// public contract.
type MessageType byte

const (
	MessageNone   MessageType = 0
	MessageText   MessageType = 1
	MessageBinary MessageType = 2
	MessagePing   MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case MessageNone:
		return "none"
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	case MessagePing:
		return "ping"
	default:
		return "unknown"
	}
}

// Message is one decoded frame. Payload aliases the connection buffer and is
// valid until the next call on the same handle.
type Message struct {
	Type    MessageType
	Payload View
}
