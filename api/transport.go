// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport contract consumed by the handshake engine and the frame codec.
// TLS, proxies or in-memory pipes plug in by implementing Dialer.

package api

import (
	"context"
	"time"
)

// Conn abstracts a connected, reliable, ordered byte stream.
type Conn interface {
	// Read reads into a preallocated buffer. A closed peer is reported as
	// (0, io.EOF).
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection.
	Write(p []byte) (n int, err error)

	// WaitReadable blocks until data can be read or timeout elapses.
	// A negative timeout waits forever.
	WaitReadable(timeout time.Duration) (ready bool, err error)

	// Close shuts down the connection.
	Close() error
}

// Dialer opens connections to host:port.
type Dialer interface {
	// Dial returns errors carrying ErrCodeCreatingSocket,
	// ErrCodeResolvingHostname or ErrCodeConnectFailed.
	Dial(ctx context.Context, host string, port uint16) (Conn, error)
}
