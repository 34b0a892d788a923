// File: transport/netconn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

// NetConn adapts a net.Conn to api.Conn, adding the readiness wait the
// receive path needs.
type NetConn struct {
	conn net.Conn

	// Filled by waitByPeek on platforms without poll(2).
	peeked  byte
	hasPeek bool
	peekErr error
}

// NewNetConn wraps conn.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn}
}

// Read fills buf from the connection.
func (n *NetConn) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if n.hasPeek {
		n.hasPeek = false
		buf[0] = n.peeked
		return 1, nil
	}
	if n.peekErr != nil {
		err := n.peekErr
		n.peekErr = nil
		return 0, err
	}
	return n.conn.Read(buf)
}

// Write writes buf to the connection.
func (n *NetConn) Write(buf []byte) (int, error) {
	return n.conn.Write(buf)
}

// WaitReadable blocks until the connection has data (or a pending EOF/error)
// or timeout elapses. A negative timeout waits forever.
func (n *NetConn) WaitReadable(timeout time.Duration) (bool, error) {
	if n.hasPeek || n.peekErr != nil {
		return true, nil
	}
	return n.waitReadable(timeout)
}

// Close the connection.
func (n *NetConn) Close() error {
	return n.conn.Close()
}

// waitByPeek waits by reading a single byte under a read deadline and
// holding it for the next Read.
func (n *NetConn) waitByPeek(timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	// Pipe-style conns refuse deadlines once either side is closed. Report
	// ready and let the next Read surface the real state.
	if err := n.conn.SetReadDeadline(deadline); err != nil {
		return true, nil
	}
	defer n.conn.SetReadDeadline(time.Time{})

	var b [1]byte
	m, err := n.conn.Read(b[:])
	if m == 1 {
		n.peeked = b[0]
		n.hasPeek = true
		return true, nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return false, nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	n.peekErr = err
	return true, nil
}
