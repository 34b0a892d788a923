// Package fake
// Author: momentics <momentics@gmail.com>
//
// Scripted in-memory transport for testing.
// Provides predictable, controllable behavior for api.Conn and api.Dialer.

package fake

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-wsc/api"
)

// Conn is a fake api.Conn. Each Read returns (at most) the next scripted
// chunk, so tests control exactly how the peer's bytes are segmented.
type Conn struct {
	mu         sync.Mutex
	chunks     *queue.Queue // of []byte
	head       []byte       // unread rest of a chunk larger than the last Read
	written    [][]byte
	peerClosed bool
	closed     bool
	readErr    error
	writeErr   error
	shortWrite bool
	waits      int
}

// NewConn creates a connection that will deliver chunks in order.
func NewConn(chunks ...[]byte) *Conn {
	c := &Conn{chunks: queue.New()}
	for _, ch := range chunks {
		c.AddReadChunk(ch)
	}
	return c
}

// AddReadChunk queues data for a later Read.
func (c *Conn) AddReadChunk(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks.Add(append([]byte(nil), data...))
}

// ClosePeer makes Read return io.EOF once all chunks are consumed.
func (c *Conn) ClosePeer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peerClosed = true
}

// SetReadError configures the error Read returns once chunks run out.
func (c *Conn) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// SetWriteError configures the transport to return an error on Write.
func (c *Conn) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// SetShortWrite makes Write report one byte less than requested.
func (c *Conn) SetShortWrite(short bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shortWrite = short
}

// Read implements api.Conn.Read.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if len(c.head) == 0 && c.chunks.Length() > 0 {
		c.head = c.chunks.Remove().([]byte)
	}
	if len(c.head) > 0 {
		n := copy(p, c.head)
		c.head = c.head[n:]
		return n, nil
	}
	if c.readErr != nil {
		return 0, c.readErr
	}
	return 0, io.EOF
}

// Write implements api.Conn.Write and records a copy of the data.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.written = append(c.written, append([]byte(nil), p...))
	if c.shortWrite && len(p) > 0 {
		return len(p) - 1, nil
	}
	return len(p), nil
}

// WaitReadable implements api.Conn.WaitReadable without sleeping: it is
// ready when a chunk, an EOF or a read error is pending.
func (c *Conn) WaitReadable(time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits++
	if c.closed {
		return false, net.ErrClosed
	}
	return len(c.head) > 0 || c.chunks.Length() > 0 || c.peerClosed || c.readErr != nil, nil
}

// Close implements api.Conn.Close.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Written returns every buffer passed to Write, one entry per call.
func (c *Conn) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.written))
	copy(out, c.written)
	return out
}

// Waits returns how many times WaitReadable was called.
func (c *Conn) Waits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}

// Dialer is a fake api.Dialer handing out scripted connections in order.
type Dialer struct {
	mu      sync.Mutex
	results *queue.Queue // of *Conn or error
	dials   []string
}

// NewDialer creates a dialer with no scripted connections.
func NewDialer() *Dialer {
	return &Dialer{results: queue.New()}
}

// Add queues a connection for a later Dial.
func (d *Dialer) Add(c *Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results.Add(c)
}

// AddError queues a dial failure.
func (d *Dialer) AddError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results.Add(err)
}

// Dial implements api.Dialer.Dial. It fails with ErrConnectFailed once the
// script is exhausted.
func (d *Dialer) Dial(_ context.Context, host string, port uint16) (api.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, net.JoinHostPort(host, strconv.Itoa(int(port))))
	if d.results.Length() == 0 {
		return nil, api.ErrConnectFailed.WithContext("reason", fmt.Sprintf("no scripted connection for dial %d", len(d.dials)))
	}
	switch r := d.results.Remove().(type) {
	case *Conn:
		return r, nil
	case error:
		return nil, r
	default:
		panic(fmt.Sprintf("fake: unexpected dial result %T", r))
	}
}

// Dials returns the host:port of every Dial call.
func (d *Dialer) Dials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}
