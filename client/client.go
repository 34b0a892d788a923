// File: client/client.go
// Package client provides a fixed-buffer WebSocket client handle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The handle implements:
// - URL endpoint connect and RFC6455 HTTP Upgrade handshake over bare TCP
// - Bounded following of 301/302 redirects, absolute or relative
// - In-place masked encoding of text and pong frames
// - Zero-copy receive of text, binary and ping frames with a readiness timeout
//
// Every request, response and frame passes through one buffer supplied by
// the caller. A Handle is owned by a single goroutine; it performs no
// background work and never retries.

package client

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/protocol"
	"github.com/momentics/hioload-wsc/transport"
)

// MaxRedirects bounds the number of redirect hops Dial follows.
const MaxRedirects = 6

// Config holds the parameters of a connection.
type Config struct {
	// Buffer is the network buffer. Its length bounds the handshake request,
	// the handshake response and every frame. Required.
	Buffer []byte

	// ExtraHeaders are sent verbatim ("Name: value") after the protocol
	// headers of every handshake request, redirects included.
	ExtraHeaders []string

	// Dialer opens connections; nil uses a plain transport.TCPDialer.
	Dialer api.Dialer

	// Logger receives debug logs of connects and redirects; nil disables
	// logging.
	Logger *zap.Logger

	// Rand supplies handshake keys and mask keys; nil uses crypto/rand.
	Rand io.Reader
}

// Handle is one established WebSocket connection.
type Handle struct {
	conn     api.Conn
	buf      []byte
	view     api.View
	endpoint protocol.Endpoint
	log      *zap.Logger
	rand     io.Reader

	// Received but not yet decoded bytes live in buf[pendStart:pendEnd].
	// Both are zero when nothing is pending.
	pendStart int
	pendEnd   int
}

// Dial connects to ep and performs the WebSocket handshake, following up to
// MaxRedirects redirects. On failure every socket it opened is closed.
func Dial(ctx context.Context, ep protocol.Endpoint, cfg Config) (*Handle, error) {
	if ep.IsRelative() {
		return nil, api.ErrRelativeURLNotAllowed
	}
	if len(cfg.Buffer) <= protocol.OutgoingPayloadOffset {
		return nil, api.ErrBufferTooShort.WithContext("capacity", len(cfg.Buffer))
	}

	h := &Handle{
		buf:  cfg.Buffer,
		view: api.NewView(cfg.Buffer),
		log:  cfg.Logger,
		rand: cfg.Rand,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.rand == nil {
		h.rand = rand.Reader
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &transport.TCPDialer{}
	}

	hops := 0
	for {
		log := h.log.With(zap.Stringer("endpoint", ep), zap.Int("hop", hops))
		log.Debug("connecting")

		conn, err := dialer.Dial(ctx, ep.Hostname, ep.Port)
		if err != nil {
			return nil, err
		}
		location, err := h.handshake(conn, ep, cfg.ExtraHeaders)
		if err != nil {
			conn.Close()
			log.Debug("handshake failed", zap.Error(err))
			return nil, err
		}
		if location == "" {
			h.conn = conn
			h.endpoint = ep
			log.Debug("websocket established", zap.Int("pending", h.pendEnd-h.pendStart))
			return h, nil
		}

		conn.Close()
		hops++
		if hops > MaxRedirects {
			return nil, api.ErrTooManyRedirects.WithContext("max", MaxRedirects)
		}
		target, err := protocol.ParseURL(location, true)
		if err != nil {
			return nil, api.ErrInvalidRedirectURL.WithContext("location", location).Wrap(err)
		}
		next := ep.Resolve(target)
		log.Debug("following redirect", zap.String("location", location), zap.Stringer("next", next))
		ep = next
	}
}

// handshake sends the Upgrade request on conn and reads the response. It
// returns the redirect location, or "" once the connection is upgraded.
func (h *Handle) handshake(conn api.Conn, ep protocol.Endpoint, extraHeaders []string) (string, error) {
	h.resetPending()

	key, err := protocol.GenerateKey(h.rand)
	if err != nil {
		return "", err
	}
	n, err := protocol.WriteRequest(h.buf, ep, key, extraHeaders)
	if err != nil {
		return "", err
	}
	if err := writeFull(conn, h.buf[:n]); err != nil {
		return "", err
	}

	hdrLen, total, err := h.readResponse(conn)
	if err != nil {
		return "", err
	}
	statusLine, headers, err := protocol.SplitStatusLine(h.buf[:hdrLen])
	if err != nil {
		return "", err
	}
	status, err := protocol.ParseStatusLine(statusLine)
	if err != nil {
		return "", err
	}
	h.log.Debug("handshake response", zap.Int("status", status), zap.Int("length", hdrLen))

	switch status {
	case protocol.StatusSwitchingProtocols:
		// Frames the server sent right behind the response stay pending.
		if total > hdrLen {
			h.pendStart, h.pendEnd = hdrLen, total
		}
		return "", nil
	case protocol.StatusMovedPermanently, protocol.StatusFound:
		location, found, err := protocol.FindHeader(headers, protocol.HeaderLocation)
		if err != nil {
			return "", err
		}
		if !found {
			return "", api.ErrRedirectMissingLocation.WithContext("status", status)
		}
		return location, nil
	default:
		return "", api.ErrHandshakeHTTP.WithContext("status", status)
	}
}

// readResponse reads until the response header block is complete. It
// returns the header block length and the number of bytes read.
func (h *Handle) readResponse(conn api.Conn) (hdrLen, total int, err error) {
	for {
		n, err := fill(conn, h.buf[total:])
		if err != nil {
			return 0, 0, err
		}
		total += n
		// A full buffer may hide a truncated response.
		if total == len(h.buf) {
			return 0, 0, api.ErrBufferTooShort.WithContext("capacity", len(h.buf))
		}
		if l := protocol.ResponseHeaderLen(h.buf[:total]); l >= 0 {
			return l, total, nil
		}
	}
}

// Endpoint returns the endpoint the connection was established with, after
// redirects.
func (h *Handle) Endpoint() protocol.Endpoint { return h.endpoint }

// Buffer returns a view of the whole network buffer.
func (h *Handle) Buffer() api.View { return h.view }

// Close closes the connection. Calling it again is a no-op.
func (h *Handle) Close() error {
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	h.resetPending()
	if err != nil {
		return errors.Wrap(err, "close")
	}
	return nil
}
