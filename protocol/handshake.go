// File: protocol/handshake.go
// Package protocol implements the client side of the HTTP/1.1 Upgrade
// handshake wire format.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Requests are formatted straight into the network buffer and responses are
// scanned where they were read, so the handshake needs no memory beyond the
// buffer the frames later reuse.

package protocol

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"go4.org/mem"

	"github.com/momentics/hioload-wsc/api"
)

// Constants used for handshake processing.
const (
	HeaderSep                = "\r\n"
	HeaderLocation           = "Location"
	HeaderSecWebSocketKey    = "Sec-WebSocket-Key"
	HeaderSecWebSocketVer    = "Sec-WebSocket-Version"
	RequiredWebSocketVersion = "13"

	StatusSwitchingProtocols = 101
	StatusMovedPermanently   = 301
	StatusFound              = 302

	statusLinePrefix = "HTTP/"
	statusCodeLen    = 3
)

var (
	crlf         = mem.S(HeaderSep)
	headerEnd    = mem.S(HeaderSep + HeaderSep)
	headerTrim   = mem.S(" \t")
	statusPrefix = mem.S(statusLinePrefix)
)

// GenerateKey returns a fresh Sec-WebSocket-Key: 16 random bytes, base64.
func GenerateKey(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	var raw [16]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return "", errors.Wrap(err, "generate websocket key")
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// WriteRequest formats the Upgrade request for ep into dst and returns its
// length. Extra headers are written verbatim, one per line, after the
// protocol headers.
func WriteRequest(dst []byte, ep Endpoint, key string, extraHeaders []string) (int, error) {
	w := lineWriter{buf: dst}
	w.line("GET ", ep.PathAndQuery, " HTTP/1.1")
	w.line("Host: ", ep.HostHeader())
	w.line("Upgrade: websocket")
	w.line("Connection: Upgrade")
	w.line(HeaderSecWebSocketKey, ": ", key)
	w.line(HeaderSecWebSocketVer, ": ", RequiredWebSocketVersion)
	for _, h := range extraHeaders {
		w.line(h)
	}
	w.line()
	if w.overflow {
		return 0, api.ErrBufferTooShort.WithContext("capacity", len(dst))
	}
	return w.n, nil
}

type lineWriter struct {
	buf      []byte
	n        int
	overflow bool
}

func (w *lineWriter) line(parts ...string) {
	for _, p := range parts {
		w.write(p)
	}
	w.write(HeaderSep)
}

func (w *lineWriter) write(s string) {
	if w.overflow {
		return
	}
	if len(w.buf)-w.n < len(s) {
		w.overflow = true
		return
	}
	w.n += copy(w.buf[w.n:], s)
}

// ResponseHeaderLen returns the length of the status line plus header block
// (including the terminating empty line) at the start of b, or -1 if the
// block is not complete yet.
func ResponseHeaderLen(b []byte) int {
	i := mem.Index(mem.B(b), headerEnd)
	if i < 0 {
		return -1
	}
	return i + headerEnd.Len()
}

// SplitStatusLine returns the status line (without CRLF) and the header
// block that follows it.
func SplitStatusLine(resp []byte) (statusLine, headers []byte, err error) {
	i := mem.Index(mem.B(resp), crlf)
	if i < 0 {
		return nil, nil, api.ErrHandshakeProtocol.WithContext("reason", "no status line end")
	}
	return resp[:i], resp[i+crlf.Len():], nil
}

// ParseStatusLine extracts the status code from an HTTP/1.x status line:
// "HTTP/", version, a space, exactly three digits and a space.
func ParseStatusLine(line []byte) (int, error) {
	l := mem.B(line)
	if !mem.HasPrefix(l, statusPrefix) {
		return 0, api.ErrHandshakeProtocol.WithContext("reason", "bad status line prefix")
	}
	sp := mem.IndexByte(l, ' ')
	if sp < 0 {
		return 0, api.ErrHandshakeProtocol.WithContext("reason", "no status code")
	}
	code := l.SliceFrom(sp + 1)
	// The space after the code is mandatory, even with an empty reason.
	if code.Len() < statusCodeLen+1 || code.At(statusCodeLen) != ' ' {
		return 0, api.ErrHandshakeProtocol.WithContext("reason", "status code not three digits")
	}
	for i := 0; i < statusCodeLen; i++ {
		if !isDigit(code.At(i)) {
			return 0, api.ErrHandshakeProtocol.WithContext("reason", "status code not numeric")
		}
	}
	status, err := mem.ParseUint(code.SliceTo(statusCodeLen), 10, 16)
	if err != nil {
		return 0, api.ErrHandshakeProtocol.Wrap(err)
	}
	return int(status), nil
}

// FindHeader scans the CRLF-separated header block for name (compared
// case-insensitively) and returns its value with surrounding spaces and tabs
// trimmed. Scanning stops at the empty line that ends the block.
func FindHeader(headers []byte, name string) (value string, found bool, err error) {
	rest := mem.B(headers)
	want := mem.S(name)
	for {
		eol := mem.Index(rest, crlf)
		if eol < 0 {
			return "", false, api.ErrHandshakeProtocol.WithContext("reason", "no header end")
		}
		line := rest.SliceTo(eol)
		rest = rest.SliceFrom(eol + crlf.Len())
		if line.Len() == 0 {
			return "", false, nil
		}

		colon := mem.IndexByte(line, ':')
		if colon < 0 {
			return "", false, api.ErrHandshakeProtocol.WithContext("reason", "no colon")
		}
		if !mem.EqualFold(line.SliceTo(colon), want) {
			continue
		}
		v := mem.TrimCutset(line.SliceFrom(colon+1), headerTrim)
		if v.Len() == 0 {
			return "", false, api.ErrHandshakeProtocol.WithContext("reason", "empty header value")
		}
		return v.StringCopy(), true, nil
	}
}
