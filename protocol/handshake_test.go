package protocol_test

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/protocol"
)

func TestGenerateKey(t *testing.T) {
	c := qt.New(t)
	key, err := protocol.GenerateKey(bytes.NewReader(make([]byte, 16)))
	c.Assert(err, qt.IsNil)
	c.Assert(key, qt.Equals, "AAAAAAAAAAAAAAAAAAAAAA==")

	key, err = protocol.GenerateKey(nil)
	c.Assert(err, qt.IsNil)
	raw, err := base64.StdEncoding.DecodeString(key)
	c.Assert(err, qt.IsNil)
	c.Assert(raw, qt.HasLen, 16)

	_, err = protocol.GenerateKey(bytes.NewReader(make([]byte, 3)))
	c.Assert(err, qt.IsNotNil)
}

func TestWriteRequest(t *testing.T) {
	c := qt.New(t)
	ep := protocol.Endpoint{Hostname: "example.com", Port: 8080, PathAndQuery: "/chat?x=1"}
	buf := make([]byte, 512)

	n, err := protocol.WriteRequest(buf, ep, "dGhlIHNhbXBsZSBub25jZQ==", []string{"Origin: http://example.com"})
	c.Assert(err, qt.IsNil)
	c.Assert(string(buf[:n]), qt.Equals, strings.Join([]string{
		"GET /chat?x=1 HTTP/1.1",
		"Host: example.com:8080",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
		"Sec-WebSocket-Version: 13",
		"Origin: http://example.com",
		"", "",
	}, "\r\n"))

	ep.Port = protocol.DefaultPort
	n, err = protocol.WriteRequest(buf, ep, "k", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(string(buf[:n]), "\r\nHost: example.com\r\n"), qt.IsTrue)
}

func TestWriteRequestOverflow(t *testing.T) {
	c := qt.New(t)
	ep := protocol.Endpoint{Hostname: "example.com", Port: 80, PathAndQuery: "/"}
	full := make([]byte, 512)
	n, err := protocol.WriteRequest(full, ep, "k", nil)
	c.Assert(err, qt.IsNil)

	_, err = protocol.WriteRequest(make([]byte, n-1), ep, "k", nil)
	c.Assert(err, qt.ErrorIs, api.ErrBufferTooShort)

	m, err := protocol.WriteRequest(make([]byte, n), ep, "k", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.Equals, n)
}

func TestResponseHeaderLen(t *testing.T) {
	c := qt.New(t)
	resp := "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\n"
	c.Assert(protocol.ResponseHeaderLen([]byte(resp)), qt.Equals, len(resp))
	c.Assert(protocol.ResponseHeaderLen([]byte(resp+"\x81\x00")), qt.Equals, len(resp))
	c.Assert(protocol.ResponseHeaderLen([]byte(resp[:len(resp)-1])), qt.Equals, -1)
}

func TestParseStatusLine(t *testing.T) {
	valid := map[string]int{
		"HTTP/1.1 101 Switching Protocols": 101,
		"HTTP/1.0 302 Found":               302,
		"HTTP/1.1 404 ":                    404,
	}
	for line, want := range valid {
		t.Run(line, func(t *testing.T) {
			got, err := protocol.ParseStatusLine([]byte(line))
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, got, qt.Equals, want)
		})
	}

	invalid := []string{
		"",
		"HTTP/1.1",
		"HTTP/1.1 101",
		"HTTP/1.1 10 OK",
		"HTTP/1.1 1011 OK",
		"HTTP/1.1 1a1 OK",
		"HTTP/1.1  101 OK",
		"http/1.1 101 OK",
		"ICY 200 OK",
	}
	for _, line := range invalid {
		t.Run("invalid/"+line, func(t *testing.T) {
			_, err := protocol.ParseStatusLine([]byte(line))
			qt.Assert(t, err, qt.ErrorIs, api.ErrHandshakeProtocol)
		})
	}
}

func TestSplitStatusLine(t *testing.T) {
	c := qt.New(t)
	status, headers, err := protocol.SplitStatusLine([]byte("HTTP/1.1 302 Found\r\nLocation: /x\r\n\r\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(status), qt.Equals, "HTTP/1.1 302 Found")
	c.Assert(string(headers), qt.Equals, "Location: /x\r\n\r\n")

	_, _, err = protocol.SplitStatusLine([]byte("HTTP/1.1 302 Found"))
	c.Assert(err, qt.ErrorIs, api.ErrHandshakeProtocol)
}

func TestFindHeader(t *testing.T) {
	c := qt.New(t)
	headers := []byte("Server: test\r\nlocation: \t ws://other:81/next \t\r\nX-Empty-After: 1\r\n\r\nLocation: ignored\r\n")

	v, found, err := protocol.FindHeader(headers, protocol.HeaderLocation)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(v, qt.Equals, "ws://other:81/next")

	_, found, err = protocol.FindHeader(headers, "Set-Cookie")
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)

	_, _, err = protocol.FindHeader([]byte("Location: /x\r\n"), "Set-Cookie")
	c.Assert(err, qt.ErrorIs, api.ErrHandshakeProtocol)

	_, _, err = protocol.FindHeader([]byte("garbage line\r\n\r\n"), protocol.HeaderLocation)
	c.Assert(err, qt.ErrorIs, api.ErrHandshakeProtocol)

	_, _, err = protocol.FindHeader([]byte("Location:  \r\n\r\n"), protocol.HeaderLocation)
	c.Assert(err, qt.ErrorIs, api.ErrHandshakeProtocol)
}
