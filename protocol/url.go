// File: protocol/url.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Endpoint parsing for ws://, wss://, http:// and https:// URLs, including
// the relative references servers send in redirect Location headers.

package protocol

import (
	"math"
	"net"
	"strconv"

	"go4.org/mem"

	"github.com/momentics/hioload-wsc/api"
)

// Bounds on the parsed endpoint fields. Longer input is rejected, never
// truncated.
const (
	MaxHostnameLength     = 80
	MaxPathAndQueryLength = 80

	DefaultPort    = 80
	DefaultSSLPort = 443
)

var schemeSeparator = mem.S("://")

// Endpoint is a resolved connection target. Values are immutable; redirects
// build new ones through WithPathAndQuery or Resolve.
type Endpoint struct {
	Hostname     string
	Port         uint16
	PathAndQuery string
	IsSSL        bool
}

// IsRelative reports whether the endpoint came from a URL without a host.
func (e Endpoint) IsRelative() bool { return e.Hostname == "" }

// Address returns host:port for dialing.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Hostname, strconv.Itoa(int(e.Port)))
}

// HostHeader returns the value of the Host request header.
func (e Endpoint) HostHeader() string {
	if e.Port == e.defaultPort() {
		return e.Hostname
	}
	return e.Address()
}

// String re-serializes the endpoint as a ws:// or wss:// URL. Relative
// endpoints serialize to their path and query.
func (e Endpoint) String() string {
	if e.IsRelative() {
		return e.PathAndQuery
	}
	scheme := "ws://"
	if e.IsSSL {
		scheme = "wss://"
	}
	return scheme + e.HostHeader() + e.PathAndQuery
}

// WithPathAndQuery returns a copy of e targeting another path on the same
// host.
func (e Endpoint) WithPathAndQuery(pathAndQuery string) Endpoint {
	e.PathAndQuery = pathAndQuery
	return e
}

// Resolve returns the endpoint a redirect to target leads to: a relative
// target keeps the current host and only swaps the path, an absolute one
// replaces everything.
func (e Endpoint) Resolve(target Endpoint) Endpoint {
	if target.IsRelative() {
		return e.WithPathAndQuery(target.PathAndQuery)
	}
	return target
}

func (e Endpoint) defaultPort() uint16 {
	if e.IsSSL {
		return DefaultSSLPort
	}
	return DefaultPort
}

// ParseURL parses rawURL into an Endpoint. With allowRelative, URLs without a
// host are accepted and yield an endpoint with an empty Hostname.
func ParseURL(rawURL string, allowRelative bool) (Endpoint, error) {
	s := mem.S(rawURL)
	var ep Endpoint
	hasScheme := false
	pos := 0

	if i := mem.Index(s, schemeSeparator); i >= 0 && indexHostTerminator(s.SliceTo(i), false) < 0 {
		scheme := s.SliceTo(i)
		switch {
		case scheme.EqualString("https"), scheme.EqualString("wss"):
			ep.IsSSL = true
		case scheme.EqualString("http"), scheme.EqualString("ws"):
		default:
			return Endpoint{}, api.ErrInvalidURLScheme.WithContext("scheme", scheme.StringCopy())
		}
		hasScheme = true
		pos = i + schemeSeparator.Len()
	}

	hostStart := pos
	for pos < s.Len() && !isHostTerminator(s.At(pos), true) {
		if pos-hostStart >= MaxHostnameLength {
			return Endpoint{}, api.ErrHostnameTooLong.WithContext("max", MaxHostnameLength)
		}
		pos++
	}
	host := s.Slice(hostStart, pos)

	relative := host.Len() == 0
	if relative {
		if hasScheme {
			return Endpoint{}, api.ErrEmptyHostname
		}
		if !allowRelative {
			return Endpoint{}, api.ErrRelativeURLNotAllowed
		}
	}
	ep.Hostname = host.StringCopy()

	ep.Port = ep.defaultPort()
	explicitPort := false
	if pos < s.Len() && s.At(pos) == ':' {
		pos++
		var port uint32
		for pos < s.Len() && isDigit(s.At(pos)) {
			port = port*10 + uint32(s.At(pos)-'0')
			if port > math.MaxUint16 {
				return Endpoint{}, api.ErrInvalidPort
			}
			pos++
		}
		if port == 0 || (pos < s.Len() && !isHostTerminator(s.At(pos), false)) {
			return Endpoint{}, api.ErrInvalidPort
		}
		ep.Port = uint16(port)
		explicitPort = true
	}

	switch {
	case pos < s.Len() && (s.At(pos) == '/' || s.At(pos) == '?'):
		// A bare query gets the root path in front of it.
		prefix := ""
		if s.At(pos) == '?' {
			prefix = "/"
		}
		pathStart := pos
		for pos < s.Len() && s.At(pos) != '#' {
			if len(prefix)+pos-pathStart >= MaxPathAndQueryLength {
				return Endpoint{}, api.ErrPathAndQueryTooLong.WithContext("max", MaxPathAndQueryLength)
			}
			pos++
		}
		ep.PathAndQuery = prefix + s.Slice(pathStart, pos).StringCopy()
	case relative && !explicitPort:
		// Nothing usable: no host, no port, no path.
		return Endpoint{}, api.ErrInvalidURL
	default:
		ep.PathAndQuery = "/"
	}

	return ep, nil
}

// isHostTerminator reports whether c ends the authority. The colon only
// counts once the scheme has been consumed.
func isHostTerminator(c byte, colon bool) bool {
	switch c {
	case '/', '?', '#':
		return true
	case ':':
		return colon
	}
	return false
}

func indexHostTerminator(m mem.RO, colon bool) int {
	for i := 0; i < m.Len(); i++ {
		if isHostTerminator(m.At(i), colon) {
			return i
		}
	}
	return -1
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
