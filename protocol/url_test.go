package protocol_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/protocol"
)

func TestParseURL(t *testing.T) {
	longHost := strings.Repeat("localhost", 11)
	longPath := strings.Repeat("/abc/efg", 11)
	host80 := strings.Repeat("h", protocol.MaxHostnameLength)
	path80 := "/" + strings.Repeat("p", protocol.MaxPathAndQueryLength-1)

	tests := []struct {
		url           string
		allowRelative bool
		want          protocol.Endpoint
		wantErr       error
	}{
		{url: "localhost", want: protocol.Endpoint{Hostname: "localhost", Port: 80, PathAndQuery: "/"}},
		{url: "localhost:1234", want: protocol.Endpoint{Hostname: "localhost", Port: 1234, PathAndQuery: "/"}},
		{url: longHost + ":1234", wantErr: api.ErrHostnameTooLong},
		{url: "localhost:66000", wantErr: api.ErrInvalidPort},
		{url: "localhost:9999999", wantErr: api.ErrInvalidPort},
		{url: "localhost:-1", wantErr: api.ErrInvalidPort},
		{url: "localhost:abc", wantErr: api.ErrInvalidPort},
		{url: "localhost:0", wantErr: api.ErrInvalidPort},
		{url: "localhost:12ab", wantErr: api.ErrInvalidPort},
		{url: "ws://h:8080?room=1", want: protocol.Endpoint{Hostname: "h", Port: 8080, PathAndQuery: "/?room=1"}},
		{url: "localhost:65535", want: protocol.Endpoint{Hostname: "localhost", Port: 65535, PathAndQuery: "/"}},
		{url: "http://a.b.c:333/abc/efg?q=1", want: protocol.Endpoint{Hostname: "a.b.c", Port: 333, PathAndQuery: "/abc/efg?q=1"}},
		{url: "ws://a.b.c:333/abc/efg?q=1", want: protocol.Endpoint{Hostname: "a.b.c", Port: 333, PathAndQuery: "/abc/efg?q=1"}},
		{url: "https://a.b.c:333/abc/efg?q=1", want: protocol.Endpoint{Hostname: "a.b.c", Port: 333, PathAndQuery: "/abc/efg?q=1", IsSSL: true}},
		{url: "wss://a.b.c:333/abc/efg?q=1", want: protocol.Endpoint{Hostname: "a.b.c", Port: 333, PathAndQuery: "/abc/efg?q=1", IsSSL: true}},
		{url: "wss://a.b.c", want: protocol.Endpoint{Hostname: "a.b.c", Port: 443, PathAndQuery: "/", IsSSL: true}},
		{url: "ws://a.b.c/chat#top", want: protocol.Endpoint{Hostname: "a.b.c", Port: 80, PathAndQuery: "/chat"}},
		{url: "a.b.c#top", want: protocol.Endpoint{Hostname: "a.b.c", Port: 80, PathAndQuery: "/"}},
		{url: "foo://a.b.c:333/abc/efg?q=1", wantErr: api.ErrInvalidURLScheme},
		{url: "WS://a.b.c", wantErr: api.ErrInvalidURLScheme},
		{url: "://a.b.c", wantErr: api.ErrInvalidURLScheme},
		{url: "foo://" + longHost, wantErr: api.ErrInvalidURLScheme},
		{url: "wss://a.b.c:333" + longPath, wantErr: api.ErrPathAndQueryTooLong},
		{url: "ws:///path", wantErr: api.ErrEmptyHostname},
		{url: host80, want: protocol.Endpoint{Hostname: host80, Port: 80, PathAndQuery: "/"}},
		{url: host80 + "h", wantErr: api.ErrHostnameTooLong},
		{url: "ws://h" + path80, want: protocol.Endpoint{Hostname: "h", Port: 80, PathAndQuery: path80}},
		{url: "ws://h" + path80 + "p", wantErr: api.ErrPathAndQueryTooLong},
		{url: ":1234", allowRelative: true, want: protocol.Endpoint{Port: 1234, PathAndQuery: "/"}},
		{url: ":1234", wantErr: api.ErrRelativeURLNotAllowed},
		{url: "", allowRelative: true, wantErr: api.ErrInvalidURL},
		{url: "?q=1", allowRelative: true, want: protocol.Endpoint{Port: 80, PathAndQuery: "/?q=1"}},
		{url: "#top", allowRelative: true, wantErr: api.ErrInvalidURL},
		{url: "/abc", wantErr: api.ErrRelativeURLNotAllowed},
		{url: "/abc", allowRelative: true, want: protocol.Endpoint{Port: 80, PathAndQuery: "/abc"}},
		{url: "/login?next=http://x", allowRelative: true, want: protocol.Endpoint{Port: 80, PathAndQuery: "/login?next=http://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := protocol.ParseURL(tt.url, tt.allowRelative)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseURL(%q, %v) error = %v, want %v", tt.url, tt.allowRelative, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q, %v): %v", tt.url, tt.allowRelative, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseURL(%q) mismatch (-want +got):\n%s", tt.url, diff)
			}
		})
	}
}

func TestParseURLRoundTrip(t *testing.T) {
	urls := []string{
		"ws://localhost",
		"ws://localhost:8080/chat",
		"wss://a.b.c:333/abc/efg?q=1",
		"wss://example.com/",
		"http://example.com:80/x?y=z#frag",
		"https://example.com:443",
		"example.com:9000/p",
	}
	for _, u := range urls {
		ep, err := protocol.ParseURL(u, false)
		if err != nil {
			t.Fatalf("ParseURL(%q): %v", u, err)
		}
		again, err := protocol.ParseURL(ep.String(), false)
		if err != nil {
			t.Fatalf("ParseURL(%q) of re-serialized %q: %v", ep.String(), u, err)
		}
		if diff := cmp.Diff(ep, again); diff != "" {
			t.Errorf("round trip of %q via %q mismatch (-first +second):\n%s", u, ep.String(), diff)
		}
	}
}

func TestEndpointString(t *testing.T) {
	tests := []struct {
		ep   protocol.Endpoint
		want string
	}{
		{protocol.Endpoint{Hostname: "h", Port: 80, PathAndQuery: "/"}, "ws://h/"},
		{protocol.Endpoint{Hostname: "h", Port: 443, PathAndQuery: "/a", IsSSL: true}, "wss://h/a"},
		{protocol.Endpoint{Hostname: "h", Port: 443, PathAndQuery: "/a"}, "ws://h:443/a"},
		{protocol.Endpoint{Port: 80, PathAndQuery: "/rel"}, "/rel"},
	}
	for _, tt := range tests {
		if got := tt.ep.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.ep, got, tt.want)
		}
	}
}

func TestEndpointResolve(t *testing.T) {
	base := protocol.Endpoint{Hostname: "a.example", Port: 8080, PathAndQuery: "/old"}

	rel, err := protocol.ParseURL("/new?x=1", true)
	if err != nil {
		t.Fatal(err)
	}
	want := protocol.Endpoint{Hostname: "a.example", Port: 8080, PathAndQuery: "/new?x=1"}
	if diff := cmp.Diff(want, base.Resolve(rel)); diff != "" {
		t.Errorf("relative resolve (-want +got):\n%s", diff)
	}

	abs, err := protocol.ParseURL("wss://b.example/ws", true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(abs, base.Resolve(abs)); diff != "" {
		t.Errorf("absolute resolve (-want +got):\n%s", diff)
	}

	if base.PathAndQuery != "/old" {
		t.Errorf("Resolve mutated the base endpoint: %+v", base)
	}
}
