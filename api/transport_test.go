package api_test

import (
	"testing"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/fake"
	"github.com/momentics/hioload-wsc/transport"
)

func TestTransportInterfaceCompliance(t *testing.T) {
	var _ api.Conn = (*transport.NetConn)(nil)
	var _ api.Conn = (*fake.Conn)(nil)
	var _ api.Dialer = (*transport.TCPDialer)(nil)
	var _ api.Dialer = (*fake.Dialer)(nil)
}

func TestMessageTypeValues(t *testing.T) {
	// The numeric values are part of the public contract.
	want := map[api.MessageType]byte{
		api.MessageNone:   0,
		api.MessageText:   1,
		api.MessageBinary: 2,
		api.MessagePing:   3,
	}
	for typ, v := range want {
		if byte(typ) != v {
			t.Errorf("%s = %d, want %d", typ, byte(typ), v)
		}
	}
	if got := api.MessageType(9).String(); got != "unknown" {
		t.Errorf("MessageType(9).String() = %q", got)
	}
}
