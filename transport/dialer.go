// File: transport/dialer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Plain TCP dialer. TLS is not implemented here; wrap or replace the dialer
// to add it.

package transport

import (
	"context"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-wsc/api"
)

// TCPDialer implements api.Dialer over net.Dialer.
type TCPDialer struct {
	Timeout   time.Duration // connect timeout, zero for none
	KeepAlive time.Duration // zero enables the net package default
}

// Dial resolves host and connects to it. Failures are classified as
// resolution, socket creation or connect errors.
func (d *TCPDialer) Dial(ctx context.Context, host string, port uint16) (api.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyDialError(addr, err)
	}

	// Frames go out in one write each; Nagle only adds latency.
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, api.ErrCreatingSocket.Wrap(errors.Wrap(err, "set TCP_NODELAY"))
		}
	}
	return NewNetConn(conn), nil
}

func classifyDialError(addr string, err error) error {
	cause := errors.Wrapf(err, "dial %s", addr)
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return api.ErrResolvingHostname.Wrap(cause)
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) && sysErr.Syscall == "socket" {
		return api.ErrCreatingSocket.Wrap(cause)
	}
	return api.ErrConnectFailed.Wrap(cause)
}
