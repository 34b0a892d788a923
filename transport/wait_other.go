//go:build !unix

// File: transport/wait_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "time"

func (n *NetConn) waitReadable(timeout time.Duration) (bool, error) {
	return n.waitByPeek(timeout)
}
