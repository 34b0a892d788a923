//go:build unix

// File: transport/wait_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// poll(2)-based readiness wait.

package transport

import (
	"math"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func (n *NetConn) waitReadable(timeout time.Duration) (bool, error) {
	sc, ok := n.conn.(syscall.Conn)
	if !ok {
		return n.waitByPeek(timeout)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return false, errors.Wrap(err, "syscall conn")
	}

	var ready bool
	var perr error
	cerr := rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			cnt, err := unix.Poll(fds, pollTimeout(timeout))
			if err == unix.EINTR {
				continue
			}
			ready, perr = cnt > 0, err
			return
		}
	})
	if cerr != nil {
		return false, errors.Wrap(cerr, "raw conn control")
	}
	if perr != nil {
		return false, errors.Wrap(perr, "poll")
	}
	return ready, nil
}

// pollTimeout converts timeout to poll(2) milliseconds, rounding up so short
// waits do not turn into non-blocking checks.
func pollTimeout(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
