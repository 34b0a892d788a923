// Command wsclient connects to a WebSocket endpoint, sends one text message
// and prints everything the server sends back, answering pings, until the
// server closes the connection.
//
// Flags may also be given as WSCLIENT_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/momentics/hioload-wsc/api"
	"github.com/momentics/hioload-wsc/client"
	"github.com/momentics/hioload-wsc/control"
	"github.com/momentics/hioload-wsc/protocol"
	"github.com/momentics/hioload-wsc/transport"
)

// defaultMessage is longer than 125 bytes, so the first frame carries the
// 16-bit extended length.
var defaultMessage = "hello_world! " + strings.Repeat("aaabbcccdd", 24) + " foobar"

// headerList collects repeated -header flags.
type headerList []string

func (h *headerList) String() string { return strings.Join(*h, ", ") }

func (h *headerList) Set(v string) error {
	*h = append(*h, v)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "wsclient: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("wsclient", flag.ContinueOnError)
	var (
		rawURL         = fs.String("url", "", "ws://, wss://, http:// or https:// URL to connect to")
		bufferSize     = fs.Int("buffer-size", 1024, "network buffer size in bytes")
		message        = fs.String("message", defaultMessage, "text message sent after connecting")
		receiveTimeout = fs.Duration("receive-timeout", 100*time.Millisecond, "readiness wait per receive attempt")
		dialTimeout    = fs.Duration("dial-timeout", 10*time.Second, "TCP connect timeout")
		debug          = fs.Bool("debug", false, "log handshake and redirects")
		headers        headerList
	)
	fs.Var(&headers, "header", "extra handshake header, \"Name: value\" (repeatable)")
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("WSCLIENT")); err != nil {
		return err
	}
	if *rawURL == "" && fs.NArg() == 1 {
		*rawURL = fs.Arg(0)
	}
	if *rawURL == "" {
		fs.Usage()
		return errors.New("missing -url")
	}

	logger, err := newLogger(*debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ep, err := protocol.ParseURL(*rawURL, false)
	if err != nil {
		return errors.Wrap(err, "parse url")
	}
	if ep.IsSSL {
		logger.Warn("TLS is not implemented by the default dialer; connecting in plain text", zap.Stringer("endpoint", ep))
	}

	ws, err := client.Dial(context.Background(), ep, client.Config{
		Buffer:       make([]byte, *bufferSize),
		ExtraHeaders: headers,
		Dialer:       &transport.TCPDialer{Timeout: *dialTimeout},
		Logger:       logger,
	})
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer ws.Close()

	metrics := control.NewMetricsRegistry()
	defer func() { logger.Info("session finished", metrics.ZapFields()...) }()

	n := copy(ws.OutgoingPayload(), *message)
	if n < len(*message) {
		return errors.Errorf("message of %d bytes does not fit the %d byte buffer", len(*message), *bufferSize)
	}
	if err := ws.SendText(n); err != nil {
		return errors.Wrap(err, "send")
	}
	metrics.Add(control.MetricMessagesSent, 1)
	metrics.Add(control.MetricBytesSent, int64(n))

	for {
		msg, err := ws.Receive(*receiveTimeout)
		if errors.Is(err, api.ErrRemoteSocketClosed) {
			logger.Info("socket closed by server")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "receive")
		}
		if msg.Type == api.MessageNone {
			metrics.Add(control.MetricIdleReceives, 1)
			continue
		}
		metrics.Add(control.MetricMessagesReceived, 1)
		metrics.Add(control.MetricBytesReceived, int64(msg.Payload.Len()))

		if msg.Type == api.MessagePing {
			if err := ws.SendPong(msg.Payload); err != nil {
				return errors.Wrap(err, "pong")
			}
			metrics.Add(control.MetricPingsAnswered, 1)
			continue
		}
		fmt.Printf("received %s (%d bytes)\n%s\n", msg.Type, msg.Payload.Len(), msg.Payload.Bytes())
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
