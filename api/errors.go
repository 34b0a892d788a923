// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the URL parser, handshake engine and frame codec.
// Every failure is terminal for the call that produced it; nothing retries.

package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota

	// Transport.
	ErrCodeCreatingSocket
	ErrCodeResolvingHostname
	ErrCodeConnectFailed
	ErrCodeWritingToSocket
	ErrCodeReadingFromSocket
	ErrCodeRemoteSocketClosed

	// Handshake protocol.
	ErrCodeBufferTooShort
	ErrCodeHandshakeProtocol
	ErrCodeHandshakeHTTP
	ErrCodeRedirectMissingLocation
	ErrCodeTooManyRedirects
	ErrCodeInvalidRedirectURL

	// URL parsing.
	ErrCodeInvalidURLScheme
	ErrCodeRelativeURLNotAllowed
	ErrCodeEmptyHostname
	ErrCodeInvalidURL
	ErrCodeHostnameTooLong
	ErrCodeInvalidPort
	ErrCodePathAndQueryTooLong

	// Framing.
	ErrCodeContinuationNotSupported
	ErrCodeUnsupportedOpcode
	ErrCodePayloadExceededMaxLength
	ErrCodeInvalidPongPayload
)

var codeNames = map[ErrorCode]string{
	ErrCodeOK:                       "ok",
	ErrCodeCreatingSocket:           "error creating socket",
	ErrCodeResolvingHostname:        "error resolving hostname",
	ErrCodeConnectFailed:            "connect failed",
	ErrCodeWritingToSocket:          "error writing to socket",
	ErrCodeReadingFromSocket:        "error reading from socket",
	ErrCodeRemoteSocketClosed:       "remote socket closed",
	ErrCodeBufferTooShort:           "buffer too short",
	ErrCodeHandshakeProtocol:        "http handshake protocol error",
	ErrCodeHandshakeHTTP:            "http handshake http error",
	ErrCodeRedirectMissingLocation:  "http redirect missing location header",
	ErrCodeTooManyRedirects:         "too many redirects",
	ErrCodeInvalidRedirectURL:       "invalid redirect url",
	ErrCodeInvalidURLScheme:         "invalid url scheme",
	ErrCodeRelativeURLNotAllowed:    "relative url not allowed",
	ErrCodeEmptyHostname:            "empty hostname",
	ErrCodeInvalidURL:               "invalid url",
	ErrCodeHostnameTooLong:          "hostname too long",
	ErrCodeInvalidPort:              "invalid port",
	ErrCodePathAndQueryTooLong:      "path and query too long",
	ErrCodeContinuationNotSupported: "continuation frames not supported",
	ErrCodeUnsupportedOpcode:        "unsupported opcode",
	ErrCodePayloadExceededMaxLength: "payload exceeded max length",
	ErrCodeInvalidPongPayload:       "invalid pong payload",
}

// String returns the human readable name of the code.
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Sentinel errors, one per code. Compare with errors.Is; the values carry no
// context and are never mutated.
var (
	ErrCreatingSocket           = NewError(ErrCodeCreatingSocket, "")
	ErrResolvingHostname        = NewError(ErrCodeResolvingHostname, "")
	ErrConnectFailed            = NewError(ErrCodeConnectFailed, "")
	ErrWritingToSocket          = NewError(ErrCodeWritingToSocket, "")
	ErrReadingFromSocket        = NewError(ErrCodeReadingFromSocket, "")
	ErrRemoteSocketClosed       = NewError(ErrCodeRemoteSocketClosed, "")
	ErrBufferTooShort           = NewError(ErrCodeBufferTooShort, "")
	ErrHandshakeProtocol        = NewError(ErrCodeHandshakeProtocol, "")
	ErrHandshakeHTTP            = NewError(ErrCodeHandshakeHTTP, "")
	ErrRedirectMissingLocation  = NewError(ErrCodeRedirectMissingLocation, "")
	ErrTooManyRedirects         = NewError(ErrCodeTooManyRedirects, "")
	ErrInvalidRedirectURL       = NewError(ErrCodeInvalidRedirectURL, "")
	ErrInvalidURLScheme         = NewError(ErrCodeInvalidURLScheme, "")
	ErrRelativeURLNotAllowed    = NewError(ErrCodeRelativeURLNotAllowed, "")
	ErrEmptyHostname            = NewError(ErrCodeEmptyHostname, "")
	ErrInvalidURL               = NewError(ErrCodeInvalidURL, "")
	ErrHostnameTooLong          = NewError(ErrCodeHostnameTooLong, "")
	ErrInvalidPort              = NewError(ErrCodeInvalidPort, "")
	ErrPathAndQueryTooLong      = NewError(ErrCodePathAndQueryTooLong, "")
	ErrContinuationNotSupported = NewError(ErrCodeContinuationNotSupported, "")
	ErrUnsupportedOpcode        = NewError(ErrCodeUnsupportedOpcode, "")
	ErrPayloadExceededMaxLength = NewError(ErrCodePayloadExceededMaxLength, "")
	ErrInvalidPongPayload       = NewError(ErrCodeInvalidPongPayload, "")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	c := e.clone()
	c.cause = cause
	return c
}

// WithContext returns a copy of e with key set to value.
func (e *Error) WithContext(key string, value any) *Error {
	c := e.clone()
	c.Context[key] = value
	return c
}

func (e *Error) clone() *Error {
	c := &Error{Code: e.Code, Message: e.Message, cause: e.cause}
	c.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		c.Context[k] = v
	}
	return c
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeOK when err does not
// contain an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeOK
}
