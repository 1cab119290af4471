package model

import "errors"

var (
	// ErrConfiguration means a required setting is missing or invalid.
	ErrConfiguration = errors.New("configuration error")
	// ErrInputParse means the identifier stream is malformed or unreadable.
	ErrInputParse = errors.New("input parse error")
	// ErrTransport means a request failed below HTTP (dial, TLS, timeout).
	ErrTransport = errors.New("transport error")
	// ErrUnauthorizedHalt means the run stopped after the endpoint rejected the token.
	ErrUnauthorizedHalt = errors.New("halted: endpoint rejected the bearer token")
)
