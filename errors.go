package rsm

import (
	"errors"
	"fmt"
)

// Config layer errors.
var (
	// ErrInvalidConfig is returned when the config file contains malformed JSON.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrFailedToReadConfig is returned on I/O errors while reading the config file.
	ErrFailedToReadConfig = errors.New("failed to read config")

	// ErrFailedToUpdateConf is returned when the config file cannot be written.
	ErrFailedToUpdateConf = errors.New("failed to update config")

	// ErrNoAuth is returned when a session token is required but not stored.
	ErrNoAuth = errors.New("no auth token, log in first")
)

// Transport and decoding errors.
var (
	// ErrFailedToConnectToServer is returned on any transport-level failure.
	ErrFailedToConnectToServer = errors.New("failed to connect to server")

	// ErrInvalidServerResponse is returned when the response body cannot be read.
	ErrInvalidServerResponse = errors.New("invalid server response")

	// ErrUnreadableServerResponse is returned when the response body is not the
	// JSON shape the client expects.
	ErrUnreadableServerResponse = errors.New("failed to read server response")
)

// Auth flow terminal failures. These are promoted from server-reported error
// responses because the local state transitions depend on success.
var (
	ErrLoginFail         = errors.New("login failed")
	ErrFailedToUpdateKey = errors.New("failed to update key")
	ErrFirstRunFailed    = errors.New("first run enrollment failed")

	// ErrRsmFailed covers terminal I/O failures during interactive prompts.
	ErrRsmFailed = errors.New("terminal input/output failed")
)

// FileResolveError is returned by ResolveInput when a file-backed task body
// cannot be produced. Detail is a human-readable description of what went
// wrong (unreadable file, line out of range, bad range bounds).
type FileResolveError struct {
	Detail string
}

func (e *FileResolveError) Error() string {
	return fmt.Sprintf("failed to resolve file: %s", e.Detail)
}
