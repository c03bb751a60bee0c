package outbound

import (
	"context"
	"errors"
)

var (
	ErrLogNotFound = errors.New("log not found")
	ErrLogRemoved  = errors.New("log storage removed")
	ErrLogClosed   = errors.New("log handle closed")
)

// LogStorage is the persistent line store keyed by storage name
type LogStorage interface {
	// Open opens the named log for appending, creating it when absent.
	// created reports whether the log did not exist before the call.
	Open(ctx context.Context, name string) (handle LogHandle, created bool, err error)

	// ReadLines returns the stored lines of the named log in append order.
	// Returns ErrLogNotFound when nothing is stored under name.
	ReadLines(ctx context.Context, name string) ([]string, error)

	// Exists reports whether anything is stored under name
	Exists(ctx context.Context, name string) (bool, error)
}

// LogHandle is an open, append-only log.
// AppendLine must be durable before it returns and must fail with
// ErrLogRemoved once the underlying storage is gone.
type LogHandle interface {
	AppendLine(ctx context.Context, line string) error
	Delete(ctx context.Context) error
	Close() error
}
