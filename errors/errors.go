// Package errors re-exports github.com/cockroachdb/errors so the rest of
// flowviz gets stack traces, wrapping and user hints from one import.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
)

// User-facing messages
var (
	WithHint     = crdb.WithHint
	FlattenHints = crdb.FlattenHints
)

// Inspection
var (
	Is = crdb.Is
	As = crdb.As
)

// ErrInvalidConfig marks configuration that cannot be used to start a command.
var ErrInvalidConfig = New("invalid configuration")

// WrapInvalidConfig wraps msg as an ErrInvalidConfig so callers can match it with Is.
func WrapInvalidConfig(msg string) error {
	return Wrap(ErrInvalidConfig, msg)
}
