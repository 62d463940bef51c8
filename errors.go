// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import "fmt"

// ErrorKind classifies why a query terminated in [StatusFailed].
type ErrorKind int

const (
	// KindInputInvalid means the request fields were inconsistent (e.g. an
	// address whose length doesn't match its family).
	KindInputInvalid ErrorKind = iota

	// KindBackendUnavailable means a backend name in the chain string could
	// not be resolved to a registered [Backend], or it lacks a setup
	// function for the request's [Kind] of query.
	KindBackendUnavailable

	// KindBackendFailed means a backend reported failure (or committed the
	// "zero registrations, no finished/failed" protocol violation) and no
	// further chain entry could recover the query.
	KindBackendFailed

	// KindTimeout means the total or partial deadline elapsed.
	KindTimeout

	// KindWireFormat means a wire-format parser rejected an upstream answer.
	KindWireFormat

	// KindCancelled means the query was terminated externally via
	// [Query.Cancel] or [Context.Close].
	KindCancelled
)

// String returns a human-readable name for k.
func (k ErrorKind) String() string {
	switch k {
	case KindInputInvalid:
		return "InputInvalid"
	case KindBackendUnavailable:
		return "BackendUnavailable"
	case KindBackendFailed:
		return "BackendFailed"
	case KindTimeout:
		return "Timeout"
	case KindWireFormat:
		return "WireFormat"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the terminal failure detail of a [Response] whose Status is
// [StatusFailed]. It carries the [ErrorKind] of the last-attempted backend and
// a human-readable message; the engine never aggregates error detail from
// earlier, recovered-by-fallthrough backends.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Backend is the name of the backend that produced this failure, or
	// empty for engine-level failures (e.g. [KindInputInvalid]).
	Backend string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("nresolve: %s: %s: %s", e.Kind, e.Backend, e.Message)
	}
	return fmt.Sprintf("nresolve: %s: %s", e.Kind, e.Message)
}
