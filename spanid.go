package nresolve

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a single query as it moves through the backend chain: a
// forward lookup, a reverse lookup, or a raw DNS query. [Context] attaches
// a fresh span ID to each [Query] it creates and threads it through the
// query's logger, so every log line emitted while that query is active —
// across however many backends it visits — can be correlated by spanID.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
