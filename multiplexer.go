// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import "time"

// multiplexer is the engine-internal, host-loop-free event-loop adapter a
// [Context] lazily constructs the first time a query runs without the
// caller having installed [Context.SetEventLoopCallbacks]. It owns a
// single multiplexing descriptor (epoll on Linux; see multiplex_linux.go
// and multiplex_other.go) and provides the synchronous Wait blocking-mode
// primitive described in spec component 4.C.
//
// Timeouts are implemented on top of single-shot timer descriptors
// reconciled into the same descriptor set as regular fds, so a single
// Wait call services both.
//
// The concrete implementation lives in the platform-specific files; this
// file only documents the shared contract.
type multiplexerContract interface {
	WatchFD(fd int, events Events, onReady func(Events)) error
	WatchTimeout(d time.Duration, onFire func()) (int, error)
	DropTimeout(token int)
	Wait(done func() bool) error
	Close() error
}

var _ multiplexerContract = (*multiplexer)(nil)
