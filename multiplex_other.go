// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package nresolve

import (
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned by the built-in blocking-mode adapter
// on platforms other than Linux, where no epoll equivalent is wired up.
// Callers on such platforms must drive queries through
// [Context.SetEventLoopCallbacks] instead of the bundled default.
var ErrUnsupportedPlatform = errors.New("nresolve: built-in event loop adapter requires linux")

// multiplexer is the non-Linux stub: every operation fails with
// [ErrUnsupportedPlatform].
type multiplexer struct{}

func newMultiplexer() (*multiplexer, error) {
	return nil, ErrUnsupportedPlatform
}

func (m *multiplexer) WatchFD(fd int, events Events, onReady func(Events)) error {
	return ErrUnsupportedPlatform
}

func (m *multiplexer) WatchTimeout(d time.Duration, onFire func()) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (m *multiplexer) DropTimeout(token int) {}

func (m *multiplexer) Wait(done func() bool) error {
	return ErrUnsupportedPlatform
}

func (m *multiplexer) Close() error { return nil }
