// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux

package nresolve

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// multiplexer is the Linux epoll-backed implementation of
// [multiplexerContract]. It owns exactly one epoll_create1 descriptor for
// both fd readiness and timerfd-based timeouts, mirroring the original
// library's single context->epoll.fd.
type multiplexer struct {
	epfd int

	mu     sync.Mutex
	ready  map[int]func(Events)
	timers map[int]func()
}

func newMultiplexer() (*multiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("nresolve: epoll_create1: %w", err)
	}
	return &multiplexer{
		epfd:   epfd,
		ready:  map[int]func(Events){},
		timers: map[int]func(){},
	}, nil
}

func eventsToEpoll(e Events) uint32 {
	var out uint32
	if e&EventReadable != 0 {
		out |= unix.EPOLLIN
	}
	if e&EventWritable != 0 {
		out |= unix.EPOLLOUT
	}
	return out
}

// WatchFD implements [multiplexerContract].
func (m *multiplexer) WatchFD(fd int, events Events, onReady func(Events)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, registered := m.ready[fd]
	if events == 0 {
		if registered {
			delete(m.ready, fd)
			_ = unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		}
		return nil
	}
	ev := &unix.EpollEvent{Events: eventsToEpoll(events), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if registered {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(m.epfd, op, fd, ev); err != nil {
		return fmt.Errorf("nresolve: epoll_ctl: %w", err)
	}
	m.ready[fd] = onReady
	return nil
}

// WatchTimeout implements [multiplexerContract] on top of a dedicated
// CLOCK_MONOTONIC timerfd, registered into the same epoll set as regular
// descriptors so a single Wait loop services both.
func (m *multiplexer) WatchTimeout(d time.Duration, onFire func()) (int, error) {
	tfd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return 0, fmt.Errorf("nresolve: timerfd_create: %w", err)
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(d.Nanoseconds())}
	if spec.Value.Sec == 0 && spec.Value.Nsec == 0 {
		// timerfd_settime treats an all-zero value as "disarm"; nudge a
		// non-positive duration up to the smallest representable interval.
		spec.Value.Nsec = 1
	}
	if err := unix.TimerfdSettime(tfd, 0, &spec, nil); err != nil {
		_ = unix.Close(tfd)
		return 0, fmt.Errorf("nresolve: timerfd_settime: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(tfd)}
	if err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, tfd, ev); err != nil {
		_ = unix.Close(tfd)
		return 0, fmt.Errorf("nresolve: epoll_ctl: %w", err)
	}
	m.timers[tfd] = onFire
	return tfd, nil
}

// DropTimeout implements [multiplexerContract].
func (m *multiplexer) DropTimeout(token int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timers[token]; !ok {
		return
	}
	delete(m.timers, token)
	_ = unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, token, nil)
	_ = unix.Close(token)
}

// Wait implements [multiplexerContract], blocking in epoll_wait until done
// reports true, dispatching ready fds and fired timeouts as they arrive.
func (m *multiplexer) Wait(done func() bool) error {
	events := make([]unix.EpollEvent, 32)
	for !done() {
		n, err := unix.EpollWait(m.epfd, events, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("nresolve: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			m.mu.Lock()
			if onFire, ok := m.timers[fd]; ok {
				m.mu.Unlock()
				var buf [8]byte
				_, _ = unix.Read(fd, buf[:])
				onFire()
				continue
			}
			onReady, ok := m.ready[fd]
			m.mu.Unlock()
			if !ok {
				continue
			}
			var e Events
			if events[i].Events&unix.EPOLLIN != 0 {
				e |= EventReadable
			}
			if events[i].Events&unix.EPOLLOUT != 0 {
				e |= EventWritable
			}
			onReady(e)
		}
	}
	return nil
}

// Close implements [multiplexerContract].
func (m *multiplexer) Close() error {
	m.mu.Lock()
	for fd := range m.timers {
		_ = unix.Close(fd)
	}
	m.timers = nil
	m.mu.Unlock()
	return unix.Close(m.epfd)
}
