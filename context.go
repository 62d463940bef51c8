// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"fmt"
	"sync"
	"time"
)

// Context owns a backend chain and the ambient settings every [Query]
// created from it inherits: logger, error classifier, default request
// option overrides, and either a host-supplied event loop or the built-in
// blocking-mode adapter. It is the Go shape of the original library's
// netresolve_context.
//
// A Context is safe for concurrent use; queries it creates are not.
type Context struct {
	mu sync.Mutex

	chain []*BackendDescriptor

	logger SLogger
	errCls ErrClassifier

	defaultFamily   Family
	defaultLoopback bool
	clampTTL        int
	timeout         time.Duration
	partialTimeout  time.Duration

	hostWatchFD      func(fd int, events Events)
	hostWatchTimeout func(d time.Duration) int
	hostDropTimeout  func(token int)

	mux *multiplexer

	fdQueries      map[int]*Query
	timeoutQueries map[int]*Query
	liveQueries    map[*Query]struct{}

	userData     any
	userDataFree func(any)

	closed bool
}

// NewContext creates a Context from a comma-separated backend chain
// string (see [ParseChainString]), applying the one-shot environment
// overrides described in [Request] and the package documentation.
func NewContext(chainString string) (*Context, error) {
	chain, err := ParseChainString(chainString)
	if err != nil {
		return nil, err
	}
	env := loadEnv()
	c := &Context{
		chain:           chain,
		logger:          env.logger(),
		errCls:          DefaultErrClassifier,
		defaultLoopback: env.defaultLoopback,
		clampTTL:        env.clampTTL,
		timeout:         env.timeout,
		partialTimeout:  env.partialTimeout,
		fdQueries:       map[int]*Query{},
		timeoutQueries:  map[int]*Query{},
		liveQueries:     map[*Query]struct{}{},
	}
	if env.hasForceFamily {
		c.defaultFamily = env.forceFamily
	}
	return c, nil
}

// DefaultContext creates a Context using [DefaultChainString].
func DefaultContext() (*Context, error) {
	return NewContext(DefaultChainString)
}

// SetLogger installs l as the context's [SLogger]. Queries created after
// this call pick it up; queries already running keep their own reference.
func (c *Context) SetLogger(l SLogger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// SetErrClassifier installs cls as the context's [ErrClassifier].
func (c *Context) SetErrClassifier(cls ErrClassifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errCls = cls
}

// SetUserData attaches an opaque value to the context, freed by free (if
// non-nil) when [Context.Close] runs. This is the Go analogue of the
// original library's netresolve_set_user_data/netresolve_set_free_func.
func (c *Context) SetUserData(data any, free func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userData = data
	c.userDataFree = free
}

// UserData returns the value attached via [Context.SetUserData].
func (c *Context) UserData() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userData
}

// SetEventLoopCallbacks installs host-supplied event-loop hooks, switching
// the context out of its built-in blocking-mode adapter. The host must
// call [Context.DispatchFD]/[Context.DispatchTimeout] from its own loop
// whenever a registered descriptor or timeout fires; watchTimeout must
// return a token unique among currently-armed timeouts.
//
// Calling this on a context that has already started a query is not
// supported. Passing all-nil arguments reverts to the built-in adapter.
func (c *Context) SetEventLoopCallbacks(watchFD func(fd int, events Events),
	watchTimeout func(d time.Duration) int, dropTimeout func(token int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostWatchFD, c.hostWatchTimeout, c.hostDropTimeout = watchFD, watchTimeout, dropTimeout
}

// snapshotChain returns a copy of the chain slice header; entries
// themselves are treated as immutable for the query's lifetime.
func (c *Context) snapshotChain() []*BackendDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*BackendDescriptor, len(c.chain))
	copy(out, c.chain)
	return out
}

// applyDefaults fills in zero-valued request options from the context's
// ambient defaults, without overriding fields the caller explicitly set.
func (c *Context) applyDefaults(req *Request) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *req
	if out.Family == FamilyUnspec {
		out.Family = c.defaultFamily
	}
	if !out.DefaultLoopback {
		out.DefaultLoopback = c.defaultLoopback
	}
	if out.ClampTTL == 0 {
		out.ClampTTL = c.clampTTL
	}
	if out.Timeout == 0 {
		out.Timeout = c.timeout
	}
	if out.PartialTimeout == 0 {
		out.PartialTimeout = c.partialTimeout
	}
	return &out
}

// ensureMux lazily constructs the built-in blocking-mode adapter. Callers
// must hold c.mu.
func (c *Context) ensureMux() error {
	if c.mux != nil {
		return nil
	}
	mux, err := newMultiplexer()
	if err != nil {
		return err
	}
	c.mux = mux
	return nil
}

// registerFD routes a backend's WatchFD call either to the host callbacks
// or to the built-in adapter, and records fd's owning query for dispatch.
func (c *Context) registerFD(q *Query, fd int, events Events) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if events == 0 {
		delete(c.fdQueries, fd)
		if c.hostWatchFD != nil {
			c.hostWatchFD(fd, 0)
			return nil
		}
		if c.mux != nil {
			return c.mux.WatchFD(fd, 0, nil)
		}
		return nil
	}
	c.fdQueries[fd] = q
	if c.hostWatchFD != nil {
		c.hostWatchFD(fd, events)
		return nil
	}
	if err := c.ensureMux(); err != nil {
		return err
	}
	return c.mux.WatchFD(fd, events, func(ev Events) { c.DispatchFD(fd, ev) })
}

// registerTimeout arms a timeout either via the host callbacks or the
// built-in adapter, and records the returned token's owning query.
func (c *Context) registerTimeout(q *Query, d time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hostWatchTimeout != nil {
		tok := c.hostWatchTimeout(d)
		c.timeoutQueries[tok] = q
		return tok, nil
	}
	if err := c.ensureMux(); err != nil {
		return 0, err
	}
	var tok int
	got, err := c.mux.WatchTimeout(d, func() { c.DispatchTimeout(tok) })
	if err != nil {
		return 0, err
	}
	tok = got
	c.timeoutQueries[tok] = q
	return tok, nil
}

// dropTimeout cancels a timeout armed via registerTimeout.
func (c *Context) dropTimeout(token int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timeoutQueries, token)
	if c.hostDropTimeout != nil {
		c.hostDropTimeout(token)
		return
	}
	if c.mux != nil {
		c.mux.DropTimeout(token)
	}
}

// DispatchFD hands a ready descriptor event to the query that registered
// it. Hosts using [Context.SetEventLoopCallbacks] must call this from
// their own loop; it is a no-op if fd is not currently registered.
func (c *Context) DispatchFD(fd int, events Events) {
	c.mu.Lock()
	q := c.fdQueries[fd]
	c.mu.Unlock()
	if q != nil {
		q.dispatch(fd, events)
	}
}

// DispatchTimeout hands a fired timeout to its owning query. Hosts using
// [Context.SetEventLoopCallbacks] must call this from their own loop.
func (c *Context) DispatchTimeout(token int) {
	c.mu.Lock()
	q := c.timeoutQueries[token]
	delete(c.timeoutQueries, token)
	c.mu.Unlock()
	if q == nil {
		return
	}
	switch {
	case q.hasTotalToken && token == q.totalToken:
		q.onTotalTimeout()
	case q.hasPartialToken && token == q.partialToken:
		q.onPartialTimeout()
	}
}

// forgetQuery drops q from the set of live queries tracked for
// [Context.Close].
func (c *Context) forgetQuery(q *Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.liveQueries, q)
}

// StartQuery creates and starts a query for req without blocking. Use
// this together with [Context.SetEventLoopCallbacks] and
// [Context.DispatchFD]/[Context.DispatchTimeout]; poll [Query.Done] or
// have the host loop notice completion by other means.
func (c *Context) StartQuery(req *Request) (*Query, error) {
	if err := validateRequest(req); err != nil {
		return nil, &Error{Kind: KindInputInvalid, Message: err.Error()}
	}
	full := c.applyDefaults(req)
	if err := resolveServicePort(full); err != nil {
		return nil, &Error{Kind: KindInputInvalid, Message: err.Error()}
	}
	q := newQuery(c, full)
	c.mu.Lock()
	c.liveQueries[q] = struct{}{}
	c.mu.Unlock()
	q.start()
	return q, nil
}

// Query runs req to completion and returns its response. It requires no
// host event loop: when no callbacks are installed via
// [Context.SetEventLoopCallbacks], it drives the built-in blocking-mode
// adapter itself.
func (c *Context) Query(req *Request) (*Response, error) {
	q, err := c.StartQuery(req)
	if err != nil {
		return nil, err
	}
	if q.Done() {
		return &q.resp, nil
	}
	c.mu.Lock()
	hosted := c.hostWatchFD != nil
	mux := c.mux
	c.mu.Unlock()
	if hosted {
		return nil, fmt.Errorf("nresolve: Context.Query cannot block with host event loop callbacks installed; drive the query via Context.StartQuery instead")
	}
	if mux == nil {
		c.mu.Lock()
		err := c.ensureMux()
		mux = c.mux
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	if err := mux.Wait(q.Done); err != nil {
		return nil, err
	}
	return &q.resp, nil
}

// Close cancels every query still running on the context, tears down the
// built-in adapter if one was created, and invokes the user-data free
// function installed via [Context.SetUserData].
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	live := make([]*Query, 0, len(c.liveQueries))
	for q := range c.liveQueries {
		live = append(live, q)
	}
	mux := c.mux
	freeFn, data := c.userDataFree, c.userData
	c.mu.Unlock()

	for _, q := range live {
		q.Cancel()
	}
	var err error
	if mux != nil {
		err = mux.Close()
	}
	if freeFn != nil {
		freeFn(data)
	}
	return err
}
