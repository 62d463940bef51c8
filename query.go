// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"fmt"
	"time"
)

// queryState is the internal state machine driving one [Query] through its
// backend chain (spec component 4.D): new -> running -> waiting-io, looping
// until a backend finishes, fails past recovery, the chain is exhausted, a
// timeout fires, or the query is cancelled -> done.
type queryState int

const (
	queryStateNew queryState = iota
	queryStateRunning
	queryStateWaitingIO
	queryStateDone
)

// Query is one in-flight (or completed) resolution, bound to a [Context]
// and a [Request]. Queries are not safe for concurrent use; the engine
// drives each one from a single goroutine (the caller's, in blocking mode,
// or the host event loop's, in callback mode).
type Query struct {
	ctx    *Context
	req    *Request
	resp   Response
	chain  []*BackendDescriptor
	logger SLogger
	errCls ErrClassifier
	spanID string

	idx   int
	state queryState
	priv  any

	fds      map[int]struct{}
	timeouts map[int]struct{}

	totalToken    int
	hasTotalToken bool

	partialToken    int
	hasPartialToken bool

	// regCount counts WatchFD/WatchTimeout registrations made during the
	// current activation, to detect the zero-registration protocol
	// violation described in spec component 4.D.
	regCount int

	// pathsBefore is len(resp.Paths) as of the start of the current
	// activation, so handleFinished can tell how many paths *this*
	// backend contributed instead of the chain's running total.
	pathsBefore int

	finishedCalled bool
	failedCalled   bool

	detached bool
	done     bool
}

// newQuery constructs a Query bound to ctx for req, snapshotting the
// context's current chain and ambient settings. It does not start running.
func newQuery(ctx *Context, req *Request) *Query {
	q := &Query{
		ctx:      ctx,
		req:      req,
		chain:    ctx.snapshotChain(),
		logger:   ctx.logger,
		errCls:   ctx.errCls,
		spanID:   NewSpanID(),
		idx:      -1,
		state:    queryStateNew,
		fds:      map[int]struct{}{},
		timeouts: map[int]struct{}{},
	}
	q.logger = &spanLogger{inner: q.logger, spanID: q.spanID}
	return q
}

// spanLogger decorates every log line with the query's span ID, so that
// however many backends a query visits, its log lines can be correlated.
type spanLogger struct {
	inner  SLogger
	spanID string
}

var _ SLogger = (*spanLogger)(nil)

func (s *spanLogger) Debug(msg string, args ...any) {
	s.inner.Debug(msg, append([]any{"spanID", s.spanID}, args...)...)
}

func (s *spanLogger) Info(msg string, args ...any) {
	s.inner.Info(msg, append([]any{"spanID", s.spanID}, args...)...)
}

// Response returns the query's (possibly still pending) response. The
// returned pointer is stable for the query's lifetime; its Status field
// tells the caller whether it is safe to read the rest.
func (q *Query) Response() *Response { return &q.resp }

// Done reports whether the query has reached a terminal state.
func (q *Query) Done() bool { return q.state == queryStateDone }

// Detach marks the query so that [Query.Cancel] preserves whatever result
// has accumulated so far instead of overwriting it with a cancellation
// failure. It has no effect once the query is already done.
func (q *Query) Detach() { q.detached = true }

// start transitions the query from new to running and activates the first
// eligible backend. Called exactly once, by [Context.StartQuery].
func (q *Query) start() {
	if q.state != queryStateNew {
		return
	}
	q.state = queryStateRunning
	if q.req.Timeout > 0 {
		if tok, err := q.ctx.registerTimeout(q, q.req.Timeout); err == nil {
			q.totalToken, q.hasTotalToken = tok, true
		}
	}
	q.activateNext()
}

// activateNext advances idx to the next chain entry that services the
// request's kind and runs its SetupFunc, or finalizes the query if the
// chain is exhausted.
func (q *Query) activateNext() {
	for {
		if q.done {
			return
		}
		q.idx++
		if q.idx >= len(q.chain) {
			q.finalize()
			return
		}
		desc := q.chain[q.idx]
		setup := desc.Backend.setupFor(q.req.Kind)
		if setup == nil {
			continue
		}
		q.runActivation(desc, setup)
		if q.done {
			return
		}
		switch {
		case q.finishedCalled:
			if q.handleFinished(desc) {
				return
			}
			// falls through to the next chain entry (zero-path, non-mandatory
			// forward success is treated like failure).
		case q.failedCalled:
			if q.handleFailed(desc) {
				return
			}
		case q.regCount == 0:
			q.logger.Debug("nresolve: protocol violation", "backend", desc.Name)
			if q.handleFailed(desc) {
				return
			}
		default:
			q.state = queryStateWaitingIO
			return
		}
	}
}

// runActivation calls setup for one chain entry, tracking bookkeeping the
// rest of the engine relies on (private state reset, registration count,
// path-count delta).
func (q *Query) runActivation(desc *BackendDescriptor, setup SetupFunc) {
	q.priv = nil
	q.regCount = 0
	q.finishedCalled = false
	q.failedCalled = false
	q.pathsBefore = len(q.resp.Paths)
	h := &queryHandle{q: q}
	setup(h, desc.Settings)
}

// handleFinished processes a successful backend activation. It returns
// true if the query reached a terminal state (the caller must stop
// looping), false if it should continue to the next chain entry.
func (q *Query) handleFinished(desc *BackendDescriptor) bool {
	q.cleanupActivation(desc)
	added := len(q.resp.Paths) - q.pathsBefore
	if q.req.Kind == KindForward && added == 0 && !desc.Mandatory && q.idx+1 < len(q.chain) {
		return false
	}
	if added > 0 && !desc.Mandatory && q.req.PartialTimeout > 0 && q.idx+1 < len(q.chain) {
		if !q.hasPartialToken {
			if tok, err := q.ctx.registerTimeout(q, q.req.PartialTimeout); err == nil {
				q.partialToken, q.hasPartialToken = tok, true
			}
		}
		return false
	}
	q.finalizeSuccess()
	return true
}

// handleFailed processes a failed backend activation. It returns true if
// the query reached a terminal state, false if it should fall through to
// the next chain entry.
func (q *Query) handleFailed(desc *BackendDescriptor) bool {
	q.cleanupActivation(desc)
	if desc.Mandatory {
		q.finalize()
		return true
	}
	return false
}

// cleanupActivation invokes the backend's CleanupFunc and deregisters any
// descriptors/timeouts it left outstanding.
func (q *Query) cleanupActivation(desc *BackendDescriptor) {
	h := &queryHandle{q: q}
	desc.Backend.Cleanup(h)
	for fd := range q.fds {
		_ = q.ctx.registerFD(q, fd, 0)
	}
	q.fds = map[int]struct{}{}
	for tok := range q.timeouts {
		q.ctx.dropTimeout(tok)
	}
	q.timeouts = map[int]struct{}{}
	q.priv = nil
}

// finalize ends the query based on whatever has accumulated in the
// response so far: success if at least one path (or, for reverse/dns
// kinds, a canonical name or answer) was produced, failure otherwise.
func (q *Query) finalize() {
	if len(q.resp.Paths) > 0 || q.resp.Canonical != "" || q.resp.Service != "" || len(q.resp.DNSAnswer) > 0 {
		q.finalizeSuccess()
		return
	}
	q.finalizeFailure(&Error{Kind: KindBackendFailed, Message: "no backend produced a result"})
}

func (q *Query) finalizeSuccess() {
	q.resp.Status = StatusSuccess
	q.resp.Err = nil
	q.terminate()
}

func (q *Query) finalizeFailure(err *Error) {
	q.resp.Status = StatusFailed
	q.resp.Err = err
	q.terminate()
}

// terminate releases every outstanding registration and marks the query
// done. Idempotent.
func (q *Query) terminate() {
	if q.done {
		return
	}
	q.done = true
	q.state = queryStateDone
	for fd := range q.fds {
		_ = q.ctx.registerFD(q, fd, 0)
	}
	q.fds = map[int]struct{}{}
	for tok := range q.timeouts {
		q.ctx.dropTimeout(tok)
	}
	q.timeouts = map[int]struct{}{}
	if q.hasTotalToken {
		q.ctx.dropTimeout(q.totalToken)
		q.hasTotalToken = false
	}
	if q.hasPartialToken {
		q.ctx.dropTimeout(q.partialToken)
		q.hasPartialToken = false
	}
	q.ctx.forgetQuery(q)
}

// onTotalTimeout is invoked by the Context when the query's total timeout
// fires. It force-terminates whatever backend is active and finalizes as
// success if at least one path has accumulated, otherwise as a
// [KindTimeout] failure. Unlike chain exhaustion, a canonical name or DNS
// answer without any path does not count as a result here.
func (q *Query) onTotalTimeout() {
	q.hasTotalToken = false
	if q.done {
		return
	}
	if q.idx >= 0 && q.idx < len(q.chain) {
		h := &queryHandle{q: q}
		q.chain[q.idx].Backend.Cleanup(h)
	}
	if len(q.resp.Paths) > 0 {
		q.finalizeSuccess()
		return
	}
	q.finalizeFailure(&Error{Kind: KindTimeout, Message: "total timeout elapsed"})
}

// onPartialTimeout is invoked when the partial-success grace period
// expires after a non-mandatory backend produced at least one path. It
// always finalizes as success, since by construction paths is non-empty.
func (q *Query) onPartialTimeout() {
	q.hasPartialToken = false
	if q.done {
		return
	}
	if q.idx >= 0 && q.idx < len(q.chain) {
		h := &queryHandle{q: q}
		q.chain[q.idx].Backend.Cleanup(h)
	}
	q.finalizeSuccess()
}

// dispatch is invoked by the Context when a descriptor the active backend
// registered becomes ready.
func (q *Query) dispatch(fd int, events Events) {
	if q.done || q.idx < 0 || q.idx >= len(q.chain) {
		return
	}
	desc := q.chain[q.idx]
	q.finishedCalled = false
	q.failedCalled = false
	h := &queryHandle{q: q}
	desc.Backend.Dispatch(h, fd, events)
	switch {
	case q.finishedCalled:
		if !q.handleFinished(desc) {
			q.activateNext()
		}
	case q.failedCalled:
		if !q.handleFailed(desc) {
			q.activateNext()
		}
	}
}

// Cancel terminates the query immediately, idempotently. Unless the query
// has been [Query.Detach]ed, the response is overwritten with
// [KindCancelled]; a detached query keeps whatever it had accumulated.
func (q *Query) Cancel() {
	if q.done {
		return
	}
	if q.idx >= 0 && q.idx < len(q.chain) {
		h := &queryHandle{q: q}
		q.chain[q.idx].Backend.Cleanup(h)
	}
	if q.detached {
		q.finalize()
		return
	}
	q.resp.Paths = nil
	q.resp.Canonical = ""
	q.resp.Service = ""
	q.resp.DNSAnswer = nil
	q.finalizeFailure(&Error{Kind: KindCancelled, Message: "query cancelled"})
}

// queryHandle implements [Handle], scoped to one query activation. A fresh
// queryHandle is constructed for every SetupFunc/DispatchFunc/CleanupFunc
// call so a backend cannot retain one across activations.
type queryHandle struct {
	q *Query
}

var _ Handle = (*queryHandle)(nil)

func (h *queryHandle) Node() string { return h.q.req.Node }
func (h *queryHandle) Service() string { return h.q.req.Service }
func (h *queryHandle) Family() Family { return h.q.req.Family }
func (h *queryHandle) SockType() SockType { return h.q.req.SockType }
func (h *queryHandle) Protocol() Protocol { return h.q.req.Protocol }
func (h *queryHandle) DefaultLoopback() bool { return h.q.req.DefaultLoopback }
func (h *queryHandle) DNSSRVLookup() bool { return h.q.req.DNSSRVLookup }
func (h *queryHandle) Port() int { return h.q.req.Port }

func (h *queryHandle) ReverseAddress() (Family, []byte, int, int) {
	return h.q.req.Family, h.q.req.Address, h.q.req.IfIndex, h.q.req.Port
}

func (h *queryHandle) DNSQuery() (string, uint16, uint16) {
	return h.q.req.DNSName, h.q.req.DNSClass, h.q.req.DNSType
}

func (h *queryHandle) ClampTTL() int { return h.q.req.ClampTTL }

func (h *queryHandle) AddPath(family Family, address []byte, ifindex int, socktype SockType,
	protocol Protocol, port, priority, weight, ttl int) {
	h.q.resp.AddPath(family, address, ifindex, socktype, protocol, port, priority, weight, ttl, h.q.req.ClampTTL)
}

func (h *queryHandle) AddAddress(family Family, address []byte, ifindex int) {
	h.q.resp.AddAddress(family, address, ifindex)
}

func (h *queryHandle) SetNameInfo(canonical, service string) {
	h.q.resp.SetNameInfo(canonical, service)
}

func (h *queryHandle) SetDNSAnswer(raw []byte) {
	h.q.resp.SetDNSAnswer(raw)
}

func (h *queryHandle) Finished() { h.q.finishedCalled = true }
func (h *queryHandle) Failed()   { h.q.failedCalled = true }

func (h *queryHandle) NewPriv(zero any) any {
	h.q.priv = zero
	return h.q.priv
}

func (h *queryHandle) GetPriv() any { return h.q.priv }

func (h *queryHandle) WatchFD(fd int, events Events) {
	if events == 0 {
		delete(h.q.fds, fd)
		_ = h.q.ctx.registerFD(h.q, fd, 0)
		return
	}
	if _, ok := h.q.fds[fd]; !ok {
		h.q.regCount++
	}
	h.q.fds[fd] = struct{}{}
	if err := h.q.ctx.registerFD(h.q, fd, events); err != nil {
		h.q.logger.Debug("nresolve: WatchFD failed", "error", err.Error())
	}
}

func (h *queryHandle) WatchTimeout(d time.Duration) int {
	tok, err := h.q.ctx.registerTimeout(h.q, d)
	if err != nil {
		h.q.logger.Debug("nresolve: WatchTimeout failed", "error", err.Error())
		return -1
	}
	h.q.regCount++
	h.q.timeouts[tok] = struct{}{}
	return tok
}

func (h *queryHandle) DropTimeout(token int) {
	delete(h.q.timeouts, token)
	h.q.ctx.dropTimeout(token)
}

func (h *queryHandle) Logger() SLogger { return h.q.logger }

func (h *queryHandle) ErrClassifier() ErrClassifier { return h.q.errCls }

// validateRequest is called before a query starts, surfacing malformed
// inputs as an immediate [KindInputInvalid] failure rather than letting a
// backend trip over them.
func validateRequest(req *Request) error {
	switch req.Kind {
	case KindReverse:
		switch len(req.Address) {
		case 4:
			if req.Family != FamilyInet {
				return fmt.Errorf("address length 4 does not match family %s", req.Family)
			}
		case 16:
			if req.Family != FamilyInet6 {
				return fmt.Errorf("address length 16 does not match family %s", req.Family)
			}
		default:
			return fmt.Errorf("reverse address must be 4 or 16 bytes, got %d", len(req.Address))
		}
	case KindDNS:
		if req.DNSName == "" {
			return fmt.Errorf("dns request requires a name")
		}
	}
	return nil
}
