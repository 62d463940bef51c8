// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import "time"

// Events is a bitmask of I/O readiness conditions, passed to
// [Handle.WatchFD] and received by a [DispatchFunc].
type Events int

const (
	// EventReadable means the descriptor is ready for reading.
	EventReadable Events = 1 << iota

	// EventWritable means the descriptor is ready for writing.
	EventWritable
)

// Handle is the query handle a backend uses to read inputs, emit outputs,
// and register I/O interest for exactly one query. It is the Go shape of
// the netresolve_backend_* C function family: the bidirectional boundary
// between the engine and a single backend activation.
//
// A Handle is valid only for the duration of the backend's current
// activation (a [SetupFunc] call, a [DispatchFunc] call, or the
// [CleanupFunc] call that follows). Backends must not retain a Handle
// across activations; [Handle.GetPriv] is how state survives between them.
type Handle interface {
	// --- input getters ---

	// Node returns the forward request's nodename, or "" if absent.
	Node() string

	// Service returns the forward request's service name, or "" if absent.
	Service() string

	// Family returns the request's family constraint.
	Family() Family

	// SockType returns the request's socket type constraint.
	SockType() SockType

	// Protocol returns the request's protocol constraint. For a forward
	// request whose Service named a service rather than a numeric port,
	// this is ProtocolTCP unless the caller constrained it explicitly,
	// matching the resolved protocol carried in Port.
	Protocol() Protocol

	// Port returns the forward request's resolved numeric port (from
	// Service, via [Request]'s service-name resolution), or the reverse
	// request's port. Zero means no port applies (an address-only query).
	Port() int

	// DefaultLoopback returns the forward request's default-loopback flag.
	DefaultLoopback() bool

	// DNSSRVLookup returns the forward request's SRV-lookup flag.
	DNSSRVLookup() bool

	// ReverseAddress returns the reverse request's address, ifindex and port.
	ReverseAddress() (family Family, address []byte, ifindex, port int)

	// DNSQuery returns the dns request's name, class and type.
	DNSQuery() (name string, class, typ uint16)

	// ClampTTL returns the request's TTL upper bound, or 0 if unset.
	ClampTTL() int

	// --- output emitters ---

	// AddPath appends a connectable path to the response.
	AddPath(family Family, address []byte, ifindex int, socktype SockType,
		protocol Protocol, port, priority, weight, ttl int)

	// AddAddress appends an address-only path to the response.
	AddAddress(family Family, address []byte, ifindex int)

	// SetNameInfo sets the canonical name and/or service name.
	SetNameInfo(canonical, service string)

	// SetDNSAnswer stores the raw wire-format DNS answer (dns kind only).
	SetDNSAnswer(raw []byte)

	// Finished declares success; the engine advances past this backend.
	Finished()

	// Failed declares failure; the engine falls through to the next
	// backend unless this one is mandatory or last in the chain.
	Failed()

	// --- tools ---

	// NewPriv stores zero as this query-backend activation's private
	// state and returns it unchanged. The engine clears the stored value
	// to nil right after [CleanupFunc] returns.
	NewPriv(zero any) any

	// GetPriv returns the value most recently stored via NewPriv, or nil.
	GetPriv() any

	// WatchFD registers interest in fd for the given events. events == 0
	// deregisters fd.
	WatchFD(fd int, events Events)

	// WatchTimeout arms a single-shot timeout and returns a token usable
	// with DropTimeout.
	WatchTimeout(d time.Duration) int

	// DropTimeout cancels a timeout armed via WatchTimeout.
	DropTimeout(token int)

	// Logger returns the [SLogger] to use for this query, already
	// annotated with its span ID.
	Logger() SLogger

	// ErrClassifier returns the [ErrClassifier] to use for this query.
	ErrClassifier() ErrClassifier
}
