// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

// Status is the terminal state of a [Response].
type Status int

const (
	// StatusPending means the query has not yet terminated.
	StatusPending Status = iota

	// StatusSuccess means the query terminated with a usable result.
	StatusSuccess

	// StatusFailed means the query terminated without a usable result.
	StatusFailed
)

// String returns a human-readable name for s.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Path is one connectable endpoint emitted by a backend.
type Path struct {
	// Family is the address family of Address.
	Family Family

	// Address is the 4- or 16-byte raw address; for paths emitted by the
	// "unix" backend it holds a filesystem path instead (see
	// [SockTypeUnixDomain]).
	Address []byte

	// IfIndex is the interface index, or zero if not applicable.
	IfIndex int

	// SockType is the socket type, or [SockTypeUnspec] for address-only paths.
	SockType SockType

	// Protocol is the transport protocol, or [ProtocolUnspec] for address-only paths.
	Protocol Protocol

	// Port is the port number, or zero for address-only paths.
	Port int

	// Priority is the SRV priority, zero when not applicable.
	Priority int

	// Weight is the SRV weight, zero when not applicable.
	Weight int

	// TTL is the resource record TTL in seconds, clamped per [Request.ClampTTL].
	TTL int
}

// Response accumulates the output of one query.
//
// A Response is mutable only while its owning [Query] is running; once
// Status leaves [StatusPending] it must not be mutated further.
type Response struct {
	// Canonical is the canonical name, if any backend set one. Setting it
	// twice is permitted; the later value replaces the earlier one.
	Canonical string

	// Service is the resolved service name, if any backend set one.
	Service string

	// Paths is the ordered list of connectable endpoints, in backend
	// emission order; the engine never reorders or deduplicates them.
	Paths []Path

	// DNSAnswer is the raw wire-format answer, dns-kind queries only.
	DNSAnswer []byte

	// Status is the terminal state, [StatusPending] while the query runs.
	Status Status

	// Err carries the failure detail when Status is [StatusFailed].
	Err *Error
}

// AddPath appends a path to the response. clampTTL, when positive, upper-bounds ttl.
func (r *Response) AddPath(family Family, address []byte, ifindex int, socktype SockType,
	protocol Protocol, port, priority, weight, ttl, clampTTL int) {
	if clampTTL > 0 && ttl > clampTTL {
		ttl = clampTTL
	}
	addr := make([]byte, len(address))
	copy(addr, address)
	r.Paths = append(r.Paths, Path{
		Family:   family,
		Address:  addr,
		IfIndex:  ifindex,
		SockType: socktype,
		Protocol: protocol,
		Port:     port,
		Priority: priority,
		Weight:   weight,
		TTL:      ttl,
	})
}

// AddAddress appends an address-only path (no socktype/protocol/port/priority/weight).
func (r *Response) AddAddress(family Family, address []byte, ifindex int) {
	r.AddPath(family, address, ifindex, SockTypeUnspec, ProtocolUnspec, 0, 0, 0, 0, 0)
}

// SetNameInfo sets the canonical name and/or service name. Either argument
// may be empty to leave that field untouched.
func (r *Response) SetNameInfo(canonical, service string) {
	if canonical != "" {
		r.Canonical = canonical
	}
	if service != "" {
		r.Service = service
	}
}

// SetDNSAnswer stores the raw wire-format DNS answer.
func (r *Response) SetDNSAnswer(raw []byte) {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	r.DNSAnswer = buf
}
