// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Kind identifies which of the three query shapes a [Request] describes.
type Kind int

const (
	// KindForward resolves a nodename/service pair into connectable [Path]s.
	KindForward Kind = iota

	// KindReverse resolves an address into a canonical name.
	KindReverse

	// KindDNS issues a raw class/type query and returns the wire answer.
	KindDNS
)

// String returns a human-readable name for k.
func (k Kind) String() string {
	switch k {
	case KindForward:
		return "forward"
	case KindReverse:
		return "reverse"
	case KindDNS:
		return "dns"
	default:
		return "unknown"
	}
}

// Family is an address family, independent of the host's socket constants.
type Family int

const (
	// FamilyUnspec means the caller accepts either IPv4 or IPv6.
	FamilyUnspec Family = iota

	// FamilyInet is IPv4.
	FamilyInet

	// FamilyInet6 is IPv6.
	FamilyInet6
)

// String returns a human-readable name for f.
func (f Family) String() string {
	switch f {
	case FamilyUnspec:
		return "unspec"
	case FamilyInet:
		return "inet"
	case FamilyInet6:
		return "inet6"
	default:
		return "unknown"
	}
}

// SockType is a socket type, independent of the host's socket constants.
type SockType int

const (
	// SockTypeUnspec means the caller did not constrain the socket type.
	SockTypeUnspec SockType = iota

	// SockTypeStream is a connection-oriented byte stream (e.g. TCP).
	SockTypeStream

	// SockTypeDgram is a connectionless datagram socket (e.g. UDP).
	SockTypeDgram

	// SockTypeRaw is a raw socket.
	SockTypeRaw
)

// Protocol is a transport protocol, independent of the host's IPPROTO constants.
type Protocol int

const (
	// ProtocolUnspec means the caller did not constrain the protocol.
	ProtocolUnspec Protocol = iota

	// ProtocolTCP is the Transmission Control Protocol.
	ProtocolTCP

	// ProtocolUDP is the User Datagram Protocol.
	ProtocolUDP
)

// Request holds the immutable inputs of one query.
//
// Construct with [NewForwardRequest], [NewReverseRequest], or
// [NewDNSRequest]. Fields not relevant to Kind are left at their zero value.
type Request struct {
	// Kind selects which fields below are meaningful.
	Kind Kind

	// --- forward ---

	// Node is the optional hostname or literal address to resolve.
	Node string

	// Service is the optional service name or numeric port.
	Service string

	// DNSSRVLookup requests SRV-based service discovery instead of a plain
	// A/AAAA lookup for the forward kind.
	DNSSRVLookup bool

	// DefaultLoopback asks backends that honor it (loopback, any) to treat
	// an empty Node as a request for the loopback addresses rather than
	// the wildcard addresses.
	DefaultLoopback bool

	// --- reverse ---

	// Address is the 4- or 16-byte address to resolve, reverse kind only.
	Address []byte

	// IfIndex is the interface index associated with Address, reverse kind only.
	IfIndex int

	// --- dns ---

	// DNSName is the domain name to query, dns kind only.
	DNSName string

	// DNSClass is the DNS query class (e.g. 1 for IN), dns kind only.
	DNSClass uint16

	// DNSType is the DNS record type (e.g. 15 for MX), dns kind only.
	DNSType uint16

	// --- common ---

	// Family restricts which address families are acceptable.
	Family Family

	// SockType restricts the socket type of emitted paths.
	SockType SockType

	// Protocol restricts the transport protocol of emitted paths.
	Protocol Protocol

	// Port is the numeric port. For reverse requests it is set directly by
	// the caller; for forward requests it starts at zero and is filled in
	// by [resolveServicePort] from Service before the query runs (dns kind
	// has no port).
	Port int

	// Timeout bounds the whole query, across every backend it visits.
	Timeout time.Duration

	// PartialTimeout bounds how long the engine waits for additional
	// backends after the first backend to report success with paths.
	PartialTimeout time.Duration

	// ClampTTL upper-bounds TTLs emitted into the response. Zero/negative
	// disables clamping. When left at zero, [NewContext]'s default from
	// NETRESOLVE_CLAMP_TTL is applied.
	ClampTTL int
}

// NewForwardRequest creates a forward [Request] for node/service.
func NewForwardRequest(node, service string) *Request {
	return &Request{
		Kind:    KindForward,
		Node:    node,
		Service: service,
	}
}

// NewReverseRequest creates a reverse [Request] for the given address.
//
// address must be 4 bytes (IPv4) or 16 bytes (IPv6); family is derived from
// its length.
func NewReverseRequest(address []byte, ifindex, port int) *Request {
	family := FamilyInet
	if len(address) == 16 {
		family = FamilyInet6
	}
	addr := make([]byte, len(address))
	copy(addr, address)
	return &Request{
		Kind:    KindReverse,
		Address: addr,
		IfIndex: ifindex,
		Port:    port,
		Family:  family,
	}
}

// NewDNSRequest creates a raw DNS [Request] for name/class/type.
func NewDNSRequest(name string, class, typ uint16) *Request {
	return &Request{
		Kind:     KindDNS,
		DNSName:  name,
		DNSClass: class,
		DNSType:  typ,
	}
}

// resolveServicePort resolves a forward request's Service into req.Port,
// the Go analogue of the original library's getservbyname-driven servname
// handling: a purely numeric Service ("80") parses directly, anything
// else goes through the host's service database. A servname that
// resolves successfully while Protocol is still unconstrained also pins
// Protocol to ProtocolTCP, since the resolved port is otherwise
// unobservable in the emitted [Path]'s protocol field.
func resolveServicePort(req *Request) error {
	if req.Kind != KindForward || req.Service == "" {
		return nil
	}
	if port, err := strconv.Atoi(req.Service); err == nil {
		req.Port = port
		return nil
	}
	network := "tcp"
	if req.Protocol == ProtocolUDP {
		network = "udp"
	}
	port, err := net.LookupPort(network, req.Service)
	if err != nil {
		return fmt.Errorf("nresolve: unknown service %q: %w", req.Service, err)
	}
	req.Port = port
	if req.Protocol == ProtocolUnspec {
		req.Protocol = ProtocolTCP
	}
	return nil
}
