// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// familyToken/sockTypeToken/protocolToken render the package's
// domain-independent enums the way the original command-line tool printed
// getaddrinfo's constants: short, lower-case, stable tokens.
func familyToken(f Family) string {
	switch f {
	case FamilyInet:
		return "inet"
	case FamilyInet6:
		return "inet6"
	default:
		return "unspec"
	}
}

func sockTypeToken(s SockType) string {
	switch s {
	case SockTypeStream:
		return "stream"
	case SockTypeDgram:
		return "dgram"
	case SockTypeRaw:
		return "raw"
	default:
		return "any"
	}
}

func protocolToken(p Protocol) string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolUDP:
		return "udp"
	default:
		return "any"
	}
}

// FormatPath renders one [Path] as a single line:
//
//	family address%ifindex socktype protocol port priority weight ttl
//
// %ifindex is omitted when IfIndex is zero, mirroring how the original
// tool only appended a scope id for link-local/interface-bound addresses.
func FormatPath(p Path) string {
	addr := net.IP(p.Address).String()
	if p.IfIndex != 0 {
		addr = fmt.Sprintf("%s%%%d", addr, p.IfIndex)
	}
	return fmt.Sprintf("%s %s %s %s %d %d %d %d",
		familyToken(p.Family), addr, sockTypeToken(p.SockType), protocolToken(p.Protocol),
		p.Port, p.Priority, p.Weight, p.TTL)
}

// FormatResponse renders a completed [Response] as the original command
// line tool rendered netresolve_get_response_string: one line per path,
// a trailing blank line, and (for dns-kind queries) the raw wire answer
// dumped in zone-file-ish form via [*dns.Msg.String].
func FormatResponse(r *Response) (string, error) {
	var b strings.Builder
	if r.Status == StatusFailed {
		if r.Err != nil {
			fmt.Fprintf(&b, "error: %s\n", r.Err.Error())
		} else {
			fmt.Fprintf(&b, "error: query failed\n")
		}
		return b.String(), nil
	}
	if r.Canonical != "" {
		fmt.Fprintf(&b, "canonical: %s\n", r.Canonical)
	}
	if r.Service != "" {
		fmt.Fprintf(&b, "service: %s\n", r.Service)
	}
	for _, p := range r.Paths {
		b.WriteString(FormatPath(p))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if len(r.DNSAnswer) > 0 {
		msg := new(dns.Msg)
		if err := msg.Unpack(r.DNSAnswer); err != nil {
			return "", fmt.Errorf("nresolve: formatting dns answer: %w", err)
		}
		b.WriteString(msg.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}
