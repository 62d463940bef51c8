// SPDX-License-Identifier: GPL-3.0-or-later

package dnsbackend

import (
	"fmt"
	"strings"

	"github.com/bassosimone/nresolve"
)

// reverseName builds the in-addr.arpa/ip6.arpa query name for address,
// generalizing original_source/backends/dns.c's lookup_reverse (which only
// ever built the IPv4 form) to also cover IPv6 addresses.
func reverseName(family nresolve.Family, address []byte) (string, error) {
	switch family {
	case nresolve.FamilyInet:
		if len(address) != 4 {
			return "", fmt.Errorf("dnsbackend: ipv4 address must be 4 bytes, got %d", len(address))
		}
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa.",
			address[3], address[2], address[1], address[0]), nil
	case nresolve.FamilyInet6:
		if len(address) != 16 {
			return "", fmt.Errorf("dnsbackend: ipv6 address must be 16 bytes, got %d", len(address))
		}
		var b strings.Builder
		for i := len(address) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "%x.%x.", address[i]&0xf, address[i]>>4)
		}
		b.WriteString("ip6.arpa.")
		return b.String(), nil
	default:
		return "", fmt.Errorf("dnsbackend: unsupported address family %s for reverse lookup", family)
	}
}

// srvQName builds the "_service._proto.name" query name for SRV-based
// service discovery, as original_source/backends/dns.c's lookup_srv does.
func srvQName(service string, protocol nresolve.Protocol, node string) string {
	return fmt.Sprintf("_%s._%s.%s", service, protocolToken(protocol), node)
}

func protocolToken(p nresolve.Protocol) string {
	switch p {
	case nresolve.ProtocolTCP:
		return "tcp"
	case nresolve.ProtocolUDP:
		return "udp"
	default:
		return "tcp"
	}
}
