// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"net/netip"
	"strconv"
)

// backend_numerichost.go recognizes a node name that is already a literal
// IPv4/IPv6 address and emits it directly, without touching the network;
// it falls through for anything that doesn't parse as a literal address,
// the same shortcut getaddrinfo's AI_NUMERICHOST takes.

func init() {
	RegisterBackend("numerichost", &Backend{
		SetupForward: numericHostSetupForward,
		Dispatch:     func(Handle, int, Events) {},
		Cleanup:      func(Handle) {},
	})
}

func numericHostSetupForward(h Handle, settings []string) {
	node := h.Node()
	if node == "" {
		h.Failed()
		return
	}
	addr, err := netip.ParseAddr(node)
	if err != nil {
		h.Failed()
		return
	}
	if addr.Is4() {
		if h.Family() == FamilyInet6 {
			h.Failed()
			return
		}
		a := addr.As4()
		h.AddPath(FamilyInet, a[:], 0, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
	} else {
		if h.Family() == FamilyInet {
			h.Failed()
			return
		}
		a := addr.As16()
		ifindex := 0
		if z := addr.Zone(); z != "" {
			if n, err := strconv.Atoi(z); err == nil {
				ifindex = n
			}
		}
		h.AddPath(FamilyInet6, a[:], ifindex, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
	}
	h.Finished()
}
