// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import "strings"

// SockTypeUnixDomain and ProtocolUnixDomain are the sentinel SockType/
// Protocol values the "unix" backend uses to mark a [Path] as carrying a
// filesystem path (in Address, as raw bytes) rather than a routable
// address. They sit past the routable protocol constants so existing
// comparisons against [SockTypeUnspec]/[ProtocolUnspec] are unaffected.
const (
	SockTypeUnixDomain SockType = 100
	ProtocolUnixDomain Protocol = 100
)

// backend_unix.go recognizes a node name naming a Unix domain socket
// path — a leading '/' or a "unix:" prefix — and emits it as a single
// path whose Address is the raw filesystem path and whose SockType/
// Protocol are the UnixDomain sentinels above. It falls through for any
// other node name, the mechanical first entry of the default chain
// string in original_source/lib/context.c.

func init() {
	RegisterBackend("unix", &Backend{
		SetupForward: unixSetupForward,
		Dispatch:     func(Handle, int, Events) {},
		Cleanup:      func(Handle) {},
	})
}

func unixSetupForward(h Handle, settings []string) {
	node := h.Node()
	path, ok := strings.CutPrefix(node, "unix:")
	if !ok {
		if strings.HasPrefix(node, "/") {
			path = node
		} else {
			h.Failed()
			return
		}
	}
	if path == "" {
		h.Failed()
		return
	}
	h.AddPath(FamilyUnspec, []byte(path), 0, SockTypeUnixDomain, ProtocolUnixDomain, 0, 0, 0, 0)
	h.Finished()
}
