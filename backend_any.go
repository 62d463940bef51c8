// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

// backend_any.go is grounded verbatim on original_source/backends/any.c:
// it fails for any non-empty node name or when default-loopback is
// requested, and otherwise emits the two wildcard addresses.

func init() {
	RegisterBackend("any", &Backend{
		SetupForward: anySetupForward,
		Dispatch:     func(Handle, int, Events) {},
		Cleanup:      func(Handle) {},
	})
}

func anySetupForward(h Handle, settings []string) {
	if h.DefaultLoopback() || h.Node() != "" {
		h.Failed()
		return
	}
	h.AddPath(FamilyInet, []byte{0, 0, 0, 0}, 0, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
	h.AddPath(FamilyInet6, make([]byte, 16), 0, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
	h.Finished()
}
