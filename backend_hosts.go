// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"bufio"
	"net/netip"
	"os"
	"strings"
	"sync"
)

// HostsPath is the /etc/hosts-style file the "hosts" backend consults.
// Tests override it to point at a fixture instead of the real file.
var HostsPath = "/etc/hosts"

// backend_hosts.go is a mechanical static-table backend: it line-parses
// an /etc/hosts-formatted file (address followed by one or more
// whitespace-separated names) and serves forward lookups straight out of
// the parsed table, the same shortcut NSS's "files" source takes ahead of
// any network backend.

func init() {
	RegisterBackend("hosts", &Backend{
		SetupForward: hostsSetupForward,
		Dispatch:     func(Handle, int, Events) {},
		Cleanup:      func(Handle) {},
	})
}

type hostsEntry struct {
	addr  netip.Addr
	names []string
}

var (
	hostsMu    sync.Mutex
	hostsCache []hostsEntry
	hostsFrom  string
)

func loadHostsTable(path string) []hostsEntry {
	hostsMu.Lock()
	defer hostsMu.Unlock()
	if hostsFrom == path && hostsCache != nil {
		return hostsCache
	}
	f, err := os.Open(path)
	if err != nil {
		hostsFrom, hostsCache = path, nil
		return nil
	}
	defer f.Close()
	var out []hostsEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		addr, err := netip.ParseAddr(fields[0])
		if err != nil {
			continue
		}
		out = append(out, hostsEntry{addr: addr, names: fields[1:]})
	}
	hostsFrom, hostsCache = path, out
	return out
}

func hostsSetupForward(h Handle, settings []string) {
	node := h.Node()
	if node == "" {
		h.Failed()
		return
	}
	var matched bool
	for _, entry := range loadHostsTable(HostsPath) {
		for _, name := range entry.names {
			if !strings.EqualFold(name, node) {
				continue
			}
			family := FamilyInet
			if entry.addr.Is6() && !entry.addr.Is4In6() {
				family = FamilyInet6
			}
			if h.Family() != FamilyUnspec && h.Family() != family {
				continue
			}
			matched = true
			if family == FamilyInet6 {
				a := entry.addr.As16()
				h.AddPath(FamilyInet6, a[:], 0, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
			} else {
				a := entry.addr.As4()
				h.AddPath(FamilyInet, a[:], 0, h.SockType(), h.Protocol(), h.Port(), 0, 0, 0)
			}
		}
	}
	if !matched {
		h.Failed()
		return
	}
	h.Finished()
}
