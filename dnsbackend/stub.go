// SPDX-License-Identifier: GPL-3.0-or-later

package dnsbackend

import (
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// defaultResolvConf is read via [dns.ClientConfigFromFile] each time a
// backend activation has no explicit server setting; the stub's own
// equivalent of the original library's linked async resolver picking up
// /etc/resolv.conf for free.
const defaultResolvConf = "/etc/resolv.conf"

// fallbackServer is used when defaultResolvConf is absent or names no
// servers, matching a systemd-resolved stub listener address.
const fallbackServer = "127.0.0.53:53"

// dialServer opens a connected UDP socket to the resolver named by
// settings[0] (host or host:port), or to the system's configured
// resolver when settings is empty.
func dialServer(settings []string) (*net.UDPConn, error) {
	addr := resolverAddr(settings)
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dnsbackend: dial %s: %w", addr, err)
	}
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("dnsbackend: unexpected connection type %T", conn)
	}
	return udpConn, nil
}

func resolverAddr(settings []string) string {
	if len(settings) > 0 && settings[0] != "" {
		if _, _, err := net.SplitHostPort(settings[0]); err == nil {
			return settings[0]
		}
		return net.JoinHostPort(settings[0], "53")
	}
	cfg, err := dns.ClientConfigFromFile(defaultResolvConf)
	if err != nil || len(cfg.Servers) == 0 {
		return fallbackServer
	}
	port := cfg.Port
	if port == "" {
		port = "53"
	}
	return net.JoinHostPort(cfg.Servers[0], port)
}

// connFD extracts the kernel file descriptor backing conn without
// duplicating it, so it can be registered directly with
// [nresolve.Handle.WatchFD] the way original_source/backends/dns.c
// registers libunbound's/c-ares's own fd.
func connFD(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return -1, err
	}
	var fd int
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return -1, err
	}
	return fd, nil
}
