// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsbackend implements the "dns" (chain-string alias "ubdns")
// nresolve backend: a non-blocking stub DNS resolver built directly on
// github.com/miekg/dns's wire types, grounded on
// original_source/backends/dns.c's libunbound/c-ares integration but
// without linking either — it owns one connected UDP socket per query
// and drives it through nresolve.Handle's WatchFD/Dispatch contract the
// same way the original registers its async library's fd.
package dnsbackend

import (
	"net"
	"time"

	"github.com/bassosimone/nresolve"
	"github.com/miekg/dns"
)

func init() {
	nresolve.RegisterBackend("dns", &nresolve.Backend{
		SetupForward: setupForward,
		SetupReverse: setupReverse,
		SetupDNS:     setupDNS,
		Dispatch:     dispatch,
		Cleanup:      cleanup,
	})
}

// queryKind distinguishes the pending queries a single activation may
// have outstanding at once: a plain forward lookup issues at most an A
// and an AAAA query, but an SRV-based lookup can fan out into an A/AAAA
// pair per target, and a reverse lookup issues one PTR query.
type queryKind int

const (
	kindA queryKind = iota
	kindAAAA
	kindSRV
	kindPTR
	kindRaw
)

// pendingQuery is what priv.pending remembers about one outstanding
// query, keyed by its DNS message ID, so the matching response can be
// turned into the right kind of [nresolve.Path].
type pendingQuery struct {
	kind     queryKind
	priority int
	weight   int
	port     int
}

// priv is the private state of one query-backend activation, stored via
// [nresolve.Handle.NewPriv]/GetPriv. It is the Go analogue of
// original_source/backends/dns.c's struct priv_dns, generalized to track
// an arbitrary number of outstanding sub-queries instead of a fixed
// ip4_pkt/ip6_pkt pair, so that SRV lookups can fan out over every target
// instead of only the first (see DESIGN.md).
type priv struct {
	conn *net.UDPConn
	fd   int
	log  *exchangeLog

	family   nresolve.Family
	socktype nresolve.SockType
	protocol nresolve.Protocol

	pending  map[uint16]pendingQuery
	produced bool
}

func newPriv(h nresolve.Handle, settings []string) (*priv, error) {
	conn, err := dialServer(settings)
	if err != nil {
		return nil, err
	}
	fd, err := connFD(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p := &priv{
		conn: conn,
		fd:   fd,
		log: &exchangeLog{
			logger:     h.Logger(),
			errCls:     h.ErrClassifier(),
			localAddr:  conn.LocalAddr().String(),
			remoteAddr: conn.RemoteAddr().String(),
			timeNow:    time.Now,
		},
		family:   h.Family(),
		socktype: h.SockType(),
		protocol: h.Protocol(),
		pending:  map[uint16]pendingQuery{},
	}
	h.NewPriv(p)
	h.WatchFD(fd, nresolve.EventReadable)
	return p, nil
}

// sendQuery packs and writes one query, remembering it in p.pending
// keyed by its message ID so the matching response can be routed.
func (p *priv) sendQuery(name string, qtype uint16, pq pendingQuery) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true
	buf, err := msg.Pack()
	if err != nil {
		return
	}
	if _, err := p.conn.Write(buf); err != nil {
		return
	}
	p.pending[msg.Id] = pq
	p.log.logQuery(name, qtype, msg.Id)
}

// lookupAddr sends A and/or AAAA queries for name, honoring the family
// constraint, tagging each with pq so a fan-out SRV target's
// priority/weight/port survive to path construction.
func (p *priv) lookupAddr(name string, pq pendingQuery) {
	if p.family != nresolve.FamilyInet6 {
		aPQ := pq
		aPQ.kind = kindA
		p.sendQuery(name, dns.TypeA, aPQ)
	}
	if p.family != nresolve.FamilyInet {
		aaaaPQ := pq
		aaaaPQ.kind = kindAAAA
		p.sendQuery(name, dns.TypeAAAA, aaaaPQ)
	}
}

func setupForward(h nresolve.Handle, settings []string) {
	node := h.Node()
	if node == "" {
		h.Failed()
		return
	}
	p, err := newPriv(h, settings)
	if err != nil {
		h.Failed()
		return
	}
	if h.DNSSRVLookup() {
		service := h.Service()
		if service == "" {
			h.Failed()
			return
		}
		p.sendQuery(srvQName(service, h.Protocol(), node), dns.TypeSRV, pendingQuery{kind: kindSRV})
	} else {
		p.lookupAddr(node, pendingQuery{port: h.Port()})
	}
	if len(p.pending) == 0 {
		h.Failed()
	}
}

func setupReverse(h nresolve.Handle, settings []string) {
	family, address, _, _ := h.ReverseAddress()
	name, err := reverseName(family, address)
	if err != nil {
		h.Failed()
		return
	}
	p, err := newPriv(h, settings)
	if err != nil {
		h.Failed()
		return
	}
	p.sendQuery(name, dns.TypePTR, pendingQuery{kind: kindPTR})
	if len(p.pending) == 0 {
		h.Failed()
	}
}

func setupDNS(h nresolve.Handle, settings []string) {
	name, class, typ := h.DNSQuery()
	if name == "" {
		h.Failed()
		return
	}
	p, err := newPriv(h, settings)
	if err != nil {
		h.Failed()
		return
	}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), typ)
	msg.Question[0].Qclass = class
	msg.RecursionDesired = true
	buf, err := msg.Pack()
	if err != nil {
		h.Failed()
		return
	}
	if _, err := p.conn.Write(buf); err != nil {
		h.Failed()
		return
	}
	p.pending[msg.Id] = pendingQuery{kind: kindRaw}
	p.log.logQuery(name, typ, msg.Id)
}

func dispatch(h nresolve.Handle, fd int, events nresolve.Events) {
	p, ok := h.GetPriv().(*priv)
	if !ok || p == nil {
		h.Failed()
		return
	}
	buf := make([]byte, 65535)
	n, err := p.conn.Read(buf)
	if err != nil {
		return
	}
	msg := new(dns.Msg)
	if err := msg.Unpack(buf[:n]); err != nil {
		p.log.logResponse(0, -1, err)
		return
	}
	pq, ok := p.pending[msg.Id]
	if !ok {
		return // stray/duplicate response; ignore
	}
	delete(p.pending, msg.Id)
	p.log.logResponse(msg.Id, msg.Rcode, nil)

	if msg.Rcode == dns.RcodeSuccess {
		p.applyAnswer(h, pq, msg, buf[:n])
	}

	if len(p.pending) == 0 {
		if p.produced {
			h.Finished()
		} else {
			h.Failed()
		}
	}
}

// applyAnswer turns one successfully-rcoded response into Handle output,
// branching on what kind of query it answered.
func (p *priv) applyAnswer(h nresolve.Handle, pq pendingQuery, msg *dns.Msg, raw []byte) {
	switch pq.kind {
	case kindA, kindAAAA:
		for _, rr := range msg.Answer {
			switch rec := rr.(type) {
			case *dns.A:
				h.AddPath(nresolve.FamilyInet, rec.A.To4(), 0, p.socktype, p.protocol,
					pq.port, pq.priority, pq.weight, int(rec.Hdr.Ttl))
				p.produced = true
			case *dns.AAAA:
				h.AddPath(nresolve.FamilyInet6, rec.AAAA.To16(), 0, p.socktype, p.protocol,
					pq.port, pq.priority, pq.weight, int(rec.Hdr.Ttl))
				p.produced = true
			}
		}
	case kindSRV:
		// Iterate every SRV record in the answer, fanning each target out
		// into its own A/AAAA lookup, rather than only the first (the
		// original implementation's documented FIXME).
		for _, rr := range msg.Answer {
			srv, ok := rr.(*dns.SRV)
			if !ok {
				continue
			}
			p.lookupAddr(srv.Target, pendingQuery{
				priority: int(srv.Priority),
				weight:   int(srv.Weight),
				port:     int(srv.Port),
			})
		}
	case kindPTR:
		// Iterate every PTR record rather than only the first; later
		// records take precedence, matching [nresolve.Response.SetNameInfo]'s
		// documented last-write-wins semantics.
		for _, rr := range msg.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				h.SetNameInfo(ptr.Ptr, "")
				p.produced = true
			}
		}
	case kindRaw:
		h.SetDNSAnswer(raw)
		p.produced = true
	}
}

func cleanup(h nresolve.Handle) {
	p, ok := h.GetPriv().(*priv)
	if !ok || p == nil {
		return
	}
	h.WatchFD(p.fd, 0)
	p.conn.Close()
}
