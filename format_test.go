// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPathIPv4(t *testing.T) {
	p := Path{
		Family:   FamilyInet,
		Address:  []byte{93, 184, 216, 34},
		SockType: SockTypeStream,
		Protocol: ProtocolTCP,
		Port:     443,
		Priority: 1,
		Weight:   2,
		TTL:      300,
	}
	assert.Equal(t, "inet 93.184.216.34 stream tcp 443 1 2 300", FormatPath(p))
}

func TestFormatPathWithIfIndex(t *testing.T) {
	p := Path{Family: FamilyInet6, Address: []byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, IfIndex: 3}
	out := FormatPath(p)
	assert.Contains(t, out, "%3")
	assert.Contains(t, out, "inet6")
}

func TestFormatResponseFailed(t *testing.T) {
	r := &Response{Status: StatusFailed, Err: &Error{Kind: KindTimeout, Message: "timed out"}}
	out, err := FormatResponse(r)
	require.NoError(t, err)
	assert.Contains(t, out, "error: nresolve: Timeout: timed out")
}

func TestFormatResponseFailedNoErr(t *testing.T) {
	r := &Response{Status: StatusFailed}
	out, err := FormatResponse(r)
	require.NoError(t, err)
	assert.Contains(t, out, "error: query failed")
}

func TestFormatResponseSuccess(t *testing.T) {
	r := &Response{Status: StatusSuccess, Canonical: "example.com", Service: "https"}
	r.AddAddress(FamilyInet, []byte{1, 2, 3, 4}, 0)
	out, err := FormatResponse(r)
	require.NoError(t, err)
	assert.Contains(t, out, "canonical: example.com")
	assert.Contains(t, out, "service: https")
	assert.Contains(t, out, "inet 1.2.3.4")
}

func TestFormatResponseWithDNSAnswer(t *testing.T) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn("example.com"), dns.TypeA)
	msg.Response = true
	raw, err := msg.Pack()
	require.NoError(t, err)

	r := &Response{Status: StatusSuccess}
	r.SetDNSAnswer(raw)
	out, err := FormatResponse(r)
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
}

func TestFormatResponseBadDNSAnswer(t *testing.T) {
	r := &Response{Status: StatusSuccess, DNSAnswer: []byte{0x01, 0x02}}
	_, err := FormatResponse(r)
	assert.Error(t, err)
}
