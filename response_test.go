// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseAddPath(t *testing.T) {
	var r Response
	r.AddPath(FamilyInet, []byte{1, 2, 3, 4}, 0, SockTypeStream, ProtocolTCP, 443, 10, 20, 300, 0)
	require.Len(t, r.Paths, 1)
	p := r.Paths[0]
	assert.Equal(t, FamilyInet, p.Family)
	assert.Equal(t, 443, p.Port)
	assert.Equal(t, 10, p.Priority)
	assert.Equal(t, 20, p.Weight)
	assert.Equal(t, 300, p.TTL)
}

func TestResponseAddPathClampsTTL(t *testing.T) {
	var r Response
	r.AddPath(FamilyInet, []byte{1, 2, 3, 4}, 0, SockTypeUnspec, ProtocolUnspec, 0, 0, 0, 600, 60)
	require.Len(t, r.Paths, 1)
	assert.Equal(t, 60, r.Paths[0].TTL)
}

func TestResponseAddPathDoesNotAliasAddress(t *testing.T) {
	var r Response
	addr := []byte{1, 2, 3, 4}
	r.AddPath(FamilyInet, addr, 0, SockTypeUnspec, ProtocolUnspec, 0, 0, 0, 0, 0)
	addr[0] = 99
	assert.EqualValues(t, 1, r.Paths[0].Address[0])
}

func TestResponseAddAddress(t *testing.T) {
	var r Response
	r.AddAddress(FamilyInet6, make([]byte, 16), 3)
	require.Len(t, r.Paths, 1)
	assert.Equal(t, SockTypeUnspec, r.Paths[0].SockType)
	assert.Equal(t, ProtocolUnspec, r.Paths[0].Protocol)
	assert.Equal(t, 3, r.Paths[0].IfIndex)
}

func TestResponseSetNameInfo(t *testing.T) {
	var r Response
	r.SetNameInfo("host.example.com", "https")
	assert.Equal(t, "host.example.com", r.Canonical)
	assert.Equal(t, "https", r.Service)

	// Empty arguments leave the existing values untouched.
	r.SetNameInfo("", "")
	assert.Equal(t, "host.example.com", r.Canonical)
	assert.Equal(t, "https", r.Service)

	// A second call replaces the previous value.
	r.SetNameInfo("other.example.com", "")
	assert.Equal(t, "other.example.com", r.Canonical)
}

func TestResponseSetDNSAnswer(t *testing.T) {
	var r Response
	raw := []byte{1, 2, 3}
	r.SetDNSAnswer(raw)
	raw[0] = 99
	assert.EqualValues(t, 1, r.DNSAnswer[0])
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(99).String())
}
