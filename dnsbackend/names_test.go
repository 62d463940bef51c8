// SPDX-License-Identifier: GPL-3.0-or-later

package dnsbackend

import (
	"testing"

	"github.com/bassosimone/nresolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseNameIPv4(t *testing.T) {
	name, err := reverseName(nresolve.FamilyInet, []byte{192, 0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "1.2.0.192.in-addr.arpa.", name)
}

func TestReverseNameIPv4WrongLength(t *testing.T) {
	_, err := reverseName(nresolve.FamilyInet, []byte{192, 0, 2})
	assert.Error(t, err)
}

func TestReverseNameIPv6(t *testing.T) {
	addr := make([]byte, 16)
	addr[15] = 1 // ::1
	name, err := reverseName(nresolve.FamilyInet6, addr)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.ip6.arpa.", name)
}

func TestReverseNameIPv6WrongLength(t *testing.T) {
	_, err := reverseName(nresolve.FamilyInet6, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestReverseNameUnsupportedFamily(t *testing.T) {
	_, err := reverseName(nresolve.FamilyUnspec, []byte{1, 2, 3, 4})
	assert.Error(t, err)
}

func TestSRVQName(t *testing.T) {
	name := srvQName("sip", nresolve.ProtocolUDP, "example.com")
	assert.Equal(t, "_sip._udp.example.com", name)
}

func TestProtocolToken(t *testing.T) {
	assert.Equal(t, "tcp", protocolToken(nresolve.ProtocolTCP))
	assert.Equal(t, "udp", protocolToken(nresolve.ProtocolUDP))
	assert.Equal(t, "tcp", protocolToken(nresolve.ProtocolUnspec))
}
