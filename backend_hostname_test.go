// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendHostnameMatchesSelf(t *testing.T) {
	self, err := os.Hostname()
	require.NoError(t, err)

	old := LocalAddresses
	LocalAddresses = []Path{{Family: FamilyInet, Address: []byte{10, 0, 0, 1}}}
	defer func() { LocalAddresses = old }()

	ctx, err := NewContext("hostname")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest(self, ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, self, resp.Canonical)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, []byte{10, 0, 0, 1}, resp.Paths[0].Address)
}

func TestBackendHostnameFallsThroughForOtherName(t *testing.T) {
	ctx, err := NewContext("hostname")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("definitely-not-this-host.invalid", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestBackendHostnameFailsForEmptyNode(t *testing.T) {
	ctx, err := NewContext("hostname")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}
