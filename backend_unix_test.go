// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendUnixSlashPrefix(t *testing.T) {
	ctx, err := NewContext("unix")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("/run/app.sock", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, "/run/app.sock", string(resp.Paths[0].Address))
	assert.Equal(t, SockTypeUnixDomain, resp.Paths[0].SockType)
	assert.Equal(t, ProtocolUnixDomain, resp.Paths[0].Protocol)
}

func TestBackendUnixSchemePrefix(t *testing.T) {
	ctx, err := NewContext("unix")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("unix:/run/app.sock", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, "/run/app.sock", string(resp.Paths[0].Address))
}

func TestBackendUnixFallsThroughForOrdinaryName(t *testing.T) {
	ctx, err := NewContext("unix")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestBackendUnixFailsForEmptyPath(t *testing.T) {
	ctx, err := NewContext("unix")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("unix:", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}
