// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendAnyWildcard(t *testing.T) {
	ctx, err := NewContext("any")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	require.Len(t, resp.Paths, 2)
	assert.Equal(t, []byte{0, 0, 0, 0}, resp.Paths[0].Address)
}

func TestBackendAnyFailsForNamedNode(t *testing.T) {
	ctx, err := NewContext("any")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestBackendAnyFailsForDefaultLoopback(t *testing.T) {
	ctx, err := NewContext("any")
	require.NoError(t, err)
	req := NewForwardRequest("", "")
	req.DefaultLoopback = true
	resp, err := ctx.Query(req)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}
