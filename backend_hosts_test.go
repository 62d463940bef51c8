// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHostsFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestBackendHostsMatch(t *testing.T) {
	path := writeHostsFixture(t, "127.0.0.2 db.internal db\n::1 db.internal\n")
	old := HostsPath
	HostsPath = path
	defer func() { HostsPath = old }()

	ctx, err := NewContext("hosts")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("db", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, []byte{127, 0, 0, 2}, resp.Paths[0].Address)
}

func TestBackendHostsMultipleRecordsForOneName(t *testing.T) {
	path := writeHostsFixture(t, "127.0.0.2 db.internal\n::1 db.internal\n")
	old := HostsPath
	HostsPath = path
	defer func() { HostsPath = old }()

	ctx, err := NewContext("hosts")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("db.internal", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Len(t, resp.Paths, 2)
}

func TestBackendHostsNoMatchFails(t *testing.T) {
	path := writeHostsFixture(t, "127.0.0.2 db.internal\n")
	old := HostsPath
	HostsPath = path
	defer func() { HostsPath = old }()

	ctx, err := NewContext("hosts")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("nowhere.invalid", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestBackendHostsCommentsIgnored(t *testing.T) {
	path := writeHostsFixture(t, "# comment\n127.0.0.2 db.internal # trailing\n")
	old := HostsPath
	HostsPath = path
	defer func() { HostsPath = old }()

	ctx, err := NewContext("hosts")
	require.NoError(t, err)
	resp, err := ctx.Query(NewForwardRequest("db.internal", ""))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
}
