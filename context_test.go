// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextParsesChain(t *testing.T) {
	ctx, err := NewContext("any,loopback")
	require.NoError(t, err)
	require.Len(t, ctx.chain, 2)
}

func TestNewContextInvalidChain(t *testing.T) {
	_, err := NewContext("does-not-exist")
	assert.Error(t, err)
}

func TestContextApplyDefaults(t *testing.T) {
	ctx, err := NewContext("")
	require.NoError(t, err)
	ctx.defaultFamily = FamilyInet6
	ctx.clampTTL = 30
	ctx.timeout = 2 * time.Second

	req := &Request{Kind: KindForward, Node: "x"}
	full := ctx.applyDefaults(req)
	assert.Equal(t, FamilyInet6, full.Family)
	assert.Equal(t, 30, full.ClampTTL)
	assert.Equal(t, 2*time.Second, full.Timeout)

	// An explicit request value is never overridden.
	req2 := &Request{Kind: KindForward, Node: "x", Family: FamilyInet, ClampTTL: 5}
	full2 := ctx.applyDefaults(req2)
	assert.Equal(t, FamilyInet, full2.Family)
	assert.Equal(t, 5, full2.ClampTTL)
}

func TestContextStartQueryRejectsInvalidRequest(t *testing.T) {
	ctx, err := NewContext("")
	require.NoError(t, err)
	_, err = ctx.StartQuery(&Request{Kind: KindDNS})
	require.Error(t, err)
	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindInputInvalid, nerr.Kind)
}

func TestContextStartQueryRejectsUnknownService(t *testing.T) {
	ctx, err := NewContext("")
	require.NoError(t, err)
	_, err = ctx.StartQuery(NewForwardRequest("example.com", "definitely-not-a-real-service-name"))
	require.Error(t, err)
	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindInputInvalid, nerr.Kind)
}

func TestContextUserData(t *testing.T) {
	ctx, err := NewContext("")
	require.NoError(t, err)
	freed := false
	ctx.SetUserData("payload", func(v any) {
		freed = true
		assert.Equal(t, "payload", v)
	})
	assert.Equal(t, "payload", ctx.UserData())
	require.NoError(t, ctx.Close())
	assert.True(t, freed)
}

func TestContextCloseCancelsLiveQueries(t *testing.T) {
	registerTestBackend(t, "test-ctx-close", &Backend{
		SetupForward: func(h Handle, settings []string) {
			h.WatchFD(55, EventReadable)
		},
	})
	ctx, _ := newTestContext(t, "test-ctx-close")
	q, err := ctx.StartQuery(NewForwardRequest("example.com", ""))
	require.NoError(t, err)
	require.False(t, q.Done())
	require.NoError(t, ctx.Close())
	assert.True(t, q.Done())
	assert.Equal(t, KindCancelled, q.Response().Err.Kind)
}

func TestContextQueryRejectsBlockingWithHostCallbacks(t *testing.T) {
	registerTestBackend(t, "test-ctx-hosted", &Backend{
		SetupForward: func(h Handle, settings []string) {
			h.WatchFD(66, EventReadable)
		},
	})
	ctx, _ := newTestContext(t, "test-ctx-hosted")
	_, err := ctx.Query(NewForwardRequest("example.com", ""))
	assert.Error(t, err)
}
