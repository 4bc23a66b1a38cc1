package storectx_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/storectx"
)

func TestBound_AplicaElTimeout(t *testing.T) {
	ctx, cancel := storectx.Timeout(2 * time.Second).Bound(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, 500*time.Millisecond)
}

func TestBound_SinTimeoutNoAgregaPlazo(t *testing.T) {
	ctx, cancel := storectx.Timeout(0).Bound(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestBound_RespetaPlazoMasCorto(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelParent()
	want, _ := parent.Deadline()

	ctx, cancel := storectx.Timeout(time.Minute).Bound(parent)
	defer cancel()

	got, ok := ctx.Deadline()
	require.True(t, ok)
	assert.Equal(t, want, got)
}
