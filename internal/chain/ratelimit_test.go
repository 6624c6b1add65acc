package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

func TestRateLimiterAllowWithinBurst(t *testing.T) {
	t.Parallel()

	rl := chain.NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("rpc.example.com"))
	assert.True(t, rl.Allow("rpc.example.com"))
	assert.False(t, rl.Allow("rpc.example.com"))
}

func TestRateLimiterPerHostIsolation(t *testing.T) {
	t.Parallel()

	rl := chain.NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("rpc-a.example.com"))
	assert.False(t, rl.Allow("rpc-a.example.com"))

	// A different host has its own bucket
	assert.True(t, rl.Allow("rpc-b.example.com"))
}

func TestRateLimiterWait(t *testing.T) {
	t.Parallel()

	rl := chain.NewRateLimiter(100, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "relay.example.com"))
	require.NoError(t, rl.Wait(ctx, "relay.example.com"))
}
