package hostloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_TickAdvancesWorldWithNoPlugins(t *testing.T) {
	cfg := Config{Cores: 1, TickMillis: 5}
	h, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = h.Run(ctx)
	assert.Greater(t, h.world.Tick, uint64(0))
}

func TestHost_PluginsSnapshotEmpty(t *testing.T) {
	cfg := Config{Cores: 1, TickMillis: 5}
	h, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	assert.Empty(t, h.Plugins())
}

func TestHost_ServeNoopWithoutMetricsBind(t *testing.T) {
	cfg := Config{Cores: 1, TickMillis: 5}
	h, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	assert.NoError(t, h.Serve())
}
