package pluginhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingSourceFails(t *testing.T) {
	_, err := OpenTyped[struct{}]("/no/such/plugin.so", "nope", 120)
	assert.ErrorIs(t, err, ErrMetadataIO)
}

func TestOpen_CreatesScratchDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "example.so")
	require.NoError(t, os.WriteFile(src, []byte("not a real plugin"), 0o644))

	p, err := OpenTyped[struct{}](src, "example", 120)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, statErr := os.Stat(p.scratchDir)
	assert.NoError(t, statErr)

	require.NoError(t, p.Close())
	_, statErr = os.Stat(p.scratchDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlugin_ShouldCheckGating(t *testing.T) {
	p := &Plugin[struct{}]{checkInterval: 3}

	// updates == 0 always forces a check.
	assert.True(t, p.shouldCheck())

	p.updates = 1
	assert.False(t, p.shouldCheck())

	p.updates = 3
	p.lastReloaded = 2
	assert.False(t, p.shouldCheck(), "not enough updates since the last reload yet")

	p.lastReloaded = 3
	assert.True(t, p.shouldCheck())

	p.updates = 4
	assert.False(t, p.shouldCheck(), "not a multiple of checkInterval")
}

func TestCheck_String(t *testing.T) {
	assert.Equal(t, "Unchanged", Unchanged.String())
	assert.Equal(t, "FoundNewVersion", FoundNewVersion.String())
}

func TestCallUpdate_BeforeLoadFails(t *testing.T) {
	p := &Plugin[struct{}]{}
	var state struct{}
	_, err := p.CallUpdate(&state, 0.016)
	assert.ErrorIs(t, err, ErrUpdateNotLoaded)
}
