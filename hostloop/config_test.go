package hostloop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
cores = 2
metrics_bind = "127.0.0.1:0"
tick_millis = 20

[transport]
bind = ""
dest = ""

[[plugins]]
name = "example"
path = "./example.so"
check_interval = 60
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corehost.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Cores)
	assert.Equal(t, int64(20), cfg.TickMillis)
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, "example", cfg.Plugins[0].Name)
	assert.EqualValues(t, 60, cfg.Plugins[0].CheckInterval)
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corehost.toml")
	require.NoError(t, os.WriteFile(path, []byte("cores = 0\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Cores)
	assert.Equal(t, int64(DefaultTickMillis), cfg.TickMillis)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/no/such/corehost.toml")
	assert.Error(t, err)
}
