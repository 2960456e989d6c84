package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFiles(t *testing.T) {
	t.Setenv("AIEC_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()

	cfg, err := Load(viper.New(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "human", cfg.DiagnosticsFormat)
	assert.Equal(t, 30, cfg.DriverRunTimeoutSeconds)
	assert.False(t, cfg.DriverWatch)
	assert.Equal(t, "worker", cfg.CodegenWorkerPrefix)
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	t.Setenv("AIEC_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	content := `
[diagnostics]
format = "json"

[driver]
run_timeout_seconds = 10
watch = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "aiec.toml"), []byte(content), 0644))

	cfg, err := Load(viper.New(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.DiagnosticsFormat)
	assert.Equal(t, 10, cfg.DriverRunTimeoutSeconds)
	assert.True(t, cfg.DriverWatch)
}

func TestLoadEnvVarOverridesProjectConfig(t *testing.T) {
	t.Setenv("AIEC_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	content := `
[diagnostics]
format = "json"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "aiec.toml"), []byte(content), 0644))
	t.Setenv("AIEC_DIAGNOSTICS_FORMAT", "human")

	cfg, err := Load(viper.New(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "human", cfg.DiagnosticsFormat)
}
