package config

import (
	"os"
	"path/filepath"
)

const appName = "aiec"

// XDGPaths resolves the compiler's XDG-compliant configuration directory
// and global config file path.
type XDGPaths struct {
	ConfigHome string
}

// NewXDGPaths resolves XDG paths from the environment, falling back to
// `~/.config/aiec`.
func NewXDGPaths() XDGPaths {
	home, _ := os.UserHomeDir()
	return XDGPaths{
		ConfigHome: resolveDir(
			os.Getenv("AIEC_CONFIG_HOME"),
			envWithSuffix("XDG_CONFIG_HOME", appName),
			filepath.Join(home, ".config", appName),
		),
	}
}

// ConfigFile returns the path to the global aiec.toml.
func (p XDGPaths) ConfigFile() string {
	if p.ConfigHome == "" {
		return ""
	}
	return filepath.Join(p.ConfigHome, "aiec.toml")
}

func resolveDir(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func envWithSuffix(envVar, suffix string) string {
	val := os.Getenv(envVar)
	if val == "" {
		return ""
	}
	return filepath.Join(val, suffix)
}
