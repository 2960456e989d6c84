// Package config loads driver configuration with a layered precedence:
// CLI flags > AIEC_* env vars > project aiec.toml > XDG global config >
// built-in defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved driver configuration.
type Config struct {
	DiagnosticsFormat      string // "human" | "json"
	DiagnosticsProcessInfo bool
	DriverRunTimeoutSeconds int
	DriverWatch            bool
	CodegenWorkerPrefix    string
}

// Load resolves a Config using the five-level precedence, reading
// projectRoot/aiec.toml as the project-local file.
func Load(v *viper.Viper, projectRoot string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetConfigType("toml")

	v.SetDefault("diagnostics.format", "human")
	v.SetDefault("diagnostics.process_info", false)
	v.SetDefault("driver.run_timeout_seconds", 30)
	v.SetDefault("driver.watch", false)
	v.SetDefault("codegen.worker_prefix", "worker")

	paths := NewXDGPaths()
	if cf := paths.ConfigFile(); cf != "" {
		v.SetConfigFile(cf)
		_ = v.ReadInConfig() // absent global config is not an error
	}

	v.SetConfigFile(projectRoot + "/aiec.toml")
	_ = v.MergeInConfig()

	v.SetEnvPrefix("AIEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Config{
		DiagnosticsFormat:       v.GetString("diagnostics.format"),
		DiagnosticsProcessInfo:  v.GetBool("diagnostics.process_info"),
		DriverRunTimeoutSeconds: v.GetInt("driver.run_timeout_seconds"),
		DriverWatch:             v.GetBool("driver.watch"),
		CodegenWorkerPrefix:     v.GetString("codegen.worker_prefix"),
	}, nil
}
