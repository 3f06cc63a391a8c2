// Package config loads qclean configuration from defaults, an optional YAML
// file, and QCLEAN_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v2"
)

// Load reads configuration. cfgFile may be empty, in which case
// ./qclean.yaml and ~/.qclean/qclean.yaml are tried; a missing config file
// is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("backend.url", defaults.Backend.URL)
	v.SetDefault("backend.model", defaults.Backend.Model)
	v.SetDefault("backend.max_tokens", defaults.Backend.MaxTokens)
	v.SetDefault("backend.timeout_seconds", defaults.Backend.TimeoutSeconds)
	v.SetDefault("backend.retry_attempts", defaults.Backend.RetryAttempts)
	v.SetDefault("backend.retry_delay_ms", defaults.Backend.RetryDelayMS)
	v.SetDefault("merge.script", defaults.Merge.Script)
	v.SetDefault("merge.interpreter", defaults.Merge.Interpreter)
	v.SetDefault("prompt.template_path", defaults.Prompt.TemplatePath)
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.dump_dir", defaults.Output.DumpDir)
	v.SetDefault("default_page", defaults.DefaultPage)

	v.SetEnvPrefix("QCLEAN")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("qclean")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.qclean")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Backend.URL = ResolveEnvVars(cfg.Backend.URL)
	cfg.Merge.Script = ResolveEnvVars(cfg.Merge.Script)
	cfg.Prompt.TemplatePath = ResolveEnvVars(cfg.Prompt.TemplatePath)
	cfg.Output.DumpDir = ResolveEnvVars(cfg.Output.DumpDir)

	return &cfg, nil
}

// envVarPattern matches ${ENV_VAR} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// WriteDefault writes the commented default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# qclean configuration
# String values may reference environment variables with ${ENV_VAR} syntax.
# The backend is any text-completion endpoint accepting
# {"model":..., "prompt":..., "max_tokens":...} and returning text.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
