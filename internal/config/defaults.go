package config

// Config is the full qclean configuration.
type Config struct {
	Backend     BackendConfig `mapstructure:"backend" yaml:"backend"`
	Merge       MergeConfig   `mapstructure:"merge" yaml:"merge"`
	Prompt      PromptConfig  `mapstructure:"prompt" yaml:"prompt"`
	Output      OutputConfig  `mapstructure:"output" yaml:"output"`
	DefaultPage int           `mapstructure:"default_page" yaml:"default_page"`
}

// BackendConfig configures the completion endpoint.
type BackendConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	Model          string `mapstructure:"model" yaml:"model"`
	MaxTokens      int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RetryAttempts  uint   `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelayMS   int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
}

// MergeConfig configures the external merge step.
type MergeConfig struct {
	Script      string `mapstructure:"script" yaml:"script"`
	Interpreter string `mapstructure:"interpreter" yaml:"interpreter"`
}

// PromptConfig configures the prompt template. An empty TemplatePath means
// the embedded default prompt.
type PromptConfig struct {
	TemplatePath string `mapstructure:"template_path" yaml:"template_path"`
}

// OutputConfig configures result and diagnostic output.
type OutputConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	DumpDir string `mapstructure:"dump_dir" yaml:"dump_dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:11434/api/generate",
			Model:          "llama3.1:8b",
			MaxTokens:      2048,
			TimeoutSeconds: 120,
			RetryAttempts:  3,
			RetryDelayMS:   500,
		},
		Merge: MergeConfig{
			Interpreter: "python3",
		},
		Prompt:      PromptConfig{},
		Output:      OutputConfig{Path: "questions.json"},
		DefaultPage: 1,
	}
}
