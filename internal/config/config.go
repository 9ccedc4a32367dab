package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config describes the top-level application configuration loaded from YAML and ENV.
type Config struct {
	Version   string                    `mapstructure:"version"`
	Registry  RegistryConfig            `mapstructure:"registry"`
	Resolver  ResolverConfig            `mapstructure:"resolver"`
	Output    OutputConfig              `mapstructure:"output"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Models    map[string]ModelConfig    `mapstructure:"models"`
	Explain   ExplainConfig             `mapstructure:"explain"`
	Runner    RunnerConfig              `mapstructure:"runner"`
	History   HistoryConfig             `mapstructure:"history"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	Server    ServerConfig              `mapstructure:"server"`
}

// RegistryConfig locates the persisted tool registry and controls access to it.
type RegistryConfig struct {
	Path        string        `mapstructure:"path"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	SaveRetries int           `mapstructure:"save_retries"`
	SeedOnEmpty bool          `mapstructure:"seed_on_empty"` // load the built-in catalogue when no registry file exists
}

// ResolverConfig tunes prompt-to-tool scoring.
type ResolverConfig struct {
	TopK    int           `mapstructure:"top_k"`
	Weights WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig are the per-field multipliers used when scoring prompt tokens.
type WeightsConfig struct {
	Name        int `mapstructure:"name"`
	Description int `mapstructure:"description"`
	Category    int `mapstructure:"category"`
}

// OutputConfig selects the terminal renderer.
type OutputConfig struct {
	Renderer string `mapstructure:"renderer"` // auto, plain, enhanced
	Theme    string `mapstructure:"theme"`    // cyberpunk, hacker, dracula
}

// ProviderConfig represents a model-serving runtime such as a local Ollama daemon.
type ProviderConfig struct {
	Type    string        `mapstructure:"type"`     // ollama, openai, vllm, lmstudio, custom
	BaseURL string        `mapstructure:"base_url"` // API base URL
	APIKey  string        `mapstructure:"api_key"`  // optional API key
	Timeout time.Duration `mapstructure:"timeout"`  // request timeout
}

// ModelConfig binds a logical model name to a provider entry and model parameters.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Default     bool    `mapstructure:"default"`
}

// ExplainConfig controls model-generated explanations of expanded commands.
type ExplainConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Model     string `mapstructure:"model"` // logical model id; empty uses the default model
	MaxTokens int    `mapstructure:"max_tokens"`
}

// RunnerConfig controls execution of confirmed commands.
type RunnerConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	AllowedCommands []string `mapstructure:"allowed_commands"`
	DeniedCommands  []string `mapstructure:"denied_commands"`
	WorkingDir      string   `mapstructure:"working_dir"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
}

// HistoryConfig controls the command history log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig describes daemon settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	WatchRegistry  bool   `mapstructure:"watch_registry"`
}

// Load reads configuration from the provided path or searches ., configs and
// $HOME/.config/paw for config.yaml, falling back to config.example.yaml.
// Environment variables override file values (prefix: PAW_, dots replaced with underscores).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if dir := userDir(".config"); dir != "" {
			v.AddConfigPath(dir)
		}
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			v.SetConfigName("config.example")
			if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyPathDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates sensible defaults for optional fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("registry.path", "")
	v.SetDefault("registry.lock_timeout", 5*time.Second)
	v.SetDefault("registry.save_retries", 2)
	v.SetDefault("registry.seed_on_empty", true)

	v.SetDefault("resolver.top_k", 5)
	v.SetDefault("resolver.weights.name", 3)
	v.SetDefault("resolver.weights.description", 1)
	v.SetDefault("resolver.weights.category", 2)

	v.SetDefault("output.renderer", "auto")
	v.SetDefault("output.theme", "cyberpunk")

	v.SetDefault("explain.enabled", false)
	v.SetDefault("explain.model", "")
	v.SetDefault("explain.max_tokens", 400)

	v.SetDefault("runner.enabled", false)
	v.SetDefault("runner.allowed_commands", []string{})
	v.SetDefault("runner.denied_commands", []string{"rm", "mkfs", "dd", "shutdown", "reboot"})
	v.SetDefault("runner.timeout_seconds", 600)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", "127.0.0.1:8765")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.watch_registry", true)
}

// applyPathDefaults fills file locations that depend on the user's home directory.
func (c *Config) applyPathDefaults() {
	dataDir := userDir(filepath.Join(".local", "share"))
	if dataDir == "" {
		dataDir = os.TempDir()
	}
	if strings.TrimSpace(c.Registry.Path) == "" {
		c.Registry.Path = filepath.Join(dataDir, "tools.json")
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(dataDir, "history.jsonl")
	}
}

func userDir(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, sub, "paw")
}

// Validate performs basic sanity checks on configuration values.
func (c *Config) Validate() error {
	var defaults int
	for name, p := range c.Providers {
		if p.Type == "" {
			return fmt.Errorf("provider %q must define type", name)
		}
	}

	for name, m := range c.Models {
		if m.Provider == "" {
			return fmt.Errorf("model %q must reference provider", name)
		}

		if _, ok := c.Providers[m.Provider]; !ok {
			return fmt.Errorf("model %q references unknown provider %q", name, m.Provider)
		}

		if m.Temperature < 0 || m.Temperature > 2 {
			return fmt.Errorf("model %q temperature must be within [0,2]", name)
		}

		if m.MaxTokens < 0 {
			return fmt.Errorf("model %q max_tokens cannot be negative", name)
		}

		if m.Default {
			defaults++
		}
	}

	if len(c.Models) > 0 && defaults == 0 {
		return errors.New("at least one model should be marked as default")
	}

	if c.Explain.Enabled && len(c.Models) == 0 {
		return errors.New("explain.enabled requires at least one model")
	}
	if c.Explain.Model != "" {
		if _, ok := c.Models[c.Explain.Model]; !ok {
			return fmt.Errorf("explain references unknown model %q", c.Explain.Model)
		}
	}

	if c.Registry.LockTimeout <= 0 {
		return errors.New("registry.lock_timeout must be > 0")
	}
	if c.Registry.SaveRetries < 0 {
		return errors.New("registry.save_retries must be >= 0")
	}

	if c.Resolver.TopK <= 0 {
		return errors.New("resolver.top_k must be > 0")
	}
	w := c.Resolver.Weights
	if w.Name < 0 || w.Description < 0 || w.Category < 0 {
		return errors.New("resolver.weights must be >= 0")
	}
	if w.Name+w.Description+w.Category == 0 {
		return errors.New("resolver.weights cannot all be zero")
	}

	switch strings.ToLower(strings.TrimSpace(c.Output.Renderer)) {
	case "", "auto", "plain", "enhanced":
	default:
		return fmt.Errorf("output.renderer must be one of auto, plain or enhanced, got %q", c.Output.Renderer)
	}

	if c.Runner.TimeoutSeconds <= 0 {
		return errors.New("runner.timeout_seconds must be > 0")
	}

	return nil
}
