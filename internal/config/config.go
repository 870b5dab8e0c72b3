package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/runner"
	"github.com/daydemir/mle/internal/workspace"
)

// EnvPrefix prefixes environment overrides, e.g. MLE_LLM_MODEL
const EnvPrefix = "MLE"

// Config represents the mle project configuration
type Config struct {
	LLM LLMConfig `mapstructure:"llm"`
	Run RunConfig `mapstructure:"run"`
	Log LogConfig `mapstructure:"log"`
}

// LLMConfig contains model backend settings
type LLMConfig struct {
	Backend string        `mapstructure:"backend"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RunConfig contains subprocess settings
type RunConfig struct {
	Interpreter       string        `mapstructure:"interpreter"`
	ValidationTimeout time.Duration `mapstructure:"validation_timeout"`
	InstallTimeout    time.Duration `mapstructure:"install_timeout"`
}

// LogConfig contains run log settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the config from the project. A missing file yields defaults;
// environment overrides apply either way.
func Load(projectDir string) (*Config, error) {
	configPath := workspace.ConfigPath(projectDir)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// bindKeys registers every key so AutomaticEnv sees keys absent from the file
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"llm.backend", "llm.model", "llm.base_url", "llm.api_key", "llm.timeout",
		"run.interpreter", "run.validation_timeout", "run.install_timeout",
		"log.level",
	} {
		_ = v.BindEnv(key)
	}
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Backend: llm.BackendOpenAI,
			Model:   "gpt-4o",
			Timeout: 10 * time.Minute,
		},
		Run: RunConfig{
			Interpreter:       "python",
			ValidationTimeout: runner.DefaultTimeout,
			InstallTimeout:    runner.DefaultTimeout,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.LLM.Backend == "" {
		cfg.LLM.Backend = defaults.LLM.Backend
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = defaults.LLM.Timeout
	}
	if cfg.Run.Interpreter == "" {
		cfg.Run.Interpreter = defaults.Run.Interpreter
	}
	if cfg.Run.ValidationTimeout == 0 {
		cfg.Run.ValidationTimeout = defaults.Run.ValidationTimeout
	}
	if cfg.Run.InstallTimeout == 0 {
		cfg.Run.InstallTimeout = defaults.Run.InstallTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// LLMOptions converts the llm section into client options
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Backend: c.LLM.Backend,
		Model:   c.LLM.Model,
		BaseURL: c.LLM.BaseURL,
		APIKey:  c.LLM.APIKey,
		Timeout: c.LLM.Timeout,
	}
}
