// Package config handles configuration loading and credential acquisition.
// Settings come from a YAML file with working defaults; API keys come from
// the environment, with an interactive prompt as fallback.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir  = ".config/agentloop"
	defaultConfigFile = "config.yaml"
)

// Config holds the complete configuration for an agentloop application.
type Config struct {
	Model struct {
		Provider    string  `yaml:"provider"` // "openai" or "anthropic"
		Name        string  `yaml:"name"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int64   `yaml:"max_tokens"`
	} `yaml:"model"`

	Agent struct {
		Name         string `yaml:"name"`
		SystemPrompt string `yaml:"system_prompt"`
		MaxSteps     int    `yaml:"max_steps"`
	} `yaml:"agent"`

	Search struct {
		Topic       string `yaml:"topic"`
		MaxResults  int    `yaml:"max_results"`
		SearchDepth string `yaml:"search_depth"`
	} `yaml:"search"`

	Checkpoint struct {
		Backend string `yaml:"backend"` // "memory" or "sqlite"
		Path    string `yaml:"path"`    // sqlite database file
	} `yaml:"checkpoint"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration suitable for local use.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Model.Provider = "openai"
	cfg.Model.Name = "gpt-4o-mini"
	cfg.Model.Temperature = 0.7
	cfg.Model.MaxTokens = 4096

	cfg.Agent.Name = "Assistant"
	cfg.Agent.SystemPrompt = "You are a helpful assistant with access to web search. Cite sources when you use search results."
	cfg.Agent.MaxSteps = 10

	cfg.Search.Topic = "general"
	cfg.Search.MaxResults = 5
	cfg.Search.SearchDepth = "basic"

	cfg.Checkpoint.Backend = "memory"
	cfg.Checkpoint.Path = "agentloop.db"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultConfigDir, defaultConfigFile), nil
}

// Load reads a config file, merging it over defaults. A missing file is not
// an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Credential returns the secret stored in envVar, prompting interactively on
// stdin when the variable is unset or empty. name is the human-readable
// label used in the prompt.
func Credential(name, envVar string) (string, error) {
	return CredentialFrom(name, envVar, os.Stdin, os.Stderr)
}

// CredentialFrom is Credential with injectable prompt streams for testing.
func CredentialFrom(name, envVar string, in io.Reader, out io.Writer) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	fmt.Fprintf(out, "Enter %s (%s): ", name, envVar)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%s is required (set %s)", name, envVar)
	}

	// Make the key visible to SDKs that read it from the environment.
	if err := os.Setenv(envVar, value); err != nil {
		return "", err
	}
	return value, nil
}
