package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration
type Config struct {
	DefaultProfile string             `json:"default_profile" yaml:"default_profile"`
	Profiles       map[string]Profile `json:"profiles" yaml:"profiles"`
}

// Profile represents a configuration profile for different servers
type Profile struct {
	Name         string `json:"name" yaml:"name"`
	ServerURL    string `json:"server_url" yaml:"server_url"`
	SessionToken string `json:"session_token" yaml:"session_token"`
}

// validateConfigPath validates that the config path is safe
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid config path: path traversal not allowed")
	}
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("invalid config path: must be absolute path")
	}
	return nil
}

// LoadConfig loads the configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	config := &Config{
		Profiles: make(map[string]Profile),
	}

	if validateErr := validateConfigPath(configPath); validateErr != nil {
		return nil, fmt.Errorf("config path validation failed: %w", validateErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		return config, nil
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // Path is validated by validateConfigPath
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if validateErr := validateConfigPath(configPath); validateErr != nil {
		return fmt.Errorf("config path validation failed: %w", validateErr)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(configPath), 0o750); mkdirErr != nil {
		return fmt.Errorf("failed to create config directory: %w", mkdirErr)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Session tokens live in this file, keep it private.
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ActiveProfile resolves the profile to use: the --profile flag, then the
// configured default, then a built-in localhost profile.
func ActiveProfile(config *Config) Profile {
	name := profileName
	if name == "" {
		name = viper.GetString("profile")
	}
	if name == "" {
		name = config.DefaultProfile
	}

	if name != "" {
		if profile, ok := config.Profiles[name]; ok {
			return profile
		}
	}

	return Profile{
		Name:      "local",
		ServerURL: "http://localhost:5000",
	}
}

// SetProfile stores a profile and makes it the default when none is set.
func SetProfile(config *Config, profile Profile) {
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}
	config.Profiles[profile.Name] = profile
	if config.DefaultProfile == "" {
		config.DefaultProfile = profile.Name
	}
}
