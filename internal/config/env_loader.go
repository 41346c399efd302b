package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvLoader handles loading environment variables from .env files.
type EnvLoader struct {
	loaded  map[string]string
	baseDir string
}

// NewEnvLoader creates a new environment loader.
func NewEnvLoader(baseDir string) *EnvLoader {
	return &EnvLoader{
		baseDir: baseDir,
		loaded:  make(map[string]string),
	}
}

// LoadEnvFiles loads environment variables from .env files in priority order.
func (l *EnvLoader) LoadEnvFiles(environment string) error {
	// Priority order (last one wins):
	// 1. .env.defaults (if exists)
	// 2. .env.{environment}
	// 3. .env.local
	// 4. .env

	envFiles := []string{
		".env.defaults",
		fmt.Sprintf(".env.%s", environment),
		".env.local",
		".env",
	}

	for _, filename := range envFiles {
		path := filepath.Join(l.baseDir, filename)
		if err := l.loadEnvFile(path); err != nil {
			// Some files are optional, only warn on real read errors
			if !os.IsNotExist(err) {
				fmt.Printf("Warning: Error loading %s: %v\n", filename, err)
			}
		}
	}

	// Process environment always wins over file values
	for key, value := range l.loaded {
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				fmt.Printf("Warning: Failed to set environment variable %s: %v\n", key, err)
			}
		}
	}

	return nil
}

// loadEnvFile loads a single .env file.
func (l *EnvLoader) loadEnvFile(path string) error {
	file, err := os.Open(path) // #nosec G304 -- path is validated by caller
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			fmt.Printf("Warning: Failed to close file %s: %v\n", path, cerr)
		}
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and blank lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if key != "" {
			l.loaded[key] = value
		}
	}

	return scanner.Err()
}
