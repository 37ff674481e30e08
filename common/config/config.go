// Package config provides configuration file discovery and TOML helpers for printlookup
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// AppName names the Unix config and state directories
	AppName = "printlookup"
	// AppDisplayName names the Windows and macOS application directories
	AppDisplayName = "PrintLookup"
)

// FindConfigFile searches for a config file in multiple platform-appropriate locations
// Returns the path and data if found, or an error if not found in any location
func FindConfigFile(filename string) (string, []byte, error) {
	for _, path := range GetConfigSearchPaths(filename) {
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("%s not found in any search path", filename)
}

// GetConfigSearchPaths returns an ordered list of paths to search for config files
func GetConfigSearchPaths(filename string) []string {
	var searchPaths []string

	// 1. System directory
	switch runtime.GOOS {
	case "windows":
		searchPaths = append(searchPaths, filepath.Join(os.Getenv("ProgramData"), AppDisplayName, filename))
	case "darwin":
		searchPaths = append(searchPaths, filepath.Join("/Library/Application Support", AppDisplayName, filename))
	default: // Linux and other Unix-like
		searchPaths = append(searchPaths, filepath.Join("/etc", AppName, filename))
	}

	// 2. User-specific config directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		switch runtime.GOOS {
		case "windows":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "AppData", "Local", AppDisplayName, filename))
		case "darwin":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "Library", "Application Support", AppDisplayName, filename))
		default:
			searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", AppName, filename))
		}
	}

	// 3. Executable directory
	if exePath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(exePath), filename))
	}

	// 4. Current working directory (lowest priority)
	searchPaths = append(searchPaths, filepath.Join(".", filename))

	return searchPaths
}

// GetLogDirectory returns the per-user log directory, creating it if needed
func GetLogDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}

	var logDir string
	switch runtime.GOOS {
	case "windows":
		logDir = filepath.Join(homeDir, "AppData", "Local", AppDisplayName, "logs")
	case "darwin":
		logDir = filepath.Join(homeDir, "Library", "Logs", AppDisplayName)
	default:
		logDir = filepath.Join(homeDir, ".local", "state", AppName, "logs")
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	return logDir, nil
}

// ResolveConfigPath returns the config path given on the command line, or
// <PREFIX>_CONFIG / <PREFIX>_CONFIG_PATH from the environment. Empty means
// search the default locations.
func ResolveConfigPath(prefix, flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if val := GetEnvPrefixed(prefix, "CONFIG"); val != "" {
		return val
	}
	return GetEnvPrefixed(prefix, "CONFIG_PATH")
}

// GetEnvPrefixed returns <PREFIX>_<key> when set, otherwise <key>
func GetEnvPrefixed(prefix, key string) string {
	if prefix != "" {
		if val := os.Getenv(strings.ToUpper(prefix) + "_" + key); val != "" {
			return val
		}
	}
	return os.Getenv(key)
}

// WriteDefaultTOML writes a default TOML configuration file with the provided
// structure. An existing file is never overwritten.
func WriteDefaultTOML(configPath string, config interface{}) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", configPath)
		}
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadTOML loads a TOML configuration file into the provided structure.
// Keys the structure does not know are reported as an error.
func LoadTOML(configPath string, config interface{}) error {
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}

	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys in %s: %s", configPath, strings.Join(keys, ", "))
	}

	return nil
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `toml:"level"`
	// Dir overrides the log directory. "-" disables the log file.
	Dir string `toml:"dir"`
	// Rotation of the log file; zero values keep the logger defaults.
	MaxSizeMB  int `toml:"max_size_mb"`
	MaxAgeDays int `toml:"max_age_days"`
	MaxFiles   int `toml:"max_files"`
}

// ApplyLoggingEnvOverrides applies LOG_LEVEL and LOG_DIR, optionally prefixed
func ApplyLoggingEnvOverrides(cfg *LoggingConfig, prefix string) {
	if val := GetEnvPrefixed(prefix, "LOG_LEVEL"); val != "" {
		cfg.Level = val
	}
	if val := GetEnvPrefixed(prefix, "LOG_DIR"); val != "" {
		cfg.Dir = val
	}
}
