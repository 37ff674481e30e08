package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aplejeune/TSTC/common/config"
	"github.com/aplejeune/TSTC/lookup"
)

const (
	configFileName = "printlookup.toml"
	envPrefix      = "PRINTLOOKUP"
)

// AppConfig represents the printlookup configuration
type AppConfig struct {
	Lookup  LookupConfig         `toml:"lookup"`
	SNMP    SNMPConfig           `toml:"snmp"`
	Logging config.LoggingConfig `toml:"logging"`
}

// LookupConfig controls resolution and scanning
type LookupConfig struct {
	Workers      int    `toml:"workers"`        // Scan pool size, 0 = min(32, CPUs+4)
	Server       string `toml:"server"`         // Default print server for ip lookups, empty = local
	Nameserver   string `toml:"nameserver"`     // Query this DNS server instead of the system resolver
	DNSTimeoutMs int    `toml:"dns_timeout_ms"` // Only used with nameserver
	MDNS         bool   `toml:"mdns"`           // Resolve .local names over multicast DNS
}

// SNMPConfig holds SNMP identity probe settings
type SNMPConfig struct {
	Enabled   bool   `toml:"enabled"`
	Community string `toml:"community"`
	Version   string `toml:"version"`
	TimeoutMs int    `toml:"timeout_ms"`
	Retries   int    `toml:"retries"`
}

// DefaultAppConfig returns configuration with sensible defaults
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Lookup: LookupConfig{
			Workers:      0,
			DNSTimeoutMs: 2000,
			MDNS:         false,
		},
		SNMP: SNMPConfig{
			Enabled:   false,
			Community: "public",
			Version:   "2c",
			TimeoutMs: 2000,
			Retries:   1,
		},
		Logging: config.LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 7,
			MaxFiles:   5,
		},
	}
}

// LoadAppConfig loads configuration from configPath, or from the first
// printlookup.toml on the search path when configPath is empty, then applies
// environment overrides. The returned source is the file used, empty when
// only defaults apply. An explicit configPath that does not exist is an error.
func LoadAppConfig(configPath string) (*AppConfig, string, error) {
	cfg := DefaultAppConfig()

	source := configPath
	if source == "" {
		if found, _, err := config.FindConfigFile(configFileName); err == nil {
			source = found
		}
	}
	if source != "" {
		if err := config.LoadTOML(source, cfg); err != nil {
			return nil, "", err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

func applyEnvOverrides(cfg *AppConfig) error {
	if val := os.Getenv(envPrefix + "_WORKERS"); val != "" {
		workers, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s_WORKERS %q: %w", envPrefix, val, err)
		}
		cfg.Lookup.Workers = workers
	}
	if val := os.Getenv(envPrefix + "_SERVER"); val != "" {
		cfg.Lookup.Server = val
	}
	if val := os.Getenv(envPrefix + "_NAMESERVER"); val != "" {
		cfg.Lookup.Nameserver = val
	}
	if val := os.Getenv(envPrefix + "_MDNS"); val != "" {
		cfg.Lookup.MDNS = parseBool(val)
	}
	if val := os.Getenv("SNMP_ENABLED"); val != "" {
		cfg.SNMP.Enabled = parseBool(val)
	}
	if val := os.Getenv("SNMP_COMMUNITY"); val != "" {
		cfg.SNMP.Community = val
	}
	if val := os.Getenv("SNMP_VERSION"); val != "" {
		cfg.SNMP.Version = val
	}
	if val := os.Getenv("SNMP_TIMEOUT_MS"); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil {
			cfg.SNMP.TimeoutMs = timeout
		}
	}
	if val := os.Getenv("SNMP_RETRIES"); val != "" {
		if retries, err := strconv.Atoi(val); err == nil {
			cfg.SNMP.Retries = retries
		}
	}

	config.ApplyLoggingEnvOverrides(&cfg.Logging, envPrefix)
	return nil
}

// Validate rejects settings that cannot be used
func (c *AppConfig) Validate() error {
	if c.Lookup.Workers < 0 {
		return fmt.Errorf("lookup.workers must not be negative, got %d", c.Lookup.Workers)
	}
	if c.Lookup.DNSTimeoutMs < 0 {
		return fmt.Errorf("lookup.dns_timeout_ms must not be negative, got %d", c.Lookup.DNSTimeoutMs)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxAgeDays < 0 || c.Logging.MaxFiles < 0 {
		return fmt.Errorf("logging rotation limits must not be negative")
	}
	if _, err := lookup.ParseSNMPVersion(c.SNMP.Version); err != nil {
		return fmt.Errorf("snmp.version: %w", err)
	}
	return nil
}

// WriteDefaultAppConfig writes a default configuration file
func WriteDefaultAppConfig(configPath string) error {
	return config.WriteDefaultTOML(configPath, DefaultAppConfig())
}

// NewResolver builds the address resolver the config asks for
func (c *AppConfig) NewResolver() lookup.AddressResolver {
	var r lookup.AddressResolver
	if c.Lookup.Nameserver != "" {
		r = lookup.NewDNSResolver(c.Lookup.Nameserver, time.Duration(c.Lookup.DNSTimeoutMs)*time.Millisecond)
	} else {
		r = lookup.NewSystemResolver()
	}
	if c.Lookup.MDNS {
		r = lookup.NewMDNSResolver(r, 0)
	}
	return r
}

// NewIdentityProber returns the SNMP prober, or nil when SNMP is disabled
func (c *AppConfig) NewIdentityProber() (lookup.IdentityProber, error) {
	if !c.SNMP.Enabled {
		return nil, nil
	}
	version, err := lookup.ParseSNMPVersion(c.SNMP.Version)
	if err != nil {
		return nil, err
	}
	return lookup.NewSNMPProber(lookup.SNMPConfig{
		Community: c.SNMP.Community,
		Version:   version,
		Timeout:   time.Duration(c.SNMP.TimeoutMs) * time.Millisecond,
		Retries:   c.SNMP.Retries,
	}), nil
}

func parseBool(val string) bool {
	lower := strings.ToLower(strings.TrimSpace(val))
	return lower == "1" || lower == "true" || lower == "yes"
}
