// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     config
// Description: Central TOML configuration for the chainterm host
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Server  ServerConfig  `toml:"server"`
	Chain   ChainConfig   `toml:"chain"`
	Session SessionConfig `toml:"session"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// ServerConfig holds the WebSocket terminal server configuration
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// ChainConfig holds the blockchain endpoints handed to command handlers.
// The interpreter core never reads these; they are pass-through settings
// for the registered chain commands.
type ChainConfig struct {
	Network     string `toml:"network"`
	RPCEndpoint string `toml:"rpc_endpoint"`
	ChainID     int64  `toml:"chain_id"`
	CompilerURL string `toml:"compiler_url"`
}

// SessionConfig holds per-session interpreter settings
type SessionConfig struct {
	AliasBootstrap string `toml:"alias_bootstrap"`
	StoragePath    string `toml:"storage_path"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from the CHAINTERM_CONFIG environment
// variable, falling back to the default locations
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CHAINTERM_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/config.toml",
			"./config.toml",
			filepath.Join(os.Getenv("HOME"), ".config/chainterm/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "chainterm"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8420
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 120 * time.Second
	}

	// Chain
	if c.Chain.Network == "" {
		c.Chain.Network = "sepolia"
	}
	if c.Chain.RPCEndpoint == "" {
		c.Chain.RPCEndpoint = "http://localhost:8545"
	}
	if c.Chain.ChainID == 0 {
		c.Chain.ChainID = 11155111
	}

	// Session
	if c.Session.StoragePath == "" {
		c.Session.StoragePath = filepath.Join(c.General.DataDir, "sessions.db")
	}
}

// Addr returns the host:port address of the terminal server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
