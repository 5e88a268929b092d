// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// StructuredConfig is the top-level configuration container for the clinic
// sync agent. It aggregates all sub-configurations and is populated by
// merging values from a .env file, environment variables, command-line flags
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the transport integrity
	// key and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the local mirror database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the address of the localhost API the UI talks to.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote hospital API settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background worker intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds the outbox retry policy.
	Sync Sync `envPrefix:"SYNC_"`

	// Log holds the rotating log file settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`

	// EnvFilePath is the optional path of a dotenv file loaded before the
	// environment is parsed. Defaults to ".env" in the working directory.
	EnvFilePath string `env:"ENV_FILE"`
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used to sign outgoing request bodies
	// (HashSHA256 header). Optional.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running agent.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the local storage backend.
type Storage struct {
	// DB holds the SQLite settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite mirror.
type DB struct {
	// DSN is the SQLite database file path
	// (e.g. "/var/lib/clinic-sync/mirror.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds settings for the localhost API consumed by the UI.
type Server struct {
	// HTTPAddress is the address the local API listens on, in "host:port"
	// format (e.g. "127.0.0.1:8787").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single UI request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds settings for the remote hospital API.
type Adapter struct {
	// HTTPAddress is the base URL of the hospital API
	// (e.g. "https://his.example.org").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// PushAddress is the websocket URL of the real-time update channel.
	// Optional; when empty no push listener is started.
	// Env: ADAPTER_PUSH_ADDRESS
	PushAddress string `env:"PUSH_ADDRESS"`

	// RequestTimeout is the timeout applied to every outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token issued by the hospital login flow.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is how often a sync pass runs while online.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is how often connectivity is probed.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Sync holds the outbox retry policy.
type Sync struct {
	// MaxAttempts is the number of failed sends after which an outbox item
	// is dead-lettered.
	// Env: SYNC_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BaseDelay is the first retry delay; later delays grow exponentially.
	// Env: SYNC_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// MaxDelay caps the retry delay.
	// Env: SYNC_MAX_DELAY
	MaxDelay time.Duration `env:"MAX_DELAY"`

	// Concurrency is how many entity lanes drain in parallel.
	// Env: SYNC_CONCURRENCY
	Concurrency int `env:"CONCURRENCY"`
}

// Log holds the rotating log file settings.
type Log struct {
	// FilePath is where the agent log is written.
	// Env: LOG_FILE_PATH
	FilePath string `env:"FILE_PATH"`

	// MaxSizeMB is the size at which the log file is rotated.
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB"`

	// MaxBackups is how many rotated files are kept.
	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (later sources override non-zero fields of earlier ones):
//  1. .env file
//  2. Environment variables
//  3. Command-line flags
//  4. JSON file (path resolved from sources 1–3)
//
// Defaults are applied last to fields that are still zero.
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags(args).
		withJSON().
		withDefaults().
		build()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
