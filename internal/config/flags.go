// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses the agent command-line flags from args (without the
// program name).
//
// Flags:
//
//	-a local API address in format [host]:[port]
//	-s hospital API base URL
//	-push real-time update channel URL
//	-d SQLite database file
//	-c/-config json file path with configs
//	-token bearer token
//	-request-timeout outbound request timeout (e.g., "15s")
//	-sync-interval sync interval while online (e.g., "1m")
//	-max-attempts outbox retry budget
//	-hash-key request integrity hash key
//	-log-file log file path
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("clinic-sync", flag.ContinueOnError)

	var localAddress NetAddress
	var serverURL, pushURL string
	var databaseDSN string
	var jsonConfigPath string
	var token string
	var requestTimeout, syncInterval time.Duration
	var maxAttempts int
	var hashKey string
	var logFile string

	fs.Var(&localAddress, "a", "Local API address host:port")
	fs.StringVar(&serverURL, "s", "", "Hospital API base URL")
	fs.StringVar(&pushURL, "push", "", "Real-time update channel URL")
	fs.StringVar(&databaseDSN, "d", "", "SQLite database file")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Outbound request timeout (e.g., 15s)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Sync interval while online (e.g., 1m)")
	fs.IntVar(&maxAttempts, "max-attempts", 0, "Outbox retry budget")
	fs.StringVar(&hashKey, "hash-key", "", "Request integrity hash key")
	fs.StringVar(&logFile, "log-file", "", "Log file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			HashKey: hashKey,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress: localAddress.String(),
		},
		Adapter: Adapter{
			HTTPAddress:    serverURL,
			PushAddress:    pushURL,
			RequestTimeout: requestTimeout,
			Token:          token,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		Sync: Sync{
			MaxAttempts: maxAttempts,
		},
		Log: Log{
			FilePath: logFile,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither part is set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
