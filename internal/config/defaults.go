// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{Version: "dev"},
		Server: Server{
			HTTPAddress:    "127.0.0.1:8787",
			RequestTimeout: 30 * time.Second,
		},
		Adapter: Adapter{
			RequestTimeout: 15 * time.Second,
		},
		Workers: Workers{
			SyncInterval:  time.Minute,
			ProbeInterval: 10 * time.Second,
		},
		Sync: Sync{
			MaxAttempts: 8,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Minute,
			Concurrency: 4,
		},
		Log: Log{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
