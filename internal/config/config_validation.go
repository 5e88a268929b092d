// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// agent invariants before it is used at startup. All failing groups are
// reported together.
func (cfg *StructuredConfig) validate() error {
	var errs []error

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		errs = append(errs, ErrInvalidStorageConfigs)
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		errs = append(errs, ErrInvalidAdapterConfigs)
	}

	if cfg.Server.HTTPAddress == "" {
		errs = append(errs, ErrInvalidServerConfigs)
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ProbeInterval <= 0 {
		errs = append(errs, ErrInvalidWorkerConfigs)
	}

	if cfg.Sync.MaxAttempts < 1 || cfg.Sync.Concurrency < 1 ||
		cfg.Sync.BaseDelay <= 0 || cfg.Sync.MaxDelay < cfg.Sync.BaseDelay {
		errs = append(errs, ErrInvalidSyncConfigs)
	}

	return errors.Join(errs...)
}
