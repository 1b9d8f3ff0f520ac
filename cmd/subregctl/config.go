// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

// loadDotEnv reads .env from the working directory into the environment.
// A missing .env is fine.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading .env: %w", err)
}

// flagOrEnv prefers an explicitly set flag, then the environment, then the
// flag default.
func flagOrEnv(c *cobra.Command, flag, value, env string) string {
	if c.Flags().Changed(flag) {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return value
}

func splitList(s string) (list []string) {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// loadConfig layers defaults, config file, environment and flags.
func (a *app) loadConfig(c *cobra.Command) (*core.Config, error) {
	var (
		cfg = core.DefaultConfig()
		err error
	)

	if path := flagOrEnv(c, "config", a.configPath, "SUBREG_CONFIG"); path != "" {
		cfg, err = core.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("SUBREG_DOMAINS_DIR"); v != "" {
		cfg.DomainsDir = v
	}
	if v := os.Getenv("SUBREG_ALLOWED_DOMAINS"); v != "" {
		cfg.AllowedDomains = splitList(v)
	}
	if c.Flags().Changed("domains-dir") {
		cfg.DomainsDir = a.domainsDir
	}
	if c.Flags().Changed("allowed-domain") {
		cfg.AllowedDomains = a.allowed
	}

	err = cfg.Normalize()
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
