// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/autodns/subreg.go/core"
	_ "github.com/autodns/subreg.go/registry/cloudflare"
	_ "github.com/autodns/subreg.go/registry/zone"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

// ExitCodeError carries the process exit status of a command that ran to
// completion but did not pass.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

type app struct {
	cfg *core.Config
	log *logrus.Entry

	configPath string
	domainsDir string
	allowed    []string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "subregctl",
		Short: "Validate and report on the subdomain declaration registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (YAML or JSON) (env SUBREG_CONFIG)")
	flags.StringVar(&a.domainsDir, "domains-dir", "", "Directory of declaration files (env SUBREG_DOMAINS_DIR)")
	flags.StringSliceVar(&a.allowed, "allowed-domain", nil, "Allowed parent domain, repeatable (env SUBREG_ALLOWED_DOMAINS, comma separated)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level (debug|info|warn|error) (env SUBREG_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log format (text|json) (env SUBREG_LOG_FORMAT)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		err := loadDotEnv()
		if err != nil {
			return err
		}

		log, err := newLogger(c.ErrOrStderr(),
			flagOrEnv(c, "log-level", a.logLevel, "SUBREG_LOG_LEVEL"),
			flagOrEnv(c, "log-format", a.logFormat, "SUBREG_LOG_FORMAT"))
		if err != nil {
			return err
		}
		a.log = log.WithField("cmd", c.Name())

		a.cfg, err = a.loadConfig(c)
		if err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{
			"domains_dir": a.cfg.DomainsDir,
			"allowed":     a.cfg.AllowedDomains,
		}).Debug("Configuration loaded")
		return nil
	}

	cmd.AddCommand(newCmdValidate(a))
	cmd.AddCommand(newCmdList(a))
	cmd.AddCommand(newCmdReport(a))
	cmd.AddCommand(newCmdExport(a))
	cmd.AddCommand(newCmdSchema(a))
	return cmd
}

func main() {
	root := newRootCmd()
	err := root.ExecuteContext(context.Background())

	var exitErr ExitCodeError
	switch {
	case errors.As(err, &exitErr):
		os.Exit(exitErr.Code)
	case err != nil:
		logrus.WithError(err).Error("Failed")
		os.Exit(1)
	}
}
