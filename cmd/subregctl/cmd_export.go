// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/spf13/cobra"
	"strings"
)

func newCmdExport(a *app) *cobra.Command {
	var (
		format string
		params map[string]string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a valid registry as DNS records",
		Long: "Render a valid registry as DNS records.\n\nFormats: " + strings.Join(core.ExporterNames(), ", ") +
			"\nParams: ttl=<seconds>, zone=<domain> (cloudflare), origin=<domain> (zone)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := core.BuildExporter(format, params)
			if err != nil {
				return err
			}

			run, err := a.validate()
			if err != nil {
				return err
			}
			if run.State() != core.Passed {
				for _, d := range run.Report().Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.File, d.Message)
				}
				a.log.WithField("errors", run.Report().ErrorCount).Error("Refusing to export an invalid registry")
				return ExitCodeError{Code: 1}
			}

			a.log.WithField("format", format).WithField("declarations", len(run.Entries())).Info("Exporting")
			return exporter.Export(cmd.OutOrStdout(), run.Entries())
		},
	}

	cmd.Flags().StringVar(&format, "format", "zone", "Output format")
	cmd.Flags().StringToStringVar(&params, "param", nil, "Exporter parameter key=value, repeatable")
	return cmd
}
