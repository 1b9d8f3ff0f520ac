// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/spf13/cobra"
)

func newCmdReport(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print registry statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, listed, err := a.loadDeclarations(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			decls := make([]*core.Declaration, 0, len(listed))
			for _, l := range listed {
				decls = append(decls, l.Declaration)
			}
			stats := core.Summarize(decls)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Files int `json:"files"`
					*core.Stats
				}{len(files), stats})
			}

			fmt.Fprintln(out, "Registry report")
			fmt.Fprintln(out, "===============")
			fmt.Fprintf(out, "Total subdomains: %d\n", len(files))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Record types:")
			for _, typ := range stats.Types() {
				fmt.Fprintf(out, "  - %s: %d\n", typ, stats.RecordTypes[typ])
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Proxied status:")
			fmt.Fprintf(out, "  - Proxied: %d\n", stats.Proxied)
			fmt.Fprintf(out, "  - Not proxied: %d\n", stats.NotProxied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the statistics as JSON")
	return cmd
}
