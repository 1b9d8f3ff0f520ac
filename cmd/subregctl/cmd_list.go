// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/spf13/cobra"
	"io"
)

type listedFile struct {
	File        string
	Declaration *core.Declaration
}

// loadDeclarations decodes every parseable file without validating it.
// Files that cannot be decoded are reported on errOut and skipped.
func (a *app) loadDeclarations(errOut io.Writer) (files []*core.File, listed []listedFile, err error) {
	files, err = core.LoadAll(a.cfg.DomainsDir, a.cfg.Extensions...)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range files {
		if f.ParseErr != nil {
			fmt.Fprintf(errOut, "Error processing %s: %v\n", f.Name, f.ParseErr.Err)
			continue
		}
		d, err := core.DecodeDeclaration(f.Raw)
		if err != nil {
			fmt.Fprintf(errOut, "Error processing %s: %v\n", f.Name, err)
			continue
		}
		listed = append(listed, listedFile{File: f.Name, Declaration: d})
	}

	a.log.WithField("files", len(files)).WithField("decoded", len(listed)).Debug("Declarations loaded")
	return files, listed, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func newCmdList(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered subdomains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, listed, err := a.loadDeclarations(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Subdomain registry")
			fmt.Fprintln(out, "==================")

			for i, l := range listed {
				d := l.Declaration
				fmt.Fprintf(out, "%d. %s - %s\n", i+1, d.Key(), d.Description)
				fmt.Fprintf(out, "   Owner: %s\n", d.Owner.Email)
				fmt.Fprintf(out, "   Proxied: %s\n", yesNo(d.IsProxied()))
				fmt.Fprintln(out, "   Records:")
				for _, rec := range d.Record.Records() {
					fmt.Fprintf(out, "     - %s: %s\n", rec.Type, rec.Value)
				}
				fmt.Fprintln(out)
			}

			fmt.Fprintf(out, "Total subdomains: %d\n", len(listed))
			return nil
		},
	}
}
