// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func newCmdValidate(a *app) *cobra.Command {
	var (
		asJSON   bool
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every declaration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return a.watch(cmd, interval, asJSON)
			}

			run, err := a.validate()
			if err != nil {
				return err
			}
			err = printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), run.Report(), asJSON)
			if err != nil {
				return err
			}
			if run.State() != core.Passed {
				return ExitCodeError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "Validate again every interval until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Interval between runs with --watch")
	return cmd
}

// validate executes one fresh run over the configured directory.
func (a *app) validate() (*core.Run, error) {
	run := core.NewRun(a.cfg)

	startAt := time.Now()
	report, err := run.Execute()
	if err != nil {
		a.log.WithError(err).Error("Validation aborted")
		return nil, err
	}

	a.log.WithFields(logrus.Fields{
		"state":   run.State().String(),
		"files":   report.TotalFiles,
		"valid":   report.ValidCount,
		"errors":  report.ErrorCount,
		"elapsed": time.Since(startAt).Seconds(),
	}).Info("Validation finished")
	return run, nil
}

// printReport writes diagnostics to errOut and the summary to out.
func printReport(out, errOut io.Writer, report *core.Report, asJSON bool) error {
	for _, d := range report.Errors {
		fmt.Fprintf(errOut, "%s: %s\n", d.File, d.Message)
	}
	for _, d := range report.Warnings {
		fmt.Fprintf(errOut, "warning: %s: %s\n", d.File, d.Message)
	}

	if asJSON {
		return writeJSON(out, report)
	}

	fmt.Fprintln(out, "Validation summary:")
	fmt.Fprintf(out, "Total files: %d\n", report.TotalFiles)
	fmt.Fprintf(out, "Valid: %d\n", report.ValidCount)
	fmt.Fprintf(out, "Errors: %d\n", report.ErrorCount)
	if report.Passed {
		fmt.Fprintln(out, "All declarations are valid.")
	} else {
		fmt.Fprintln(out, "Validation failed.")
	}
	return nil
}

func (a *app) watch(cmd *cobra.Command, interval time.Duration, asJSON bool) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick := make(chan struct{})
	go func() {
		_ = TimerNotify(ctx, interval, tick)
	}()

	for {
		run, err := a.validate()
		if err != nil {
			return err
		}
		err = printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), run.Report(), asJSON)
		if err != nil {
			return err
		}

		select {
		case <-tick:
		case <-ctx.Done():
			a.log.Info("Stop watching")
			return nil
		}
	}
}
