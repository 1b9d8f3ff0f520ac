// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"errors"
	"fmt"
)

type RunState int

const (
	NotRun RunState = iota
	Running
	Passed
	Failed
)

func (s RunState) String() string {
	switch s {
	case NotRun:
		return "not run"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

var ErrRunStarted = errors.New("validation run already started")

// Run is one validation pass over the full current file set.
// A Run executes once; start a new Run to validate again.
type Run struct {
	cfg       *Config
	validator *Validator

	state   RunState
	files   []*File
	results []*FileResult
	entries []Entry
	report  *Report
}

func NewRun(cfg *Config) *Run {
	return &Run{cfg: cfg, validator: NewValidator(cfg)}
}

func (r *Run) State() RunState { return r.state }

// Files returns the loaded files, including those that failed to parse.
func (r *Run) Files() []*File { return r.files }

// Results returns the per-file results in file order.
func (r *Run) Results() []*FileResult { return r.results }

// Entries returns the structurally valid declarations in file order.
func (r *Run) Entries() []Entry { return r.entries }

func (r *Run) Report() *Report { return r.report }

// Execute loads every declaration in the configured directory and validates
// it. The returned error is only set when the directory itself is unreadable.
func (r *Run) Execute() (*Report, error) {
	if r.state != NotRun {
		return nil, ErrRunStarted
	}
	r.state = Running

	files, err := LoadAll(r.cfg.DomainsDir, r.cfg.Extensions...)
	if err != nil {
		r.state = Failed
		return nil, err
	}
	r.files = files

	r.results, r.entries = CheckFiles(r.validator, r.cfg, files)
	r.report = BuildReport(r.results, ValidateCollection(r.entries))

	if r.report.Passed {
		r.state = Passed
	} else {
		r.state = Failed
	}
	return r.report, nil
}

// CheckFiles validates every file alone and lints the valid ones.
// It returns the per-file results and the entries eligible for
// cross-record validation.
func CheckFiles(v *Validator, cfg *Config, files []*File) ([]*FileResult, []Entry) {
	results := make([]*FileResult, 0, len(files))
	var entries []Entry

	for _, f := range files {
		result := &FileResult{File: f.Name}
		results = append(results, result)

		if f.ParseErr != nil {
			result.ParseErr = f.ParseErr
			continue
		}

		result.Structural = v.ValidateOne(f.Raw)
		if !result.Structural.Valid {
			continue
		}

		d, err := DecodeDeclaration(f.Raw)
		if err != nil {
			result.Structural = &StructuralResult{Errors: []*SchemaError{{Rule: RuleDecode, Message: err.Error(), Err: err}}}
			continue
		}

		result.Warnings = Lint(d, cfg)
		entries = append(entries, Entry{File: f.Name, Declaration: d})
	}

	return results, entries
}
