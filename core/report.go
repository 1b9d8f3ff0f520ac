// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

// FileResult is everything known about one file after structural validation.
type FileResult struct {
	File string

	// Exactly one of ParseErr and Structural is set.
	ParseErr   *ParseError
	Structural *StructuralResult

	Warnings []*Warning
}

func (r *FileResult) ok() bool {
	return r.ParseErr == nil && r.Structural != nil && r.Structural.Valid
}

type Diagnostic struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Report is the final outcome of a validation run.
type Report struct {
	Passed     bool `json:"passed"`
	TotalFiles int  `json:"total_files"`
	ValidCount int  `json:"valid_count"`
	ErrorCount int  `json:"error_count"`

	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// BuildReport merges per-file results and the cross-record result.
// A file counts as an error when it failed to parse, failed structural
// validation or duplicates an earlier file. Diagnostics are grouped by file
// in the order of files.
func BuildReport(files []*FileResult, cross *CrossRecordResult) *Report {
	duplicates := map[string][]*DuplicateKeyError{}
	if cross != nil {
		for _, e := range cross.Errors {
			duplicates[e.File] = append(duplicates[e.File], e)
		}
	}

	r := &Report{
		TotalFiles: len(files),
		Errors:     []Diagnostic{},
		Warnings:   []Diagnostic{},
	}

	for _, f := range files {
		before := len(r.Errors)

		switch {
		case f.ParseErr != nil:
			r.Errors = append(r.Errors, Diagnostic{File: f.File, Message: f.ParseErr.Err.Error()})
		case f.Structural == nil:
			r.Errors = append(r.Errors, Diagnostic{File: f.File, Message: "not validated"})
		default:
			for _, e := range f.Structural.Errors {
				r.Errors = append(r.Errors, Diagnostic{File: f.File, Message: e.Error()})
			}
		}

		for _, e := range duplicates[f.File] {
			r.Errors = append(r.Errors, Diagnostic{File: f.File, Message: e.Error()})
		}
		delete(duplicates, f.File)

		for _, w := range f.Warnings {
			r.Warnings = append(r.Warnings, Diagnostic{File: f.File, Message: w.Error()})
		}

		if len(r.Errors) > before || !f.ok() {
			r.ErrorCount++
		} else {
			r.ValidCount++
		}
	}

	// Duplicates of files the caller did not pass keep their relative order.
	if cross != nil {
		for _, e := range cross.Errors {
			if _, left := duplicates[e.File]; left {
				r.Errors = append(r.Errors, Diagnostic{File: e.File, Message: e.Error()})
			}
		}
	}

	r.Passed = r.ErrorCount == 0 && cross.Valid()
	return r
}
