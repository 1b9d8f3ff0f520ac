// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"slices"
	"strings"
)

// StructuralResult is the outcome of validating one declaration alone.
type StructuralResult struct {
	Valid  bool
	Errors []*SchemaError
}

type Validator struct {
	schema *Schema
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{schema: NewSchema(cfg)}
}

func (v *Validator) Schema() *Schema { return v.schema }

// ValidateOne checks raw against every per-field rule and collects all
// violations in one pass.
func (v *Validator) ValidateOne(raw any) *StructuralResult {
	errs := v.schema.ValidateAgainstSchema(raw)
	return &StructuralResult{Valid: len(errs) == 0, Errors: errs}
}

// Entry is a structurally valid declaration and the file it came from.
type Entry struct {
	File        string
	Declaration *Declaration
}

// CrossRecordResult is the outcome of validating the collection as a whole.
type CrossRecordResult struct {
	Errors []*DuplicateKeyError
}

func (r *CrossRecordResult) Valid() bool { return r == nil || len(r.Errors) == 0 }

// ValidateCollection reports every identity key claimed by more than one
// declaration. Entries are taken in file name order, so the first file by
// name owns the key whatever order the caller passed them in.
func ValidateCollection(entries []Entry) *CrossRecordResult {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return strings.Compare(a.File, b.File) })

	result := &CrossRecordResult{}
	claimed := make(map[string]string, len(sorted))
	for _, e := range sorted {
		key := e.Declaration.Key()
		if first, exist := claimed[key]; exist {
			result.Errors = append(result.Errors, &DuplicateKeyError{Key: key, File: e.File, FirstFile: first})
			continue
		}
		claimed[key] = e.File
	}
	return result
}
