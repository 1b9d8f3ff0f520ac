// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"errors"
	"reflect"
	"testing"
)

func validResult(file string, warnings ...*Warning) *FileResult {
	return &FileResult{File: file, Structural: &StructuralResult{Valid: true}, Warnings: warnings}
}

func TestBuildReportPassed(t *testing.T) {
	files := []*FileResult{
		validResult("a.json"),
		validResult("b.yaml", &Warning{Path: "subdomain", Message: `"www" is a reserved name`}),
	}

	r := BuildReport(files, &CrossRecordResult{})
	want := &Report{
		Passed:     true,
		TotalFiles: 2,
		ValidCount: 2,
		Errors:     []Diagnostic{},
		Warnings:   []Diagnostic{{File: "b.yaml", Message: `subdomain: "www" is a reserved name`}},
	}
	if !reflect.DeepEqual(r, want) {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil, nil)
	if !r.Passed || r.TotalFiles != 0 || r.ErrorCount != 0 {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestBuildReportFailed(t *testing.T) {
	files := []*FileResult{
		validResult("a.json"),
		{File: "b.json", ParseErr: &ParseError{File: "b.json", Err: errors.New("unexpected EOF")}},
		{File: "c.json", Structural: &StructuralResult{Errors: []*SchemaError{
			{Path: "description", Rule: RuleMinLength, Message: "must be at least 3 characters long, got 2"},
			{Path: "record", Rule: RuleMinProperties, Message: "no DNS records specified"},
		}}},
		validResult("d.json"),
	}
	cross := &CrossRecordResult{Errors: []*DuplicateKeyError{
		{Key: "api.r-u.live", File: "d.json", FirstFile: "a.json"},
	}}

	r := BuildReport(files, cross)
	want := &Report{
		Passed:     false,
		TotalFiles: 4,
		ValidCount: 1,
		ErrorCount: 3,
		Errors: []Diagnostic{
			{File: "b.json", Message: "unexpected EOF"},
			{File: "c.json", Message: "description: must be at least 3 characters long, got 2"},
			{File: "c.json", Message: "record: no DNS records specified"},
			{File: "d.json", Message: `duplicate subdomain "api.r-u.live" (also in a.json)`},
		},
		Warnings: []Diagnostic{},
	}
	if !reflect.DeepEqual(r, want) {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestBuildReportDuplicateOfUnknownFile(t *testing.T) {
	files := []*FileResult{validResult("a.json")}
	cross := &CrossRecordResult{Errors: []*DuplicateKeyError{
		{Key: "api.r-u.live", File: "z.json", FirstFile: "a.json"},
	}}

	r := BuildReport(files, cross)
	if r.Passed {
		t.Errorf("report passed with a duplicate")
	}
	if len(r.Errors) != 1 || r.Errors[0].File != "z.json" {
		t.Errorf("unexpected errors %v", r.Errors)
	}
}

func TestBuildReportIdempotent(t *testing.T) {
	files := []*FileResult{
		validResult("a.json"),
		{File: "b.json", Structural: &StructuralResult{Errors: []*SchemaError{{Path: "domain", Rule: RuleAllowList, Message: "not allowed"}}}},
		validResult("c.json"),
	}
	cross := &CrossRecordResult{Errors: []*DuplicateKeyError{{Key: "x.r-u.live", File: "c.json", FirstFile: "a.json"}}}

	first := BuildReport(files, cross)
	second := BuildReport(files, cross)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
	if len(cross.Errors) != 1 || len(files) != 3 || files[1].Structural.Valid {
		t.Errorf("inputs were modified")
	}
}
