// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"strings"
)

// Rules violated by a SchemaError.
const (
	RuleRequired      = "required"
	RuleType          = "type"
	RuleMinLength     = "minLength"
	RulePattern       = "pattern"
	RuleFormat        = "format"
	RuleAllowList     = "allowList"
	RuleMinimum       = "minimum"
	RuleMaximum       = "maximum"
	RuleAdditional    = "additionalProperties"
	RuleMinProperties = "minProperties"
	RuleDecode        = "decode"
)

// ParseError reports a file whose content is not structured data.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports one path of a declaration violating one rule.
type SchemaError struct {
	Path    string
	Rule    string
	Message string

	// Err is the typed cause, if any.
	Err error
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func (e *SchemaError) Unwrap() error { return e.Err }

// DomainNotAllowedError reports a parent domain outside the allow-list.
type DomainNotAllowedError struct {
	Domain  string
	Allowed []string

	// Canonical is the allowed form of Domain, when Domain is an allowed
	// name written in another form.
	Canonical string
}

func (e *DomainNotAllowedError) Error() string {
	if e.Canonical != "" {
		return fmt.Sprintf("domain %q is not allowed, write it as %q, must be one of: %s", e.Domain, e.Canonical, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("domain %q is not allowed, must be one of: %s", e.Domain, strings.Join(e.Allowed, ", "))
}

// DuplicateKeyError reports a declaration whose identity key was already
// claimed by an earlier file.
type DuplicateKeyError struct {
	Key       string
	File      string
	FirstFile string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate subdomain %q (also in %s)", e.Key, e.FirstFile)
}
