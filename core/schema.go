// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"maps"
	"slices"
)

const (
	SubdomainPattern = `^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`
	IPv4Pattern      = `^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`
)

// RecordTypes maps a DNS record-type tag to the shape of its value.
// Adding a record type is a new entry here; validator control flow is untouched.
var RecordTypes = map[string]Shape{
	"A":     ArrayOf(String().Match(IPv4Pattern)),
	"AAAA":  ArrayOf(String()),
	"CNAME": String(),
	"MX":    ArrayOf(String()),
	"TXT":   ArrayOf(String()),
	"NS":    ArrayOf(String()),
	"CAA": ArrayOf(Object(
		Field{Name: "flags", Required: true, Shape: NonNegative()},
		Field{Name: "tag", Required: true, Shape: String()},
		Field{Name: "value", Required: true, Shape: String()},
	).Lenient()),
	"SRV": ArrayOf(Object(
		Field{Name: "priority", Required: true, Shape: NonNegative()},
		Field{Name: "weight", Required: true, Shape: NonNegative()},
		Field{Name: "port", Required: true, Shape: Integer(1, 65535)},
		Field{Name: "target", Required: true, Shape: String()},
	).Lenient()),
}

// Schema is the rule table of a subdomain declaration.
type Schema struct {
	root *ObjectShape
}

func recordSetShape() *ObjectShape {
	var fields []Field
	for _, typ := range slices.Sorted(maps.Keys(RecordTypes)) {
		fields = append(fields, Field{Name: typ, Shape: RecordTypes[typ]})
	}

	s := Object(fields...)
	s.UnknownMessage = "unrecognized record type"
	s.MinFields = 1
	s.MinFieldsMessage = "no DNS records specified"
	return s
}

// NewSchema builds the declaration schema with the allow-list from cfg.
func NewSchema(cfg *Config) *Schema {
	owner := Object(
		Field{Name: "repo", Required: true, Shape: String().As("uri", "url")},
		Field{Name: "email", Required: true, Shape: String().As("email", "email")},
	)

	return &Schema{root: Object(
		Field{Name: "description", Required: true, Shape: String().Min(3)},
		Field{Name: "domain", Required: true, Shape: &AllowListShape{Allowed: slices.Clone(cfg.AllowedDomains)}},
		Field{Name: "subdomain", Required: true, Shape: String().Match(SubdomainPattern)},
		Field{Name: "owner", Required: true, Shape: owner},
		Field{Name: "record", Required: true, Shape: recordSetShape()},
		Field{Name: "proxied", Shape: BooleanShape{}},
	)}
}

// ValidateAgainstSchema reports every violation of the schema found in raw.
// The order of the errors is stable for a given input.
func (s *Schema) ValidateAgainstSchema(raw any) []*SchemaError {
	return s.root.Validate("", raw)
}

// JSONSchema renders the rule table as a JSON-Schema document.
func (s *Schema) JSONSchema() map[string]any {
	doc := s.root.JSONSchema()
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	doc["title"] = "Subdomain declaration"
	return doc
}
