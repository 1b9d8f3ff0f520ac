// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"unicode/utf8"
)

// Shape is one node of the rule table.
type Shape interface {
	// Validate reports every violation found in v, located under path.
	Validate(path string, v any) []*SchemaError
	// JSONSchema renders the node as a JSON-Schema fragment.
	JSONSchema() map[string]any
}

var validate = validator.New()

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func typeError(path, want string, v any) []*SchemaError {
	return []*SchemaError{{
		Path:    path,
		Rule:    RuleType,
		Message: fmt.Sprintf("must be %s, got %s", want, typeName(v)),
	}}
}

// StringShape constrains a string value.
type StringShape struct {
	MinLength int
	Pattern   *regexp.Regexp
	// Format is a go-playground/validator tag such as "email" or "url".
	Format string
	// FormatName is the JSON-Schema format the tag stands for.
	FormatName string
}

// String returns an unconstrained string shape.
func String() *StringShape { return &StringShape{} }

func (s *StringShape) Min(n int) *StringShape {
	s.MinLength = n
	return s
}

func (s *StringShape) Match(expr string) *StringShape {
	s.Pattern = regexp.MustCompile(expr)
	return s
}

func (s *StringShape) As(formatName, tag string) *StringShape {
	s.FormatName = formatName
	s.Format = tag
	return s
}

func (s *StringShape) Validate(path string, v any) []*SchemaError {
	str, ok := v.(string)
	if !ok {
		return typeError(path, "a string", v)
	}

	var errs []*SchemaError
	if n := utf8.RuneCountInString(str); n < s.MinLength {
		errs = append(errs, &SchemaError{
			Path:    path,
			Rule:    RuleMinLength,
			Message: fmt.Sprintf("must be at least %d characters long, got %d", s.MinLength, n),
		})
	}
	if s.Pattern != nil && !s.Pattern.MatchString(str) {
		errs = append(errs, &SchemaError{
			Path:    path,
			Rule:    RulePattern,
			Message: fmt.Sprintf("%q does not match pattern %s", str, s.Pattern),
		})
	}
	if s.Format != "" {
		if err := validate.Var(str, s.Format); err != nil {
			errs = append(errs, &SchemaError{
				Path:    path,
				Rule:    RuleFormat,
				Message: fmt.Sprintf("%q is not a valid %s", str, s.FormatName),
			})
		}
	}
	return errs
}

func (s *StringShape) JSONSchema() map[string]any {
	doc := map[string]any{"type": "string"}
	if s.MinLength > 0 {
		doc["minLength"] = s.MinLength
	}
	if s.Pattern != nil {
		doc["pattern"] = s.Pattern.String()
	}
	if s.FormatName != "" {
		doc["format"] = s.FormatName
	}
	return doc
}

// AllowListShape accepts one of a configured set of domain names, compared
// byte for byte, and reports anything else as a DomainNotAllowedError.
// Allowed holds canonical names; a value whose canonical form is allowed is
// still rejected, with the form to write instead.
type AllowListShape struct {
	Allowed []string
}

func (s *AllowListShape) Validate(path string, v any) []*SchemaError {
	str, ok := v.(string)
	if !ok {
		return typeError(path, "a string", v)
	}
	if slices.Contains(s.Allowed, str) {
		return nil
	}
	err := &DomainNotAllowedError{Domain: str, Allowed: slices.Clone(s.Allowed)}
	if canonical, cerr := CanonicalDomain(str); cerr == nil && slices.Contains(s.Allowed, canonical) {
		err.Canonical = canonical
	}
	return []*SchemaError{{Path: path, Rule: RuleAllowList, Message: err.Error(), Err: err}}
}

func (s *AllowListShape) JSONSchema() map[string]any {
	return map[string]any{"type": "string", "enum": slices.Clone(s.Allowed)}
}

// IntegerShape constrains an integral number. Nil bounds are open.
type IntegerShape struct {
	Minimum *int64
	Maximum *int64
}

// Integer returns an integer shape bounded by [lo, hi].
func Integer(lo, hi int64) *IntegerShape {
	return &IntegerShape{Minimum: &lo, Maximum: &hi}
}

// NonNegative returns an integer shape with a lower bound of 0.
func NonNegative() *IntegerShape {
	var zero int64
	return &IntegerShape{Minimum: &zero}
}

func toInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInteger(f)
	}
	return 0, false
}

func (s *IntegerShape) Validate(path string, v any) []*SchemaError {
	n, ok := toInteger(v)
	if !ok {
		return typeError(path, "an integer", v)
	}
	switch {
	case s.Minimum != nil && n < *s.Minimum:
		return []*SchemaError{{Path: path, Rule: RuleMinimum, Message: fmt.Sprintf("must be >= %d, got %d", *s.Minimum, n)}}
	case s.Maximum != nil && n > *s.Maximum:
		return []*SchemaError{{Path: path, Rule: RuleMaximum, Message: fmt.Sprintf("must be <= %d, got %d", *s.Maximum, n)}}
	}
	return nil
}

func (s *IntegerShape) JSONSchema() map[string]any {
	doc := map[string]any{"type": "integer"}
	if s.Minimum != nil {
		doc["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		doc["maximum"] = *s.Maximum
	}
	return doc
}

// BooleanShape accepts true or false.
type BooleanShape struct{}

func (BooleanShape) Validate(path string, v any) []*SchemaError {
	if _, ok := v.(bool); !ok {
		return typeError(path, "a boolean", v)
	}
	return nil
}

func (BooleanShape) JSONSchema() map[string]any { return map[string]any{"type": "boolean"} }

// ArrayShape constrains a sequence whose every item matches Items.
type ArrayShape struct {
	Items Shape
}

// ArrayOf returns a sequence shape.
func ArrayOf(items Shape) *ArrayShape { return &ArrayShape{Items: items} }

func (s *ArrayShape) Validate(path string, v any) []*SchemaError {
	items, ok := v.([]any)
	if !ok {
		return typeError(path, "an array", v)
	}
	var errs []*SchemaError
	for i, item := range items {
		errs = append(errs, s.Items.Validate(indexPath(path, i), item)...)
	}
	return errs
}

func (s *ArrayShape) JSONSchema() map[string]any {
	return map[string]any{"type": "array", "items": s.Items.JSONSchema()}
}

// Field is one named member of an ObjectShape.
type Field struct {
	Name     string
	Required bool
	Shape    Shape
}

// ObjectShape constrains a mapping. Members are dispatched by name lookup.
type ObjectShape struct {
	Fields []Field

	// Strict rejects members not listed in Fields.
	Strict bool
	// UnknownMessage replaces the default message for rejected members.
	UnknownMessage string

	// MinFields is the minimum number of members.
	MinFields int
	// MinFieldsMessage replaces the default message for too few members.
	MinFieldsMessage string

	index map[string]Shape
}

// Object returns a strict object shape with the given members.
func Object(fields ...Field) *ObjectShape {
	s := &ObjectShape{Fields: fields, Strict: true, index: make(map[string]Shape, len(fields))}
	for _, f := range fields {
		s.index[f.Name] = f.Shape
	}
	return s
}

// Lenient accepts members not listed in Fields.
func (s *ObjectShape) Lenient() *ObjectShape {
	s.Strict = false
	return s
}

func (s *ObjectShape) Validate(path string, v any) []*SchemaError {
	m, ok := v.(map[string]any)
	if !ok {
		return typeError(path, "an object", v)
	}

	var errs []*SchemaError
	for _, f := range s.Fields {
		if _, ok := m[f.Name]; f.Required && !ok {
			errs = append(errs, &SchemaError{Path: joinPath(path, f.Name), Rule: RuleRequired, Message: "missing required field"})
		}
	}

	if len(m) < s.MinFields {
		msg := s.MinFieldsMessage
		if msg == "" {
			msg = fmt.Sprintf("must have at least %d entries", s.MinFields)
		}
		errs = append(errs, &SchemaError{Path: path, Rule: RuleMinProperties, Message: msg})
	}

	for _, name := range slices.Sorted(maps.Keys(m)) {
		shape, ok := s.index[name]
		switch {
		case ok:
			errs = append(errs, shape.Validate(joinPath(path, name), m[name])...)
		case s.Strict:
			msg := s.UnknownMessage
			if msg == "" {
				msg = "unknown field"
			}
			errs = append(errs, &SchemaError{Path: joinPath(path, name), Rule: RuleAdditional, Message: msg})
		}
	}

	return errs
}

func (s *ObjectShape) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		properties[f.Name] = f.Shape.JSONSchema()
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": !s.Strict,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	if s.MinFields > 0 {
		doc["minProperties"] = s.MinFields
	}
	return doc
}
