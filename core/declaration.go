// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMXPreference applies to MX values given as a bare host name.
const DefaultMXPreference = 10

type Owner struct {
	Repo  string `json:"repo"`
	Email string `json:"email"`
}

type CAA struct {
	Flags int    `json:"flags"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type SRV struct {
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Port     int    `json:"port"`
	Target   string `json:"target"`
}

type RecordSet struct {
	A     []string `json:"A,omitempty"`
	AAAA  []string `json:"AAAA,omitempty"`
	CNAME string   `json:"CNAME,omitempty"`
	MX    []string `json:"MX,omitempty"`
	TXT   []string `json:"TXT,omitempty"`
	NS    []string `json:"NS,omitempty"`
	CAA   []CAA    `json:"CAA,omitempty"`
	SRV   []SRV    `json:"SRV,omitempty"`
}

// Declaration is one subdomain's complete configuration record.
type Declaration struct {
	Description string    `json:"description"`
	Domain      string    `json:"domain"`
	Subdomain   string    `json:"subdomain"`
	Owner       Owner     `json:"owner"`
	Record      RecordSet `json:"record"`
	Proxied     *bool     `json:"proxied,omitempty"`
}

// Key returns the identity key of the declaration.
func (d *Declaration) Key() string {
	return d.Subdomain + "." + d.Domain
}

// IsProxied merges an absent flag with an explicit false.
// Only display code should rely on it.
func (d *Declaration) IsProxied() bool {
	return d.Proxied != nil && *d.Proxied
}

// wholeNumbers copies v with every whole-valued number rewritten as an int64,
// the form the integer rules accept and the int fields decode from.
func wholeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = wholeNumbers(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = wholeNumbers(e)
		}
		return s
	case json.Number, float64:
		if n, ok := toInteger(t); ok {
			return n
		}
	}
	return v
}

// DecodeDeclaration projects raw parsed content onto a Declaration.
// raw is not modified.
func DecodeDeclaration(raw any) (*Declaration, error) {
	b, err := json.Marshal(wholeNumbers(raw))
	if err != nil {
		return nil, err
	}

	d := &Declaration{}
	err = json.Unmarshal(b, d)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Record is one flattened record value, as listed or exported.
type Record struct {
	Type  string
	Value string
}

// Records flattens the set in record-type order, then value order.
func (r *RecordSet) Records() []Record {
	var records []Record
	add := func(typ string, values ...string) {
		for _, v := range values {
			records = append(records, Record{Type: typ, Value: v})
		}
	}

	add("A", r.A...)
	add("AAAA", r.AAAA...)
	if r.CNAME != "" {
		add("CNAME", r.CNAME)
	}
	add("MX", r.MX...)
	add("TXT", r.TXT...)
	add("NS", r.NS...)
	for _, caa := range r.CAA {
		add("CAA", fmt.Sprintf("%d %s %q", caa.Flags, caa.Tag, caa.Value))
	}
	for _, srv := range r.SRV {
		add("SRV", fmt.Sprintf("%d %d %d %s", srv.Priority, srv.Weight, srv.Port, srv.Target))
	}
	return records
}

// Types returns the record types present in the set.
func (r *RecordSet) Types() []string {
	var types []string
	for _, rec := range r.Records() {
		if len(types) == 0 || types[len(types)-1] != rec.Type {
			types = append(types, rec.Type)
		}
	}
	return types
}

// ParseMX splits an MX value of the form "[preference] host".
func ParseMX(value string) (uint16, string, error) {
	fields := strings.Fields(value)
	switch len(fields) {
	case 1:
		return DefaultMXPreference, fields[0], nil
	case 2:
		pref, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return 0, "", fmt.Errorf("MX preference %q: %w", fields[0], err)
		}
		return uint16(pref), fields[1], nil
	}
	return 0, "", fmt.Errorf("MX value %q is not of the form \"[preference] host\"", value)
}
