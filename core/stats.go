// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"maps"
	"slices"
)

// Stats are registry-wide counters for display.
type Stats struct {
	Declarations int `json:"declarations"`

	// RecordTypes counts declarations per record type present.
	RecordTypes map[string]int `json:"record_types"`

	// NotProxied merges an absent proxied flag with an explicit false.
	Proxied    int `json:"proxied"`
	NotProxied int `json:"not_proxied"`
}

func Summarize(decls []*Declaration) *Stats {
	s := &Stats{Declarations: len(decls), RecordTypes: map[string]int{}}
	for _, d := range decls {
		for _, typ := range d.Record.Types() {
			s.RecordTypes[typ]++
		}
		if d.IsProxied() {
			s.Proxied++
		} else {
			s.NotProxied++
		}
	}
	return s
}

// Types returns the counted record types in name order.
func (s *Stats) Types() []string {
	return slices.Sorted(maps.Keys(s.RecordTypes))
}
