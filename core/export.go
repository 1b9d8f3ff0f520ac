// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// Exporter renders validated declarations into a foreign format.
type Exporter interface {
	Export(w io.Writer, entries []Entry) error
}

type ExporterBuilder func(params map[string]string) (Exporter, error)

// ExporterBuilders is filled by exporter packages from init.
var ExporterBuilders = map[string]ExporterBuilder{}

func BuildExporter(name string, params map[string]string) (Exporter, error) {
	build, ok := ExporterBuilders[name]
	if !ok {
		return nil, fmt.Errorf("no exporter called %s, available: %v", name, ExporterNames())
	}
	return build(params)
}

func ExporterNames() []string {
	return slices.Sorted(maps.Keys(ExporterBuilders))
}
