// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package cloudflare

import (
	"encoding/json"
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/cloudflare/cloudflare-go"
	"io"
	"strconv"
)

// TTL 1 lets Cloudflare choose.
const autoTTL = 1

const maxCommentLength = 100

// Registry turns declarations into the record parameters a deploy job
// pushes to the Cloudflare API. It never calls the API itself.
type Registry struct {
	TTL int

	// Zone restricts the plan to declarations under one parent domain.
	Zone string
}

func comment(description string) string {
	r := []rune(description)
	if len(r) > maxCommentLength {
		return string(r[:maxCommentLength])
	}
	return description
}

// Plan builds the record parameters of every declaration, in entry order.
func (r *Registry) Plan(entries []core.Entry) ([]cloudflare.CreateDNSRecordParams, error) {
	plan := []cloudflare.CreateDNSRecordParams{}

	for _, e := range entries {
		d := e.Declaration
		if r.Zone != "" && d.Domain != r.Zone {
			continue
		}

		base := cloudflare.CreateDNSRecordParams{
			Name:    d.Key(),
			TTL:     r.TTL,
			Comment: comment(d.Description),
		}
		proxied := d.IsProxied()

		add := func(params cloudflare.CreateDNSRecordParams) {
			plan = append(plan, params)
		}
		proxiable := func(typ, content string) cloudflare.CreateDNSRecordParams {
			p := base
			p.Type = typ
			p.Content = content
			p.Proxied = &proxied
			return p
		}
		plain := func(typ, content string) cloudflare.CreateDNSRecordParams {
			p := base
			p.Type = typ
			p.Content = content
			return p
		}

		for _, v := range d.Record.A {
			add(proxiable("A", v))
		}
		for _, v := range d.Record.AAAA {
			add(proxiable("AAAA", v))
		}
		if d.Record.CNAME != "" {
			add(proxiable("CNAME", d.Record.CNAME))
		}
		for _, v := range d.Record.MX {
			pref, host, err := core.ParseMX(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.File, err)
			}
			p := plain("MX", host)
			p.Priority = &pref
			add(p)
		}
		for _, v := range d.Record.TXT {
			add(plain("TXT", v))
		}
		for _, v := range d.Record.NS {
			add(plain("NS", v))
		}
		for _, caa := range d.Record.CAA {
			p := plain("CAA", "")
			p.Data = map[string]any{"flags": caa.Flags, "tag": caa.Tag, "value": caa.Value}
			add(p)
		}
		for _, srv := range d.Record.SRV {
			p := plain("SRV", "")
			p.Data = map[string]any{"priority": srv.Priority, "weight": srv.Weight, "port": srv.Port, "target": srv.Target}
			add(p)
		}
	}

	return plan, nil
}

func (r *Registry) Export(w io.Writer, entries []core.Entry) error {
	plan, err := r.Plan(entries)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func Build(config map[string]string) (core.Exporter, error) {
	r := &Registry{TTL: autoTTL, Zone: config["zone"]}

	if v, ok := config["ttl"]; ok {
		ttl, err := strconv.Atoi(v)
		if err != nil || ttl < autoTTL {
			return nil, fmt.Errorf("cloudflare: invalid ttl %q", v)
		}
		r.TTL = ttl
	}

	return r, nil
}

func init() {
	core.ExporterBuilders["cloudflare"] = Build
}
