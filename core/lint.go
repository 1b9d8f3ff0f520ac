// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"github.com/miekg/dns"
	"net/netip"
	"net/url"
	"slices"
	"strings"
)

// Warning is a lint finding. Warnings never fail a run.
type Warning struct {
	Path    string
	Message string
}

func (w *Warning) Error() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

func addrClass(addr netip.Addr) string {
	switch {
	case addr.IsUnspecified():
		return "an unspecified"
	case addr.IsLoopback():
		return "a loopback"
	case addr.IsPrivate():
		return "a private"
	case addr.IsMulticast():
		return "a multicast"
	case addr.IsLinkLocalUnicast():
		return "a link-local"
	}
	return ""
}

func underDomain(name, parent string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	return name == parent || strings.HasSuffix(name, "."+parent)
}

// Lint reports questionable but structurally valid content of d.
func Lint(d *Declaration, cfg *Config) []*Warning {
	var warnings []*Warning
	warn := func(path, format string, args ...any) {
		warnings = append(warnings, &Warning{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	sub := strings.ToLower(d.Subdomain)
	if slices.Contains(cfg.ReservedSubdomains, sub) {
		warn("subdomain", "%q is a reserved name", d.Subdomain)
	}
	if strings.Contains(sub, "--") {
		warn("subdomain", "%q contains consecutive hyphens", d.Subdomain)
	}

	for i, value := range d.Record.A {
		addr, err := netip.ParseAddr(value)
		if err != nil {
			continue
		}
		if class := addrClass(addr); class != "" {
			warn(indexPath("record.A", i), "%s is %s address", value, class)
		}
	}

	for i, value := range d.Record.AAAA {
		addr, err := netip.ParseAddr(value)
		switch {
		case err != nil || !addr.Is6() || addr.Is4In6():
			warn(indexPath("record.AAAA", i), "%q is not an IPv6 address", value)
		case addrClass(addr) != "":
			warn(indexPath("record.AAAA", i), "%s is %s address", value, addrClass(addr))
		}
	}

	checkTarget := func(path, target string) {
		if _, ok := dns.IsDomainName(target); !ok || target == "" {
			warn(path, "%q is not a valid domain name", target)
		}
	}

	if cname := d.Record.CNAME; cname != "" {
		checkTarget("record.CNAME", cname)
		for _, parent := range cfg.AllowedDomains {
			if underDomain(cname, parent) {
				warn("record.CNAME", "%q points back into %s", cname, parent)
				break
			}
		}
		if len(d.Record.Types()) > 1 {
			warn("record.CNAME", "CNAME cannot coexist with other record types")
		}
	}
	for i, value := range d.Record.MX {
		_, host, err := ParseMX(value)
		if err != nil {
			warn(indexPath("record.MX", i), "%v", err)
			continue
		}
		checkTarget(indexPath("record.MX", i), host)
	}
	for i, value := range d.Record.NS {
		checkTarget(indexPath("record.NS", i), value)
	}
	for i, srv := range d.Record.SRV {
		checkTarget(indexPath("record.SRV", i)+".target", srv.Target)
	}

	if u, err := url.Parse(d.Owner.Repo); err == nil && len(cfg.KnownRepoHosts) > 0 {
		host := u.Hostname()
		if !slices.ContainsFunc(cfg.KnownRepoHosts, func(h string) bool { return underDomain(host, h) }) {
			warn("owner.repo", "%q is not hosted on a known git service", d.Owner.Repo)
		}
	}

	return warnings
}
