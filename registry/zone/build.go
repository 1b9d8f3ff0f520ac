// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package zone

import (
	"bufio"
	"fmt"
	"github.com/autodns/subreg.go/core"
	"github.com/miekg/dns"
	"io"
	"net"
	"strconv"
)

const defaultTTL = 3600

// Registry renders declarations as master-file resource records.
type Registry struct {
	TTL uint32

	// Origin restricts the output to one parent domain and emits $ORIGIN.
	Origin string
}

func (r *Registry) header(name string, rrtype uint16) dns.RR_Header {
	return dns.RR_Header{Name: dns.Fqdn(name), Rrtype: rrtype, Class: dns.ClassINET, Ttl: r.TTL}
}

// RRs builds the resource records of every declaration, in entry order.
func (r *Registry) RRs(entries []core.Entry) ([]dns.RR, error) {
	var rrs []dns.RR

	for _, e := range entries {
		d := e.Declaration
		if r.Origin != "" && d.Domain != r.Origin {
			continue
		}
		name := d.Key()

		for _, v := range d.Record.A {
			ip := net.ParseIP(v).To4()
			if ip == nil {
				return nil, fmt.Errorf("%s: invalid A address %q", e.File, v)
			}
			rrs = append(rrs, &dns.A{Hdr: r.header(name, dns.TypeA), A: ip})
		}
		for _, v := range d.Record.AAAA {
			ip := net.ParseIP(v)
			if ip == nil || ip.To4() != nil {
				return nil, fmt.Errorf("%s: invalid AAAA address %q", e.File, v)
			}
			rrs = append(rrs, &dns.AAAA{Hdr: r.header(name, dns.TypeAAAA), AAAA: ip})
		}
		if d.Record.CNAME != "" {
			rrs = append(rrs, &dns.CNAME{Hdr: r.header(name, dns.TypeCNAME), Target: dns.Fqdn(d.Record.CNAME)})
		}
		for _, v := range d.Record.MX {
			pref, host, err := core.ParseMX(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.File, err)
			}
			rrs = append(rrs, &dns.MX{Hdr: r.header(name, dns.TypeMX), Preference: pref, Mx: dns.Fqdn(host)})
		}
		for _, v := range d.Record.TXT {
			rrs = append(rrs, &dns.TXT{Hdr: r.header(name, dns.TypeTXT), Txt: []string{v}})
		}
		for _, v := range d.Record.NS {
			rrs = append(rrs, &dns.NS{Hdr: r.header(name, dns.TypeNS), Ns: dns.Fqdn(v)})
		}
		for _, caa := range d.Record.CAA {
			if caa.Flags > 255 {
				return nil, fmt.Errorf("%s: CAA flags %d out of range", e.File, caa.Flags)
			}
			rrs = append(rrs, &dns.CAA{Hdr: r.header(name, dns.TypeCAA), Flag: uint8(caa.Flags), Tag: caa.Tag, Value: caa.Value})
		}
		for _, srv := range d.Record.SRV {
			if srv.Priority > 65535 || srv.Weight > 65535 {
				return nil, fmt.Errorf("%s: SRV priority or weight out of range", e.File)
			}
			rrs = append(rrs, &dns.SRV{
				Hdr:      r.header(name, dns.TypeSRV),
				Priority: uint16(srv.Priority),
				Weight:   uint16(srv.Weight),
				Port:     uint16(srv.Port),
				Target:   dns.Fqdn(srv.Target),
			})
		}
	}

	return rrs, nil
}

func (r *Registry) Export(w io.Writer, entries []core.Entry) error {
	rrs, err := r.RRs(entries)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if r.Origin != "" {
		fmt.Fprintf(bw, "$ORIGIN %s\n", dns.Fqdn(r.Origin))
	}
	fmt.Fprintf(bw, "$TTL %d\n", r.TTL)
	for _, rr := range rrs {
		fmt.Fprintln(bw, rr.String())
	}
	return bw.Flush()
}

func Build(config map[string]string) (core.Exporter, error) {
	r := &Registry{TTL: defaultTTL, Origin: config["origin"]}

	if v, ok := config["ttl"]; ok {
		ttl, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("zone: invalid ttl %q", v)
		}
		r.TTL = uint32(ttl)
	}

	return r, nil
}

func init() {
	core.ExporterBuilders["zone"] = Build
}
