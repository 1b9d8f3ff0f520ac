// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
	"slices"
	"strings"
)

// Config is the process-wide configuration of a validation run.
type Config struct {
	DomainsDir string   `yaml:"domains_dir" validate:"required"`
	Extensions []string `yaml:"extensions" validate:"required,min=1,dive,oneof=.json .yaml .yml"`

	// AllowedDomains are the parent domains subdomains may be registered under.
	AllowedDomains []string `yaml:"allowed_domains" validate:"required,min=1,dive,hostname_rfc1123"`

	// Lint only.
	ReservedSubdomains []string `yaml:"reserved_subdomains" validate:"dive,required"`
	KnownRepoHosts     []string `yaml:"known_repo_hosts" validate:"dive,hostname_rfc1123"`
}

func DefaultConfig() *Config {
	return &Config{
		DomainsDir:     "domains",
		Extensions:     []string{".json", ".yaml", ".yml"},
		AllowedDomains: []string{"r-u.live"},
		ReservedSubdomains: []string{
			"www", "mail", "ftp", "admin", "api", "app", "root", "dns", "ns1", "ns2",
			"smtp", "imap", "pop", "webmail", "status", "abuse", "security",
		},
		KnownRepoHosts: []string{"github.com", "gitlab.com", "bitbucket.org", "codeberg.org", "sourceforge.net"},
	}
}

// LoadConfig reads the config file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	return Query(DefaultConfig(), path)
}

// CanonicalDomain returns the lower-case ASCII (punycode) form of a domain name.
func CanonicalDomain(name string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if err != nil {
		return "", err
	}
	return strings.ToLower(ascii), nil
}

// Normalize brings the allow-list to lower-case ASCII form and drops
// duplicate entries.
func (c *Config) Normalize() error {
	var domains []string
	for _, d := range c.AllowedDomains {
		ascii, err := CanonicalDomain(d)
		if err != nil {
			return fmt.Errorf("allowed domain %q: %w", d, err)
		}
		if !slices.Contains(domains, ascii) {
			domains = append(domains, ascii)
		}
	}
	c.AllowedDomains = domains

	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}

func (c *Config) Validate() error {
	err := validate.Struct(c)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed on %q (value %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
