// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"github.com/autodns/subreg.go/core"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const declTest = `{
  "description": "Test project",
  "domain": "r-u.live",
  "subdomain": "test",
  "owner": {"repo": "https://github.com/u/r", "email": "a@b.com"},
  "record": {"A": ["192.0.2.1"]},
  "proxied": true
}`

const declMail = `description: Mail relay
domain: r-u.live
subdomain: mail
owner:
  repo: https://gitlab.com/u/mail
  email: b@c.org
record:
  MX:
    - 5 mx.example.com
  TXT:
    - v=spf1 -all
`

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// clearEnv empties every SUBREG_ variable the test did not set itself.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"SUBREG_CONFIG", "SUBREG_DOMAINS_DIR", "SUBREG_ALLOWED_DOMAINS", "SUBREG_LOG_LEVEL", "SUBREG_LOG_FORMAT"} {
		if _, set := os.LookupEnv(env); !set {
			t.Setenv(env, "")
		}
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func exitCode(err error) int {
	var exitErr ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestValidatePassed(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest, "mail.yaml": declMail})

	out, errOut, err := execute(t, "validate", "--domains-dir", dir)
	if err != nil {
		t.Fatalf("%v: %s", err, errOut)
	}
	for _, line := range []string{"Validation summary:", "Total files: 2", "Valid: 2", "Errors: 0", "All declarations are valid."} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output lacks %q:\n%s", line, out)
		}
	}
	if !strings.Contains(errOut, `warning: mail.yaml: subdomain: "mail" is a reserved name`) {
		t.Errorf("unexpected diagnostics %q", errOut)
	}
}

func TestValidateFailed(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"a.json": declTest,
		"b.json": declTest,
		"c.json": strings.Replace(declTest, "r-u.live", "evil.com", 1),
	})

	out, errOut, err := execute(t, "validate", "--domains-dir", dir)
	if exitCode(err) != 1 {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(out, "Validation failed.") || !strings.Contains(out, "Errors: 2") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	for _, line := range []string{
		`b.json: duplicate subdomain "test.r-u.live" (also in a.json)`,
		`c.json: domain: domain "evil.com" is not allowed, must be one of: r-u.live`,
	} {
		if !strings.Contains(errOut, line) {
			t.Errorf("diagnostics lack %q:\n%s", line, errOut)
		}
	}
}

func TestValidateJSON(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest, "broken.json": "{"})

	out, _, err := execute(t, "validate", "--json", "--domains-dir", dir)
	if exitCode(err) != 1 {
		t.Fatalf("got %v", err)
	}

	var report core.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("%v:\n%s", err, out)
	}
	if report.Passed || report.TotalFiles != 2 || report.ValidCount != 1 || report.ErrorCount != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].File != "broken.json" {
		t.Errorf("unexpected errors %v", report.Errors)
	}
}

func TestValidateAllowedDomain(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest})

	_, errOut, err := execute(t, "validate", "--domains-dir", dir, "--allowed-domain", "example.org,Example.NET")
	if exitCode(err) != 1 {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(errOut, "must be one of: example.org, example.net") {
		t.Errorf("unexpected diagnostics %q", errOut)
	}
}

func TestValidateEnvironment(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": strings.Replace(declTest, "r-u.live", "example.org", 1)})
	t.Setenv("SUBREG_DOMAINS_DIR", dir)
	t.Setenv("SUBREG_ALLOWED_DOMAINS", "example.org, r-u.live")

	out, errOut, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("%v: %s", err, errOut)
	}
	if !strings.Contains(out, "Total files: 1") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestValidateConfigFile(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest})
	config := filepath.Join(t.TempDir(), "subreg.yaml")
	content := "domains_dir: " + dir + "\nallowed_domains: [example.org]\n"
	if err := os.WriteFile(config, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "validate", "--config", config); exitCode(err) != 1 {
		t.Errorf("config allow-list ignored: %v", err)
	}

	// Flags override the file.
	if _, errOut, err := execute(t, "validate", "--config", config, "--allowed-domain", "r-u.live"); err != nil {
		t.Errorf("%v: %s", err, errOut)
	}
}

func TestValidateMissingDir(t *testing.T) {
	_, _, err := execute(t, "validate", "--domains-dir", filepath.Join(t.TempDir(), "missing"))
	if err == nil || exitCode(err) != -1 {
		t.Errorf("got %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := [][]string{
		{"validate", "--log-level", "loud"},
		{"validate", "--log-format", "xml"},
		{"validate", "--allowed-domain", "-bad-.example"},
		{"validate", "--config", "/nonexistent/subreg.yaml"},
	}
	for _, args := range cases {
		if _, _, err := execute(t, args...); err == nil || exitCode(err) != -1 {
			t.Errorf("%v: got %v", args, err)
		}
	}
}

func TestList(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest, "mail.yaml": declMail, "broken.json": "{"})

	out, errOut, err := execute(t, "list", "--domains-dir", dir)
	if err != nil {
		t.Fatal(err)
	}

	want := "1. mail.r-u.live - Mail relay\n" +
		"   Owner: b@c.org\n" +
		"   Proxied: No\n" +
		"   Records:\n" +
		"     - MX: 5 mx.example.com\n" +
		"     - TXT: v=spf1 -all\n" +
		"\n" +
		"2. test.r-u.live - Test project\n" +
		"   Owner: a@b.com\n" +
		"   Proxied: Yes\n" +
		"   Records:\n" +
		"     - A: 192.0.2.1\n" +
		"\n" +
		"Total subdomains: 2\n"
	if !strings.HasSuffix(out, want) {
		t.Errorf("got\n%s\nwant suffix\n%s", out, want)
	}
	if !strings.Contains(errOut, "Error processing broken.json: ") {
		t.Errorf("unexpected diagnostics %q", errOut)
	}
}

func TestReport(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest, "mail.yaml": declMail})

	out, _, err := execute(t, "report", "--domains-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"Total subdomains: 2", "  - A: 1", "  - MX: 1", "  - TXT: 1", "  - Proxied: 1", "  - Not proxied: 1"} {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("output lacks %q:\n%s", line, out)
		}
	}

	out, _, err = execute(t, "report", "--json", "--domains-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	var stats struct {
		Files int `json:"files"`
		core.Stats
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Files != 2 || stats.Declarations != 2 || stats.RecordTypes["TXT"] != 1 || stats.Proxied != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestExport(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest})

	out, errOut, err := execute(t, "export", "--domains-dir", dir)
	if err != nil {
		t.Fatalf("%v: %s", err, errOut)
	}
	if out != "$TTL 3600\ntest.r-u.live.\t3600\tIN\tA\t192.0.2.1\n" {
		t.Errorf("unexpected zone %q", out)
	}

	out, errOut, err = execute(t, "export", "--domains-dir", dir, "--format", "cloudflare", "--param", "ttl=300")
	if err != nil {
		t.Fatalf("%v: %s", err, errOut)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["content"] != "192.0.2.1" || records[0]["proxied"] != true || records[0]["ttl"] != 300.0 {
		t.Errorf("unexpected plan %s", out)
	}
}

func TestExportInvalid(t *testing.T) {
	dir := writeDir(t, map[string]string{"a.json": declTest, "b.json": declTest})

	out, errOut, err := execute(t, "export", "--domains-dir", dir)
	if exitCode(err) != 1 {
		t.Fatalf("got %v", err)
	}
	if out != "" {
		t.Errorf("invalid registry exported:\n%s", out)
	}
	if !strings.Contains(errOut, "b.json: duplicate subdomain") {
		t.Errorf("unexpected diagnostics %q", errOut)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	dir := writeDir(t, map[string]string{"test.json": declTest})

	_, _, err := execute(t, "export", "--domains-dir", dir, "--format", "bind9")
	if err == nil || !strings.Contains(err.Error(), "no exporter called bind9") {
		t.Errorf("got %v", err)
	}
}

func TestSchema(t *testing.T) {
	out, _, err := execute(t, "schema", "--allowed-domain", "example.org")
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	domain := doc["properties"].(map[string]any)["domain"].(map[string]any)
	if enum := domain["enum"].([]any); len(enum) != 1 || enum[0] != "example.org" {
		t.Errorf("unexpected domain enum %v", domain["enum"])
	}
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestDotEnv(t *testing.T) {
	records := writeDir(t, map[string]string{"test.json": strings.Replace(declTest, "r-u.live", "example.org", 1)})
	chdir(t, writeDir(t, map[string]string{
		".env": "SUBREG_DOMAINS_DIR=" + records + "\nSUBREG_ALLOWED_DOMAINS=example.org\n",
	}))
	// godotenv does not override variables that are already set.
	for _, env := range []string{"SUBREG_DOMAINS_DIR", "SUBREG_ALLOWED_DOMAINS"} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	if err := loadDotEnv(); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("SUBREG_ALLOWED_DOMAINS") != "example.org" {
		t.Errorf(".env was not loaded")
	}

	out, errOut, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("%v: %s", err, errOut)
	}
	if !strings.Contains(out, "Total files: 1") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestDotEnvMissing(t *testing.T) {
	chdir(t, t.TempDir())

	if err := loadDotEnv(); err != nil {
		t.Errorf("missing .env: got %v", err)
	}
}

func TestDotEnvUnreadable(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".env"), 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	err := loadDotEnv()
	if err == nil || !strings.HasPrefix(err.Error(), "loading .env: ") {
		t.Fatalf("got %v", err)
	}

	_, _, err = execute(t, "schema")
	if err == nil || exitCode(err) != -1 {
		t.Errorf("unreadable .env ignored: %v", err)
	}
}
