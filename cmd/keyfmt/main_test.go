package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/engine/buffer"
	"github.com/dshills/keyfmt/internal/language"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off", "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParsePosition(t *testing.T) {
	buf := buffer.NewBufferFromString("int  x;\n  y();")

	cases := []struct {
		input string
		want  buffer.ByteOffset
	}{
		{"0", 0},
		{"10", 10},
		{"1:1", 0},
		{"2:3", 10},
		{"2:99", 14},
		{"9:1", 8},
	}
	for _, tc := range cases {
		pos, err := parsePosition(tc.input)
		if err != nil {
			t.Fatalf("parsePosition(%q) error: %v", tc.input, err)
		}
		if got := pos.resolve(buf); got != tc.want {
			t.Fatalf("parsePosition(%q).resolve = %d, want %d", tc.input, got, tc.want)
		}
	}

	for _, bad := range []string{"", "-1", "x", "0:1", "1:0", "1:", ":2"} {
		if _, err := parsePosition(bad); err == nil {
			t.Fatalf("parsePosition(%q) expected error", bad)
		}
	}
}

func TestParseSelection(t *testing.T) {
	buf := buffer.NewBufferFromString("a();\nb();\nc();")

	spec, err := parseSelection("2:1-5")
	if err != nil {
		t.Fatalf("parseSelection error: %v", err)
	}
	sel := spec.resolve(buf)
	if sel.Anchor != 5 || sel.Head != 5 {
		t.Fatalf("selection = %v, want 5-5", sel)
	}

	spec, err = parseSelection("3:1-2:1")
	if err != nil {
		t.Fatalf("parseSelection error: %v", err)
	}
	if r := spec.resolve(buf).Range(); r.Start != 5 || r.End != 10 {
		t.Fatalf("range = %v, want 5-10", r)
	}

	if _, err := parseSelection("12"); err == nil {
		t.Fatal("expected error for missing separator")
	}
}

func TestSetProfileField(t *testing.T) {
	p := config.NewProfile("Astyle")

	settings := map[string]string{
		"program":         "/usr/bin/astyle",
		"config-file":     "/etc/astylerc",
		"command-line":    `"%FILE%"`,
		"language-filter": "java",
		"fragment":        "false",
		"format-on-open":  "true",
		"Format-On-Save":  "1",
		"output":          "stdout",
	}
	for key, value := range settings {
		if err := setProfileField(&p, key, value); err != nil {
			t.Fatalf("setProfileField(%q, %q): %v", key, value, err)
		}
	}

	want := config.Profile{
		Name:           "Astyle",
		Program:        "/usr/bin/astyle",
		ConfigFile:     "/etc/astylerc",
		CommandLine:    `"%FILE%"`,
		LanguageFilter: language.Java,
		FormatOnOpen:   true,
		FormatOnSave:   true,
		Output:         config.OutputStdout,
	}
	if p != want {
		t.Fatalf("profile = %+v, want %+v", p, want)
	}

	for _, bad := range [][2]string{{"fragment", "maybe"}, {"language-filter", "cobol"}, {"output", "pipe"}, {"colour", "red"}} {
		if err := setProfileField(&p, bad[0], bad[1]); err == nil {
			t.Fatalf("setProfileField(%q, %q) expected error", bad[0], bad[1])
		}
	}
}

func TestParseFingerprint(t *testing.T) {
	fp, err := parseFingerprint(`"intx;   "`)
	if err != nil {
		t.Fatalf("parseFingerprint error: %v", err)
	}
	if fp.Skeleton() != "intx;" || fp.Slack() != 3 {
		t.Fatalf("fingerprint = %s", fp)
	}
	if fp, _ := parseFingerprint("ab "); fp.Slack() != 1 {
		t.Fatalf("raw fingerprint = %s", fp)
	}
	if _, err := parseFingerprint(`"unterminated`); err == nil {
		t.Fatal("expected error for bad quoting")
	}
}

func TestProfileCommands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "profiles.toml")

	steps := [][]string{
		{"profile", "create", "Astyle"},
		{"profile", "set", "program=/usr/bin/astyle", "format-on-save=true"},
		{"profile", "clone", "Astyle", "Java"},
		{"profile", "set", "--name", "Java", "language-filter=java"},
		{"profile", "rename", "Astyle", "C"},
		{"profile", "use", "C"},
	}
	for _, args := range steps {
		if out, err := execute(t, append([]string{"--config", cfgPath}, args...)...); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Profiles.ActiveName(); got != "C" {
		t.Fatalf("active = %q, want C", got)
	}
	c, ok := cfg.Profiles.Find("C")
	if !ok || c.Program != "/usr/bin/astyle" || !c.FormatOnSave {
		t.Fatalf("profile C = %+v", c)
	}
	j, ok := cfg.Profiles.Find("Java")
	if !ok || j.Program != "/usr/bin/astyle" || j.LanguageFilter != language.Java {
		t.Fatalf("profile Java = %+v", j)
	}

	out, err := execute(t, "--config", cfgPath, "profile", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "* C") || !strings.Contains(out, "  "+config.DefaultProfileName) {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	if _, err := execute(t, "--config", cfgPath, "profile", "delete", config.DefaultProfileName); !errors.Is(err, config.ErrDefaultProfile) {
		t.Fatalf("delete default: got %v, want ErrDefaultProfile", err)
	}
}

func TestProfileExportImport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profiles.toml")
	exported := filepath.Join(dir, "shared.yaml")

	cfg := config.Defaults()
	p, err := cfg.Profiles.Create("Shared")
	if err != nil {
		t.Fatal(err)
	}
	p.Program = "astyle"
	if err := cfg.Profiles.Update(p); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, "--config", cfgPath, "profile", "export", "Shared", exported); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if out, err := execute(t, "--config", cfgPath, "profile", "delete", "Shared"); err != nil {
		t.Fatalf("delete: %v\n%s", err, out)
	}
	if out, err := execute(t, "--config", cfgPath, "profile", "import", exported); err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}

	cfg, err = config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := cfg.Profiles.Find("Shared")
	if !ok || got.Program != "astyle" {
		t.Fatalf("imported profile = %+v, %v", got, ok)
	}
	if cfg.Profiles.ActiveName() != "Shared" {
		t.Fatalf("active = %q, want Shared", cfg.Profiles.ActiveName())
	}
}

func TestAnchorCommands(t *testing.T) {
	dir := t.TempDir()
	before := filepath.Join(dir, "before.c")
	after := filepath.Join(dir, "after.c")
	writeFile(t, before, "int  x;\n  y();")
	writeFile(t, after, "int x;\ny();")

	out, err := execute(t, "anchor", "encode", "--caret", "2:3", "--from", "0", before)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "\"intx;   \"\n"; out != want {
		t.Fatalf("encode output = %q, want %q", out, want)
	}

	out, err = execute(t, "anchor", "decode", "--from", "0", after, strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := "7 2:1\n"; out != want {
		t.Fatalf("decode output = %q, want %q", out, want)
	}

	out, err = execute(t, "anchor", "relocate", "--caret", "10", before, after)
	if err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if want := "7 2:1\n"; out != want {
		t.Fatalf("relocate output = %q, want %q", out, want)
	}

	if _, err := execute(t, "anchor", "decode", "--from", "0", after, `"zzz"`); err == nil {
		t.Fatal("expected decode of a foreign fingerprint to fail")
	}
}

func TestFormatCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "squeeze.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsed -e 's/  */ /g' \"$1\" > \"$1.tmp\" && mv \"$1.tmp\" \"$1\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "profiles.toml")
	cfg := config.Defaults()
	p, err := cfg.Profiles.Create("squeeze")
	if err != nil {
		t.Fatal(err)
	}
	p.Program = script
	p.CommandLine = `"%FILE%"`
	if err := cfg.Profiles.Update(p); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(dir, "a.c")
	writeFile(t, src, "int  x;\n  y();")
	skipped := filepath.Join(dir, "notes.txt")
	writeFile(t, skipped, "a  b")

	out, err := execute(t, "--config", cfgPath, "format", "--caret", "2:3", src)
	if err != nil {
		t.Fatalf("format: %v\n%s", err, out)
	}
	if !strings.Contains(out, "caret 2:2 (anchor)") {
		t.Fatalf("unexpected format output:\n%s", out)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "int x;\n y();" {
		t.Fatalf("formatted file = %q", data)
	}

	out, err = execute(t, "--config", cfgPath, "format", "--caret", "", skipped)
	if err != nil {
		t.Fatalf("format txt: %v\n%s", err, out)
	}
	if !strings.Contains(out, "skip") {
		t.Fatalf("expected skip, got:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profiles.toml")
	src := filepath.Join(dir, "Main.java")
	writeFile(t, src, "class Main {}\n")

	out, err := execute(t, "--config", cfgPath, "check", "--selection", "1:1-1:6", src)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if strings.Count(out, "enabled (JAVA)") != 2 {
		t.Fatalf("expected both commands enabled:\n%s", out)
	}

	other := filepath.Join(dir, "README")
	writeFile(t, other, "hello")
	if _, err := execute(t, "--config", cfgPath, "check", "--selection", "", other); err == nil {
		t.Fatal("expected check to fail for an unsupported file")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
