package config

import (
	"errors"
	"testing"

	"github.com/dshills/keyfmt/internal/language"
)

func TestNewProfilesHasDefault(t *testing.T) {
	ps := NewProfiles()

	if got := ps.ActiveName(); got != DefaultProfileName {
		t.Errorf("expected default active, got %q", got)
	}
	p := ps.Active()
	if p.CommandLine != DefaultCommandLine {
		t.Errorf("unexpected command line %q", p.CommandLine)
	}
	if p.LanguageFilter != language.All {
		t.Errorf("expected All filter, got %s", p.LanguageFilter)
	}
	if !p.FragmentFormatting {
		t.Error("expected fragment formatting on by default")
	}
	if ps.CanModifyActive() {
		t.Error("default profile must not be modifiable")
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Mine", "Mine", true},
		{"  padded  ", "padded", true},
		{"", "", false},
		{"   ", "", false},
		{">hidden", ">hidden", false},
		{" >hidden", ">hidden", false},
		{"a>b", "a>b", true},
	}

	for _, tt := range tests {
		got, ok := ValidName(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ValidName(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCreateProfile(t *testing.T) {
	ps := NewProfiles()

	p, err := ps.Create("  Work ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Name != "Work" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if ps.ActiveName() != "Work" {
		t.Errorf("expected new profile active, got %q", ps.ActiveName())
	}

	if _, err := ps.Create("Work"); !errors.Is(err, ErrDuplicateProfile) {
		t.Errorf("expected ErrDuplicateProfile, got %v", err)
	}
	if _, err := ps.Create(">x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if _, err := ps.Create(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestDeleteProfile(t *testing.T) {
	ps := NewProfiles()
	if _, err := ps.Create("Work"); err != nil {
		t.Fatal(err)
	}

	if err := ps.Delete(DefaultProfileName); !errors.Is(err, ErrDefaultProfile) {
		t.Errorf("expected ErrDefaultProfile, got %v", err)
	}
	if err := ps.Delete("Work"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if ps.ActiveName() != DefaultProfileName {
		t.Errorf("expected fallback to default, got %q", ps.ActiveName())
	}
	if err := ps.Delete("Work"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestRenameProfile(t *testing.T) {
	ps := NewProfiles()
	if _, err := ps.Create("Work"); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.Create("Home"); err != nil {
		t.Fatal(err)
	}

	if _, err := ps.Rename(DefaultProfileName, "Other"); !errors.Is(err, ErrDefaultProfile) {
		t.Errorf("expected ErrDefaultProfile, got %v", err)
	}
	if _, err := ps.Rename("Work", "Home"); !errors.Is(err, ErrDuplicateProfile) {
		t.Errorf("expected ErrDuplicateProfile, got %v", err)
	}
	if _, err := ps.Rename("Home", ">bad"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	p, err := ps.Rename("Home", "House")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if p.Name != "House" {
		t.Errorf("unexpected name %q", p.Name)
	}
	if ps.ActiveName() != "House" {
		t.Errorf("expected active to follow rename, got %q", ps.ActiveName())
	}
}

func TestCloneCopiesSettingsNotName(t *testing.T) {
	ps := NewProfiles()
	src, _ := ps.Create("Src")
	src.Program = "uncrustify"
	src.ConfigFile = "/etc/u.cfg"
	src.LanguageFilter = language.Java
	src.FormatOnSave = true
	if err := ps.Update(src); err != nil {
		t.Fatal(err)
	}

	clone, err := ps.Clone("Src", "Copy")
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if clone.Name != "Copy" {
		t.Errorf("expected name Copy, got %q", clone.Name)
	}
	if clone.Program != "uncrustify" || clone.ConfigFile != "/etc/u.cfg" ||
		clone.LanguageFilter != language.Java || !clone.FormatOnSave {
		t.Errorf("settings not copied: %+v", clone)
	}
	if ps.ActiveName() != "Copy" {
		t.Errorf("expected clone active, got %q", ps.ActiveName())
	}
	if _, err := ps.Clone("Nope", "X"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestResetProfile(t *testing.T) {
	ps := NewProfiles()
	p := ps.Active()
	p.Program = "astyle"
	p.CommandLine = "--x"
	p.FragmentFormatting = false
	if err := ps.Update(p); err != nil {
		t.Fatal(err)
	}

	if err := ps.Reset(DefaultProfileName); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	got := ps.Active()
	want := NewProfile(DefaultProfileName)
	if got != want {
		t.Errorf("reset = %+v, want %+v", got, want)
	}
}

func TestUseUnknownFallsBackToDefault(t *testing.T) {
	ps := NewProfiles()
	if _, err := ps.Create("Work"); err != nil {
		t.Fatal(err)
	}

	if err := ps.Use("Missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if ps.ActiveName() != DefaultProfileName {
		t.Errorf("expected default active, got %q", ps.ActiveName())
	}
	if err := ps.Use("Work"); err != nil {
		t.Errorf("use failed: %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	p := NewProfile("x")
	if err := p.Validate(); err == nil {
		t.Error("expected error without program")
	}
	p.Program = "uncrustify"
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	p.Output = "pipe"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown output mode")
	}
}
