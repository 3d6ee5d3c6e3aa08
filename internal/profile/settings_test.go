package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "isobuild.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// An empty settings file leaves every compiled-in default in place.
	s, err := Load(writeSettings(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.NamePrefix != "CrystalLinux-" {
		t.Errorf("NamePrefix = %q, want %q", s.NamePrefix, "CrystalLinux-")
	}
	if s.Arch != "x86_64" {
		t.Errorf("Arch = %q, want %q", s.Arch, "x86_64")
	}
	if s.VersionFile != "airootfs/etc/crystallinux-version" {
		t.Errorf("VersionFile = %q", s.VersionFile)
	}
	if s.PackageManifest != "iso/arch/pkglist.x86_64.txt" {
		t.Errorf("PackageManifest = %q", s.PackageManifest)
	}
	if s.Builder != "mkarchiso" {
		t.Errorf("Builder = %q, want %q", s.Builder, "mkarchiso")
	}
}

func TestLoadOverrides(t *testing.T) {
	s, err := Load(writeSettings(t, `
name_prefix = "TestLinux-"
arch = "aarch64"
builder = "mkarchiso-test"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.NamePrefix != "TestLinux-" {
		t.Errorf("NamePrefix = %q, want %q", s.NamePrefix, "TestLinux-")
	}
	if s.Arch != "aarch64" {
		t.Errorf("Arch = %q, want %q", s.Arch, "aarch64")
	}
	if s.Builder != "mkarchiso-test" {
		t.Errorf("Builder = %q, want %q", s.Builder, "mkarchiso-test")
	}

	// Untouched fields keep their defaults.
	if s.ProfileDir != "ISO/archiso" {
		t.Errorf("ProfileDir = %q, want default", s.ProfileDir)
	}
}

func TestLoadRejectsEmptyRequiredField(t *testing.T) {
	if _, err := Load(writeSettings(t, `name_prefix = ""`)); err == nil {
		t.Fatal("expected validation error for empty name_prefix")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit settings file")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(writeSettings(t, `name_prefix = [unclosed`)); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}
