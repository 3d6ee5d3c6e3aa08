// Package profile holds the tunable settings of the image profile: naming,
// architecture token, and the fixed relative paths the build pipeline and
// the external builder agree on.
package profile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/crystal-linux/isobuild/internal/paths"
	"github.com/go-playground/validator/v10"
)

// Settings for a build of the Crystal Linux ISO.
//
// All fields have compiled-in defaults matching the stock archiso profile;
// a TOML settings file can override them. Relative paths are interpreted
// against the project root (ProfileDir, PackageList) or against the
// directories named in the field comments.
type Settings struct {
	NamePrefix      string `toml:"name_prefix" default:"CrystalLinux-" validate:"required"`                      // Filename prefix shared by the builder's output and the canonical name
	Arch            string `toml:"arch" default:"x86_64" validate:"required"`                                    // Architecture token embedded in the canonical ISO name
	ProfileDir      string `toml:"profile_dir" default:"ISO/archiso" validate:"required"`                        // Archiso profile source, relative to the project root
	VersionFile     string `toml:"version_file" default:"airootfs/etc/crystallinux-version" validate:"required"` // Version stamp target, relative to the staged profile
	PackageManifest string `toml:"package_manifest" default:"iso/arch/pkglist.x86_64.txt" validate:"required"`   // Manifest the builder leaves behind, relative to the work directory
	PackageList     string `toml:"package_list" default:"ISO/archiso/packages.x86_64" validate:"required"`       // Package list the format command targets, relative to the project root
	Builder         string `toml:"builder" default:"mkarchiso" validate:"required"`                              // External image builder command
}

// Loads settings from the first available source.
//
// When explicit is non-empty, that file must exist and parse. Otherwise the
// standard candidate locations are tried in order and a missing file is not
// an error; compiled-in defaults apply. The merged result is validated
// before anything touches the filesystem.
func Load(explicit string) (*Settings, error) {
	s := &Settings{}
	if err := defaults.Set(s); err != nil {
		return nil, fmt.Errorf("settings defaults: %w", err)
	}

	path, err := locate(explicit)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, fmt.Errorf("settings file %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return s, nil
}

// Returns the settings file to read, or "" if none exists.
func locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("settings file: %w", err)
		}
		return explicit, nil
	}

	for _, candidate := range paths.SettingsCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}
