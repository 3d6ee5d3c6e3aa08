package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/crystal-linux/isobuild/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Name of the optional settings file.
	settingsFile = internal.Name + ".toml"
)

// Returns the project root directory.
//
// The isobuild binary is expected to live one level below the project root
// (conventionally in <root>/ISO, next to the archiso profile it stages).
// Symlinks to the binary are resolved first so that an installed symlink
// still points the tool at its real checkout.
func ProjectRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}

	return filepath.Dir(filepath.Dir(exe)), nil
}

// Default scratch directory for the build.
//
//	<root>/build/work
func DefaultWorkDir(root string) string {
	return filepath.Join(root, "build", "work")
}

// Default directory for finished artifacts.
//
//	<root>/build/out
func DefaultOutputDir(root string) string {
	return filepath.Join(root, "build", "out")
}

// Candidate locations for the settings file, in lookup order.
//
//	Linux:   $XDG_CONFIG_HOME/isobuild/isobuild.toml
//	macOS:   ~/Library/Application Support/isobuild/isobuild.toml
//
// followed by a file next to the binary for checkout-local overrides.
func SettingsCandidates() []string {
	candidates := []string{
		filepath.Join(xdg.ConfigHome, internal.Name, settingsFile),
	}

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), settingsFile))
	}

	return candidates
}
