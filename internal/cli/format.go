package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/crystal-linux/isobuild/internal/paths"
	"github.com/crystal-linux/isobuild/internal/pkglist"
	"github.com/crystal-linux/isobuild/internal/profile"
)

// Represents the 'isobuild format' command.
type FormatCmd struct {
	Path string `arg:"" optional:"" help:"Package list to format. Defaults to the profile's package list." type:"path"`
}

// Executes the format command.
//
// Sorts and deduplicates the package list in place. Without an argument,
// the profile's configured package list is formatted.
func (c *FormatCmd) Run(ctx context.Context) error {
	path := c.Path

	if path == "" {
		settings, err := profile.Load(RootCmd.Config)
		if err != nil {
			return err
		}

		root, err := paths.ProjectRoot()
		if err != nil {
			return err
		}

		path = filepath.Join(root, filepath.FromSlash(settings.PackageList))
	}

	kept, err := pkglist.Format(path)
	if err != nil {
		return err
	}

	slog.Info("package list formatted", "path", path, "packages", kept)
	return nil
}
