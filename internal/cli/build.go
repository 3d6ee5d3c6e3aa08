package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/crystal-linux/isobuild/internal"
	"github.com/crystal-linux/isobuild/internal/build"
	"github.com/crystal-linux/isobuild/internal/paths"
	"github.com/crystal-linux/isobuild/internal/privilege"
	"github.com/crystal-linux/isobuild/internal/profile"
)

// Represents the 'isobuild build' command.
type BuildCmd struct {
	WorkDir   string `short:"w" help:"Working directory for the build." placeholder:"DIR"`
	OutputDir string `short:"o" help:"Output directory for the ISO." placeholder:"DIR"`
	Clean     bool   `short:"c" help:"Clean the work directory before building."`
}

// Executes the build command.
//
// Resolves settings and the privilege prefix up front, fills in defaults
// for any directory not given on the command line, and runs the pipeline.
// The summary of final artifact locations is logged on success.
func (c *BuildCmd) Run(ctx context.Context) error {
	settings, err := profile.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	prefix, err := privilege.Resolve()
	if err != nil {
		return err
	}

	root, err := paths.ProjectRoot()
	if err != nil {
		return err
	}

	workDir, err := absOrDefault(c.WorkDir, paths.DefaultWorkDir(root))
	if err != nil {
		return err
	}
	outputDir, err := absOrDefault(c.OutputDir, paths.DefaultOutputDir(root))
	if err != nil {
		return err
	}

	result, err := build.Run(ctx, build.Options{
		WorkDir:     workDir,
		OutputDir:   outputDir,
		ProfileDir:  filepath.Join(root, filepath.FromSlash(settings.ProfileDir)),
		ProjectRoot: root,
		Clean:       c.Clean,
		Verbose:     RootCmd.Verbose || internal.IsVerbose(),
		Prefix:      prefix,
		Settings:    settings,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "iso", result.ISO)
	if result.Checksum != "" {
		slog.Info("checksum", "path", result.Checksum)
	}
	if result.PackageList != "" {
		slog.Info("package list", "path", result.PackageList)
	}

	return nil
}

// Returns the absolute form of path, or the fallback when path is empty.
func absOrDefault(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	return filepath.Abs(path)
}
