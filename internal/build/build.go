package build

import (
	"context"
	"log/slog"

	"github.com/crystal-linux/isobuild/internal/privilege"
	"github.com/crystal-linux/isobuild/internal/profile"
)

// Controls a pipeline run.
type Options struct {
	WorkDir     string            // Scratch directory for the build.
	OutputDir   string            // Directory for finished artifacts.
	ProfileDir  string            // Read-only archiso profile source.
	ProjectRoot string            // Project root, the builder's working directory.
	Clean       bool              // Purge the work directory before staging.
	Verbose     bool              // Pass verbose output through to the builder.
	Prefix      privilege.Prefix  // Escalation prefix for privileged operations.
	Settings    *profile.Settings // Profile settings (naming, fixed paths).
}

// Returned after a successful pipeline run.
type Result struct {
	ISO         string // Path of the final image.
	Checksum    string // Path of the checksum sidecar, or "" if it failed.
	PackageList string // Path of the relocated package manifest, or "" if missing.
}

// Executes the full build pipeline.
//
// Stages run in a fixed order; the first fatal error aborts the rest. The
// ownership and manifest steps run only once a final image exists and never
// fail the build.
func Run(ctx context.Context, opts Options) (*Result, error) {
	slog.Info("starting ISO build",
		"work", opts.WorkDir,
		"output", opts.OutputDir,
		"profile", opts.ProfileDir,
		"clean", opts.Clean,
	)

	staged, err := stageWorkspace(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := invokeBuilder(ctx, opts, staged); err != nil {
		return nil, err
	}

	iso, checksum, err := finalizeOutput(opts)
	if err != nil {
		return nil, err
	}

	restoreOwnership(ctx, opts)
	manifest := relocateManifest(opts, iso)

	return &Result{
		ISO:         iso,
		Checksum:    checksum,
		PackageList: manifest,
	}, nil
}
