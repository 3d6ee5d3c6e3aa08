package build

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	cp "github.com/otiai10/copy"

	"github.com/crystal-linux/isobuild/internal/paths"
	"github.com/crystal-linux/isobuild/internal/privilege"
)

// Name of the staged profile directory under the work directory.
const stagedProfileName = "archiso"

// Version-control metadata excluded from the staged profile.
const vcsDir = ".git"

// Prepares the workspace and returns the staged profile directory.
//
// Ensures the work and output directories exist, purges the work directory
// when a clean build was requested, mirrors the profile source into the
// workspace, and refreshes the version stamp inside the staged copy. The
// version stamp is the only non-fatal step here; everything else must
// succeed before the builder may run.
func stageWorkspace(ctx context.Context, opts Options) (string, error) {
	if err := ensureDirs(opts.WorkDir, opts.OutputDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStage, err)
	}

	if opts.Clean {
		if err := cleanWorkDir(ctx, opts.WorkDir, opts.Prefix); err != nil {
			return "", err
		}
	}

	staged := filepath.Join(opts.WorkDir, stagedProfileName)
	if err := stageProfile(ctx, opts.ProfileDir, staged); err != nil {
		return "", err
	}

	stampVersion(staged, opts.Settings.VersionFile)

	return staged, nil
}

// Creates the given directories and their parents. Idempotent.
func ensureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return err
		}
	}
	return nil
}

// Removes the work directory recursively and recreates it empty.
//
// An earlier escalated run may have left root-owned files behind, so when
// the plain removal fails the removal is retried through the escalation
// prefix. An unclean workspace must not proceed to staging, so any
// remaining failure is fatal.
func cleanWorkDir(ctx context.Context, dir string, prefix privilege.Prefix) error {
	slog.Info("cleaning work directory", "dir", dir)

	if err := os.RemoveAll(dir); err != nil {
		cmd := prefix.CommandContext(ctx, "rm", "-rf", "--", dir)
		if out, rmErr := cmd.CombinedOutput(); rmErr != nil {
			return fmt.Errorf("%w: %v (escalated rm: %v: %s)",
				ErrClean, err, rmErr, bytes.TrimSpace(out))
		}
	}

	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrClean, err)
	}

	return nil
}

// Mirrors the profile source into the staged directory.
//
// The destination ends up byte-identical to the source minus version
// control metadata, including the removal of files a previous staging left
// behind. rsync does this incrementally; when it is missing or fails, a
// full copy after removing the stale destination produces the same end
// state.
func stageProfile(ctx context.Context, src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: profile source: %v", ErrStage, err)
	}

	slog.Info("staging profile", "src", src, "dest", dest)

	if err := rsyncMirror(ctx, src, dest); err != nil {
		slog.Debug("rsync unavailable, falling back to full copy", "reason", err)
		if err := copyMirror(src, dest); err != nil {
			return fmt.Errorf("%w: %v", ErrStage, err)
		}
	}

	return nil
}

// Incremental mirror via rsync --delete.
func rsyncMirror(ctx context.Context, src, dest string) error {
	if _, err := exec.LookPath("rsync"); err != nil {
		return err
	}

	if err := os.MkdirAll(dest, paths.DefaultDirMode); err != nil {
		return err
	}

	// The trailing separator makes rsync copy the directory contents rather
	// than the directory itself.
	cmd := exec.CommandContext(ctx, "rsync", "-a", "--delete",
		"--exclude", vcsDir, src+string(os.PathSeparator), dest)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("rsync: %v: %s", err, bytes.TrimSpace(out))
	}

	return nil
}

// Full mirror: drop any stale destination, then copy the tree.
func copyMirror(src, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}

	return cp.Copy(src, dest, cp.Options{
		Skip: func(srcinfo os.FileInfo, src, dest string) (bool, error) {
			return srcinfo.IsDir() && filepath.Base(src) == vcsDir, nil
		},
	})
}

// Overwrites the version file inside the staged profile with the current
// year-month token.
//
// The stamp ends up baked into the shipped image, but a write failure only
// warns: the build can still produce a usable image carrying the previous
// stamp, and the warning tells the operator which one shipped.
func stampVersion(staged, relPath string) {
	path := filepath.Join(staged, filepath.FromSlash(relPath))
	token := time.Now().Format("2006.01")

	if err := os.WriteFile(path, []byte(token+"\n"), paths.DefaultFileMode); err != nil {
		slog.Warn("could not stamp version file", "path", path, "err", err)
		return
	}

	slog.Info("stamped version file", "path", path, "version", token)
}
