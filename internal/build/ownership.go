package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/crystal-linux/isobuild/internal/paths"
)

// Suffix of the relocated package manifest, appended to the image stem.
const manifestSuffix = ".pkgs.txt"

// Environment variables escalation helpers set to the invoking user.
var ownerEnvVars = []string{"SUDO_USER", "DOAS_USER"}

// Hands ownership of the output directory back to the invoking user.
//
// Escalated runs leave root-owned artifacts behind; when an escalation
// helper recorded the original user in the environment, a recursive chown
// restores them. No detectable original user means the process already
// runs as the intended owner and nothing happens. The image itself does
// not depend on host ownership, so a failed chown only warns.
func restoreOwnership(ctx context.Context, opts Options) {
	owner := invokingUser()
	if owner == "" {
		slog.Debug("no invoking user recorded, skipping ownership restore")
		return
	}

	cmd := opts.Prefix.CommandContext(ctx, "chown", "-R", owner+":", opts.OutputDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("could not restore output ownership",
			"owner", owner,
			"dir", opts.OutputDir,
			"err", err,
			"output", string(bytes.TrimSpace(out)),
		)
		return
	}

	slog.Info("restored output ownership", "owner", owner, "dir", opts.OutputDir)
}

// Returns the unprivileged user an escalation helper ran on behalf of, or
// "" when none is recorded.
func invokingUser() string {
	for _, key := range ownerEnvVars {
		if v := os.Getenv(key); v != "" && v != "root" {
			return v
		}
	}
	return ""
}

// Copies the package manifest the builder left in the workspace next to
// the final image, named after the image stem.
//
// Returns the destination path, or "" when the manifest is missing or the
// copy fails. The image is complete without a sibling manifest, so both
// cases only warn.
func relocateManifest(opts Options, isoPath string) string {
	src := filepath.Join(opts.WorkDir, filepath.FromSlash(opts.Settings.PackageManifest))
	stem := strings.TrimSuffix(filepath.Base(isoPath), isoExtension)
	dest := filepath.Join(opts.OutputDir, stem+manifestSuffix)

	if err := copyFile(src, dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("package manifest not found", "path", src)
		} else {
			slog.Warn("could not copy package manifest", "src", src, "err", err)
		}
		return ""
	}

	slog.Info("copied package manifest", "path", dest)
	return dest
}

// Copies a single file, truncating any existing destination.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, paths.DefaultFileMode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
