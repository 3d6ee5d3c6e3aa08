package build

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kdomanski/iso9660"
	"github.com/opencontainers/go-digest"

	"github.com/crystal-linux/isobuild/internal/paths"
)

const (

	// Extension of the produced image.
	isoExtension = ".iso"

	// Extension of the checksum sidecar file.
	checksumExtension = ".sha256"

	// Read size for streaming the image through the digester.
	digestBufferSize = 32 * 1024
)

// Locates the freshly built image, renames it to the canonical name, and
// writes a checksum sidecar next to it.
//
// Discovery, rename, and the existence of the final image are fatal; the
// image is the whole point of the run. The checksum sidecar and the ISO 9660
// verification only add confidence to an image that already exists, so
// their failures degrade to warnings and an empty checksum path.
func finalizeOutput(opts Options) (iso, checksum string, err error) {
	discovered, err := discoverArtifact(opts.OutputDir, opts.Settings.NamePrefix)
	if err != nil {
		return "", "", err
	}

	final := filepath.Join(opts.OutputDir,
		CanonicalName(opts.Settings.NamePrefix, opts.Settings.Arch, time.Now()))

	if discovered != final {
		if err := os.Rename(discovered, final); err != nil {
			return "", "", fmt.Errorf("%w: rename: %v", ErrFinalize, err)
		}
		slog.Info("renamed image",
			"from", filepath.Base(discovered),
			"to", filepath.Base(final),
		)
	}

	if _, err := os.Stat(final); err != nil {
		return "", "", fmt.Errorf("%w: final image: %v", ErrFinalize, err)
	}

	checksum, err = writeChecksum(final)
	if err != nil {
		slog.Warn("could not write checksum sidecar", "image", final, "err", err)
		checksum = ""
	}

	verifyImage(final)

	return final, checksum, nil
}

// Finds the most recently modified image matching the product naming
// pattern.
//
// Stale images from earlier runs may share the output directory; the newest
// modification time wins. No match at all means the builder produced
// nothing to finalize.
func discoverArtifact(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoArtifact, err)
	}

	var newest string
	var newestMod time.Time

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, isoExtension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if newest == "" || info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("%w: no %s*%s file in %s", ErrNoArtifact, prefix, isoExtension, dir)
	}

	return filepath.Join(dir, newest), nil
}

// Returns the canonical image filename for a build finishing at the given
// time.
//
// The date token comes from the clock, not from the discovered image, so a
// build crossing midnight may carry a name one day ahead of the name the
// builder chose. The published name reflects the release date; it is not
// re-derived from the file.
func CanonicalName(prefix, arch string, now time.Time) string {
	return fmt.Sprintf("%s%s-%s%s", prefix, now.Format("20060102"), arch, isoExtension)
}

// Streams the image through a SHA-256 digester and writes the sidecar.
//
// The sidecar holds the lowercase hex digest, two spaces, and the image's
// base filename, newline-terminated — the coreutils sha256sum format, so
// `sha256sum -c` verifies it directly. Reads are fixed-size so memory stays
// bounded regardless of image size.
func writeChecksum(isoPath string) (string, error) {
	f, err := os.Open(isoPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digester := digest.SHA256.Digester()
	if _, err := io.CopyBuffer(digester.Hash(), f, make([]byte, digestBufferSize)); err != nil {
		return "", err
	}

	sidecar := isoPath + checksumExtension
	line := fmt.Sprintf("%s  %s\n", digester.Digest().Encoded(), filepath.Base(isoPath))

	if err := os.WriteFile(sidecar, []byte(line), paths.DefaultFileMode); err != nil {
		return "", err
	}

	slog.Info("wrote checksum sidecar", "path", sidecar)
	return sidecar, nil
}

// Opens the finished image and checks that it parses as an ISO 9660
// filesystem. Purely a confidence check; failures warn.
func verifyImage(isoPath string) {
	f, err := os.Open(isoPath)
	if err != nil {
		slog.Warn("could not open image for verification", "path", isoPath, "err", err)
		return
	}
	defer f.Close()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		slog.Warn("image does not parse as ISO 9660", "path", isoPath, "err", err)
		return
	}

	root, err := img.RootDir()
	if err != nil {
		slog.Warn("could not read image root directory", "path", isoPath, "err", err)
		return
	}

	children, err := root.GetChildren()
	if err != nil {
		slog.Warn("could not list image root directory", "path", isoPath, "err", err)
		return
	}

	slog.Info("verified ISO 9660 filesystem", "path", isoPath, "entries", len(children))
}
