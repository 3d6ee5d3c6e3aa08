// Package build orchestrates the ISO build pipeline.
//
// A build runs as a strict sequence: the workspace directories are ensured
// (and optionally cleaned), a fresh mirror of the archiso profile is staged
// into the work directory, the version stamp inside the staged profile is
// refreshed, and the external builder is invoked against it with its output
// streamed live. The produced image is then finalized: discovered in the
// output directory, renamed to the canonical dated name, checksummed into a
// sidecar file, and verified to parse as an ISO 9660 filesystem. Finally,
// ownership of the output directory is handed back to the invoking user
// when the build ran under an escalation helper, and the package manifest
// is copied next to the image.
//
// Any failure before the image exists aborts the remaining pipeline.
// Steps after that point (checksum, verification, ownership, manifest)
// degrade to warnings because the image itself is already complete.
//
// Example usage:
//
//	result, err := build.Run(ctx, build.Options{
//	    WorkDir:     "/srv/build/work",
//	    OutputDir:   "/srv/build/out",
//	    ProfileDir:  "/srv/iso/archiso",
//	    ProjectRoot: "/srv",
//	    Clean:       true,
//	    Prefix:      prefix,
//	    Settings:    settings,
//	})
//	if err != nil {
//	    return err
//	}
package build
