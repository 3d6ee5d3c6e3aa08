package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestEnsureDirsIdempotent(t *testing.T) {
	base := t.TempDir()
	work := filepath.Join(base, "build", "work")
	out := filepath.Join(base, "build", "out")

	if err := ensureDirs(work, out); err != nil {
		t.Fatalf("first ensureDirs: %v", err)
	}
	if err := ensureDirs(work, out); err != nil {
		t.Fatalf("second ensureDirs: %v", err)
	}

	for _, dir := range []string{work, out} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestCopyMirrorExcludesVCS(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "staged")

	writeTree(t, src, map[string]string{
		"packages.x86_64":                   "base\nlinux\n",
		"airootfs/etc/hostname":             "crystal\n",
		".git/HEAD":                         "ref: refs/heads/main\n",
		"airootfs/usr/share/doc/readme.txt": "docs\n",
	})

	if err := copyMirror(src, dest); err != nil {
		t.Fatalf("copyMirror: %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "packages.x86_64"), "base\nlinux\n")
	assertFileContent(t, filepath.Join(dest, "airootfs/etc/hostname"), "crystal\n")

	if _, err := os.Stat(filepath.Join(dest, ".git")); !os.IsNotExist(err) {
		t.Fatalf(".git was copied into the staged profile (err = %v)", err)
	}
}

func TestCopyMirrorRemovesStaleFiles(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "staged")

	writeTree(t, src, map[string]string{"keep.txt": "keep\n"})
	writeTree(t, dest, map[string]string{
		"keep.txt":  "old content\n",
		"stale.txt": "left over from a previous run\n",
	})

	if err := copyMirror(src, dest); err != nil {
		t.Fatalf("copyMirror: %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "keep.txt"), "keep\n")

	if _, err := os.Stat(filepath.Join(dest, "stale.txt")); !os.IsNotExist(err) {
		t.Fatalf("stale file survived the mirror (err = %v)", err)
	}
}

func TestStageProfileRestageMirrors(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "staged")

	writeTree(t, src, map[string]string{
		"packages.x86_64":       "base\nlinux\n",
		"airootfs/etc/hostname": "crystal\n",
		"removed-later.txt":     "temporary\n",
	})

	if err := stageProfile(context.Background(), src, dest); err != nil {
		t.Fatalf("first staging: %v", err)
	}

	// Mutate the source between runs: one file gone, one changed, one new.
	if err := os.Remove(filepath.Join(src, "removed-later.txt")); err != nil {
		t.Fatal(err)
	}
	writeTree(t, src, map[string]string{
		"airootfs/etc/hostname": "renamed-host\n",
		"new-file.txt":          "added\n",
	})

	if err := stageProfile(context.Background(), src, dest); err != nil {
		t.Fatalf("second staging: %v", err)
	}

	assertTreesEqual(t, src, dest)
}

// Asserts that dest mirrors src exactly: same files, same contents, nothing
// extra on either side.
func assertTreesEqual(t *testing.T, src, dest string) {
	t.Helper()

	srcFiles := listTree(t, src)
	destFiles := listTree(t, dest)

	if len(srcFiles) != len(destFiles) {
		t.Fatalf("tree sizes differ: src %v, dest %v", srcFiles, destFiles)
	}

	for rel := range srcFiles {
		if _, ok := destFiles[rel]; !ok {
			t.Fatalf("file %q missing from destination", rel)
		}
		assertFileContent(t, filepath.Join(dest, rel), srcFiles[rel])
	}
}

// Returns relative path -> content for every regular file under root.
func listTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}

	return files
}

func TestStageProfileMissingSource(t *testing.T) {
	err := stageProfile(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing profile source")
	}
	assertIs(t, err, ErrStage)
}

func TestStampVersionFormat(t *testing.T) {
	staged := t.TempDir()
	rel := "airootfs/etc/crystallinux-version"

	if err := os.MkdirAll(filepath.Join(staged, "airootfs", "etc"), 0o755); err != nil {
		t.Fatal(err)
	}

	stampVersion(staged, rel)

	data, err := os.ReadFile(filepath.Join(staged, rel))
	if err != nil {
		t.Fatalf("version file not written: %v", err)
	}

	if !regexp.MustCompile(`^\d{4}\.\d{2}\n$`).Match(data) {
		t.Fatalf("version stamp = %q, want YYYY.MM with trailing newline", data)
	}
}

func TestStampVersionMissingParentDoesNotFail(t *testing.T) {
	// The parent directory is absent; the stamp must warn, not panic or
	// create partial state.
	staged := t.TempDir()
	stampVersion(staged, "airootfs/etc/crystallinux-version")

	if _, err := os.Stat(filepath.Join(staged, "airootfs")); !os.IsNotExist(err) {
		t.Fatalf("unexpected airootfs directory created (err = %v)", err)
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s = %q, want %q", path, data, want)
	}
}
