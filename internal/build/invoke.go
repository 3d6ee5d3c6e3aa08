package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runs the external image builder against the staged profile.
//
// The builder's stdout and stderr are combined and streamed line by line to
// our stdout as they arrive, so long builds show live progress instead of
// buffering until completion. The working directory is switched to the
// project root for the duration of the invocation and restored on every
// exit path, so the builder's relative-path assumptions resolve
// consistently and a failure never strands the process elsewhere.
//
// A non-zero exit is fatal and carries the numeric code; a partially built
// image is not safely resumable, so there are no retries.
func invokeBuilder(ctx context.Context, opts Options, staged string) error {
	args := make([]string, 0, 6)
	if opts.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-w", opts.WorkDir, "-o", opts.OutputDir, staged)

	cmd := opts.Prefix.CommandContext(ctx, opts.Settings.Builder, args...)

	restore, err := pushd(opts.ProjectRoot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuilderFailed, err)
	}
	defer restore()

	slog.Info("running builder", "command", strings.Join(cmd.Args, " "))

	output, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuilderFailed, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrBuilderFailed, err)
	}

	streamLines(output, os.Stdout)

	if err := cmd.Wait(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return fmt.Errorf("%w: exit code %d", ErrBuilderFailed, exit.ExitCode())
		}
		return fmt.Errorf("%w: %v", ErrBuilderFailed, err)
	}

	return nil
}

// Copies r to w line by line, flushing each line as it arrives.
//
// A trailing partial line (no final newline) is still written, followed by
// a newline so the caller's output ends cleanly.
func streamLines(r io.Reader, w io.Writer) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			io.WriteString(w, line)
			if !strings.HasSuffix(line, "\n") {
				io.WriteString(w, "\n")
			}
		}
		if err != nil {
			return
		}
	}
}

// Switches the working directory and returns a function restoring the
// previous one.
//
// A failed restore is logged rather than returned; by that point the
// invocation outcome is already decided and the warning is what matters.
func pushd(dir string) (func(), error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	if err := os.Chdir(dir); err != nil {
		return nil, err
	}

	return func() {
		if err := os.Chdir(prev); err != nil {
			slog.Warn("could not restore working directory", "dir", prev, "err", err)
		}
	}, nil
}
