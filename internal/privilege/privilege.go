package privilege

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Returned when the user is unprivileged and no escalation helper exists.
var ErrNoEscalation = errors.New("no privilege escalation helper available")

// Escalation helpers probed in preference order. doas comes first as the
// minimal-privilege option.
var helpers = []string{"doas", "sudo"}

// An ordered list of command tokens prepended to privileged invocations.
//
// An empty prefix means the process already runs as root. The prefix is
// resolved once per run and passed explicitly to every component that
// needs elevation; it is never global state.
type Prefix []string

// Resolves the escalation prefix for this process.
//
// A root process gets an empty prefix without probing for helpers. An
// unprivileged process gets the first helper found on PATH, or an error
// wrapping [ErrNoEscalation] when none resolves. Every later stage of the
// pipeline may need elevation, so an unresolvable helper is a hard
// precondition failure, not something to defer.
func Resolve() (Prefix, error) {
	return resolve(os.Geteuid(), exec.LookPath)
}

// Resolution with injectable euid and lookup, for testing.
func resolve(euid int, look func(string) (string, error)) (Prefix, error) {
	if euid == 0 {
		return Prefix{}, nil
	}

	for _, helper := range helpers {
		if _, err := look(helper); err == nil {
			return Prefix{helper}, nil
		}
	}

	return nil, fmt.Errorf("%w: tried %s", ErrNoEscalation, strings.Join(helpers, ", "))
}

// Whether commands run through an escalation helper.
func (p Prefix) Escalated() bool {
	return len(p) > 0
}

// Builds a command with the prefix tokens prepended.
func (p Prefix) Command(name string, args ...string) *exec.Cmd {
	argv := p.argv(name, args...)
	return exec.Command(argv[0], argv[1:]...)
}

// Builds a context-aware command with the prefix tokens prepended.
func (p Prefix) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	argv := p.argv(name, args...)
	return exec.CommandContext(ctx, argv[0], argv[1:]...)
}

// Assembles the full argument vector: prefix tokens, command, arguments.
func (p Prefix) argv(name string, args ...string) []string {
	argv := make([]string, 0, len(p)+1+len(args))
	argv = append(argv, p...)
	argv = append(argv, name)
	argv = append(argv, args...)
	return argv
}
