package cli

import (
	"context"
	"fmt"

	"github.com/crystal-linux/isobuild/internal"
)

// Represents the 'isobuild version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
