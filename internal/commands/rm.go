package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todopro/internal/dashboard"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	id string
}

// SetID sets the --id flag (for testing).
func (c *RmCmd) SetID(id string) {
	c.id = id
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todopro rm <n> | --id <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, env, c.id, args, out, errOut, (*dashboard.Dashboard).Delete)
}
