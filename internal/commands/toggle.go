package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todopro/internal/dashboard"
	"todopro/internal/exitcode"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	id string
}

// SetID sets the --id flag (for testing).
func (c *ToggleCmd) SetID(id string) {
	c.id = id
}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task completed or not completed" }
func (c *ToggleCmd) Usage() string     { return "todopro toggle <n> | --id <id>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, env, c.id, args, out, errOut, (*dashboard.Dashboard).Toggle)
}

// runOnTask loads the list, resolves the reference against it and applies op.
// Shared by toggle and rm.
func runOnTask(ctx context.Context, env *Env, id string, args []string, out, errOut io.Writer,
	op func(*dashboard.Dashboard, context.Context, dashboard.Ref) error) int {
	ref, err := taskRef(id, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	d, code := openDashboard(env, out, errOut, false)
	if d == nil {
		return code
	}
	if err := d.Load(ctx); err != nil {
		return taskFailure(errOut, err)
	}

	if err := op(d, ctx, ref); err != nil {
		return taskFailure(errOut, err)
	}

	printOK(env, out)
	return exitcode.Success
}
