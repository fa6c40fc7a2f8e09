package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todopro/internal/exitcode"
)

func init() {
	Register(&ListCmd{})
	Register(&StatsCmd{})
}

// ListCmd implements the list command.
// Handles both `todopro` (no args) and `todopro list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks and stats" }
func (c *ListCmd) Usage() string     { return "todopro list" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	d, code := openDashboard(env, out, errOut, false)
	if d == nil {
		return code
	}
	if err := d.Load(ctx); err != nil {
		return taskFailure(errOut, err)
	}
	if err := d.Render(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show total, completed and pending counts" }
func (c *StatsCmd) Usage() string     { return "todopro stats" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	d, code := openDashboard(env, out, errOut, false)
	if d == nil {
		return code
	}
	if err := d.Load(ctx); err != nil {
		return taskFailure(errOut, err)
	}
	if err := d.RenderStats(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
