package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todopro/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	date   string
	hour   int
	minute int
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todopro add [--date YYYY-MM-DD] [--hour H] [--minute M] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
	fs.IntVar(&c.hour, "hour", -1, "")
	fs.IntVar(&c.minute, "minute", -1, "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	d, code := openDashboard(env, out, errOut, false)
	if d == nil {
		return code
	}

	// Unset fields default to now, as the add form pre-fills them.
	draft := d.Draft(title)
	if c.date != "" {
		draft.Date = c.date
	}
	if c.hour >= 0 {
		draft.Hour = c.hour
	}
	if c.minute >= 0 {
		draft.Minute = c.minute
	}

	if err := d.Add(ctx, draft); err != nil {
		return taskFailure(errOut, err)
	}

	printOK(env, out)
	return exitcode.Success
}
