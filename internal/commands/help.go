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
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todopro help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, c.text())
	return exitcode.Success
}

func (c *HelpCmd) text() string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	b.WriteString("  todopro                     List tasks and stats\n")

	registry := c.registry
	if registry == nil {
		registry = DefaultRegistry
	}
	for _, cmd := range registry.All() {
		fmt.Fprintf(&b, "  %-28s%s\n", cmd.Name(), cmd.Synopsis())
		fmt.Fprintf(&b, "      %s\n", cmd.Usage())
	}

	b.WriteString(commonFlags)
	return b.String()
}

const commonFlags = `
Task references:
  <n>                The number shown by list
  --id <id>          The server id of the task

Common flags:
  --config <dir>     Override config directory
  --api-url <url>    Override the API base URL
  -o, --output <f>   Output format: text, json or yaml
  -q, --quiet        Suppress informational output
  --debug            Print debug logs to stderr
`
