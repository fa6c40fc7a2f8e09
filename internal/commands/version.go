package commands

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/pflag"

	"todopro/internal/exitcode"
	"todopro/internal/output"
)

// Version is the application version. Set at build time with
// -ldflags "-X todopro/internal/commands.Version=...".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// buildInfo is the machine-readable form of the version command.
type buildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Go      string `json:"go" yaml:"go"`
	APIURL  string `json:"api_url" yaml:"api_url"`
}

// VersionCmd implements the version command.
type VersionCmd struct {
	short bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "todopro version [--short] [-o json|yaml]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.short, "short", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.short {
		fmt.Fprintln(out, Version)
		return exitcode.Success
	}

	format, err := output.ParseFormat(env.Config.Output)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if format == output.Text {
		fmt.Fprintf(out, "todopro %s\n", Version)
		return exitcode.Success
	}

	info := buildInfo{Version: Version, Commit: vcsRevision(), Go: runtime.Version(), APIURL: env.Config.APIURL}
	if err := output.Encode(out, format, info); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// vcsRevision returns the commit the binary was built from, if recorded.
func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
