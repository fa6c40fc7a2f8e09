// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todopro/internal/config"
	"todopro/internal/service"
	"todopro/internal/session"
)

// Env is everything a command may use. The dispatcher fills it in.
type Env struct {
	// Config is always provided.
	Config *config.Config

	// Store is the session cookie store for Config.Dir.
	Store *session.Store

	// Session and Tasks are set only when NeedsAuth() returns true.
	Session *session.Session
	Tasks   service.Service

	// Auth talks to the account endpoints.
	Auth service.Auth

	// Log is never nil.
	Log *zap.Logger

	// In supplies interactive input (passwords, dashboard commands).
	In io.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
