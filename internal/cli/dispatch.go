// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todopro/internal/commands"
	"todopro/internal/config"
	"todopro/internal/exitcode"
	"todopro/internal/logger"
	"todopro/internal/service"
	"todopro/internal/session"
)

// ServiceFactory creates the task gateway for a logged-in session.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *session.Session, log *zap.Logger) (service.Service, error)

// AuthFactory creates the client for the account endpoints.
type AuthFactory func(cfg *config.Config, log *zap.Logger) (service.Auth, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	auth     AuthFactory

	// In is handed to commands for interactive input. Nil means no input.
	In io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, auth AuthFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		auth:     auth,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	apiURL    string
	output    string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.apiURL, "api-url", config.DefaultAPIURL, "")
	fs.StringVarP(&f.output, "output", "o", "text", "")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args lists the tasks.
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// Flags require a command.
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.Load(common.configDir, fs)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	log := logger.New(cfg.Debug, errOut)
	defer func() { _ = log.Sync() }()
	log.Debug("dispatch", zap.String("command", cmd.Name()), zap.String("api_url", cfg.APIURL))

	env := &commands.Env{
		Config: cfg,
		Store:  session.NewStore(cfg.SessionPath(), cfg.Production()),
		Log:    log,
		In:     d.In,
	}

	if d.auth != nil {
		if env.Auth, err = d.auth(cfg, log); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}

	if cmd.NeedsAuth() {
		if code := d.authenticate(ctx, env, errOut); code != exitcode.Success {
			return code
		}
	}

	code := cmd.Run(ctx, env, fs.Args(), out, errOut)
	log.Debug("done", zap.String("command", cmd.Name()), zap.Int("code", code), zap.String("result", exitcode.Of(code)))
	return code
}

// authenticate loads the stored session and builds the task gateway for it.
func (d *Dispatcher) authenticate(ctx context.Context, env *commands.Env, errOut io.Writer) int {
	sess, err := env.Store.Load()
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(errOut, "error: not logged in (run: todopro login)")
		return exitcode.AuthError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return exitcode.AuthError
	}
	env.Session = sess

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: backend error: no task backend configured")
		return exitcode.BackendError
	}
	env.Tasks, err = d.factory(ctx, env.Config, sess, env.Log)
	if err != nil {
		if errors.Is(err, service.ErrNoToken) || errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
