package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"todopro/internal/dashboard"
	"todopro/internal/exitcode"
	"todopro/internal/output"
	"todopro/internal/service"
	"todopro/internal/tasklist"
)

// taskFailure maps an error from a dashboard operation to an exit code.
// Gateway failures have already been shown by the notifier, so only the
// login hint is added for rejected tokens.
func taskFailure(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, tasklist.ErrInvalidDraft),
		errors.Is(err, tasklist.ErrNotFound),
		errors.Is(err, dashboard.ErrSaving):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintln(errOut, "error: auth error: token expired or revoked (run: todopro login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrNetwork):
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}

// authFailure reports a failed account call.
func authFailure(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	return exitcode.AuthError
}

// openDashboard builds a dashboard for the logged-in session. It returns
// a non-zero exit code when the configured output format is invalid.
func openDashboard(env *Env, out, errOut io.Writer, live bool) (*dashboard.Dashboard, int) {
	format, err := output.ParseFormat(env.Config.Output)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}
	d := dashboard.New(env.Tasks, dashboard.Options{
		Out:      out,
		Format:   format,
		Notifier: dashboard.WriterNotifier(errOut),
		Log:      env.Log,
		Live:     live,
	})
	return d, exitcode.Success
}

// taskRef reads a task reference from --id or the single positional argument.
func taskRef(id string, args []string) (dashboard.Ref, error) {
	if id != "" {
		if len(args) > 0 {
			return dashboard.Ref{}, fmt.Errorf("cannot use both --id and a task number")
		}
		return dashboard.Ref{ID: service.ID(strings.TrimPrefix(id, "#"))}, nil
	}
	switch len(args) {
	case 0:
		return dashboard.Ref{}, fmt.Errorf("task reference required")
	case 1:
		return dashboard.ParseRef(args[0])
	default:
		return dashboard.Ref{}, fmt.Errorf("too many arguments")
	}
}

// endSession removes a session the server no longer accepts.
func endSession(env *Env) {
	if env.Store == nil {
		return
	}
	if _, err := env.Store.Logout(); err != nil {
		env.Log.Warn("failed to remove session", zap.Error(err))
	}
}

// printOK prints "ok" unless --quiet.
func printOK(env *Env, out io.Writer) {
	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
