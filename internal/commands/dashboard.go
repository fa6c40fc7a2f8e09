package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"todopro/internal/exitcode"
	"todopro/internal/service"
)

func init() {
	Register(&DashboardCmd{})
	Register(&WhoamiCmd{})
}

// DashboardCmd implements the interactive dashboard.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"ui"} }
func (c *DashboardCmd) Synopsis() string  { return "Interactive task dashboard" }
func (c *DashboardCmd) Usage() string     { return "todopro dashboard" }
func (c *DashboardCmd) NeedsAuth() bool   { return true }

func (c *DashboardCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	d, code := openDashboard(env, out, errOut, false)
	if d == nil {
		return code
	}

	// The profile and the task list are fetched together. A rejected
	// profile request ends the session; a failed list load only leaves
	// the list empty, as the notifier has already said so.
	var (
		g       errgroup.Group
		profile service.Profile
		loadErr error
	)
	g.Go(func() error {
		p, err := env.Auth.User(ctx, env.Session.Token)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		loadErr = d.Load(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		endSession(env)
		fmt.Fprintln(errOut, "error: auth error: session expired (run: todopro login)")
		return exitcode.AuthError
	}
	env.Store.SetProfile(profile)

	if !env.Config.Quiet {
		d.Printf("Welcome back, %s\n", displayName(profile))
	}
	if loadErr == nil {
		if err := d.Render(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	}

	d.SetLive(true)
	if err := d.Run(ctx, env.In); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "todopro whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	p, err := env.Auth.User(ctx, env.Session.Token)
	if err != nil {
		endSession(env)
		return authFailure(errOut, err)
	}
	env.Store.SetProfile(p)

	status := "not verified"
	if p.Verified {
		status = "verified"
	}
	if p.Email != "" {
		fmt.Fprintf(out, "%s <%s> (%s)\n", displayName(p), p.Email, status)
	} else {
		fmt.Fprintf(out, "%s (%s)\n", displayName(p), status)
	}
	return exitcode.Success
}

func displayName(p service.Profile) string {
	if p.Username != "" {
		return p.Username
	}
	if p.Email != "" {
		return p.Email
	}
	return "(unknown)"
}
