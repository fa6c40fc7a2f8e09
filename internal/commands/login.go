package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todopro/internal/exitcode"
	"todopro/internal/service"
	"todopro/internal/session"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
	Register(&VerifyCmd{})
	Register(&ResendCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to TodoPro" }
func (c *LoginCmd) Usage() string     { return "todopro login [--password <p>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	// A stored, unexpired session is reused.
	if _, err := env.Store.Load(); err == nil {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	} else if !errors.Is(err, session.ErrNoSession) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	username := args[0]

	password, err := c.readPassword(env, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := firstError(service.ValidateUsername(username), service.ValidatePassword(password)); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	creds, err := env.Auth.Login(ctx, username, password)
	if err != nil {
		return authFailure(errOut, err)
	}

	return startSession(env, creds.Token, service.Profile{Username: username, Email: creds.Email}, out, errOut)
}

func (c *LoginCmd) readPassword(env *Env, errOut io.Writer) (string, error) {
	if c.password != "" {
		return c.password, nil
	}
	return prompt(env.In, errOut, "Password: ")
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "todopro register --email <email> [--password <p>] <username>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "")
	fs.StringVarP(&c.password, "password", "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	username := args[0]

	password := c.password
	if password == "" {
		var err error
		if password, err = prompt(env.In, errOut, "Password: "); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if err := firstError(
		service.ValidateUsername(username),
		service.ValidateEmail(c.email),
		service.ValidatePassword(password),
	); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	creds, err := env.Auth.Register(ctx, username, c.email, password)
	if err != nil {
		return authFailure(errOut, err)
	}

	if code := startSession(env, creds.Token, service.Profile{Username: username, Email: c.email}, io.Discard, errOut); code != exitcode.Success {
		return code
	}
	if !env.Config.Quiet {
		fmt.Fprintf(out, "verification code sent to %s (run: todopro verify --email %s <code>)\n", c.email, c.email)
	}
	return exitcode.Success
}

// VerifyCmd implements the verify command.
type VerifyCmd struct {
	email string
}

func (c *VerifyCmd) Name() string      { return "verify" }
func (c *VerifyCmd) Aliases() []string { return nil }
func (c *VerifyCmd) Synopsis() string  { return "Confirm the emailed verification code" }
func (c *VerifyCmd) Usage() string     { return "todopro verify --email <email> <code>" }
func (c *VerifyCmd) NeedsAuth() bool   { return false }

func (c *VerifyCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "")
}

func (c *VerifyCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: verification code required")
		return exitcode.UserError
	}
	code := args[0]
	if err := firstError(service.ValidateEmail(c.email), service.ValidateCode(code)); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	creds, err := env.Auth.Verify(ctx, c.email, code)
	if err != nil {
		return authFailure(errOut, err)
	}
	return startSession(env, creds.Token, service.Profile{Email: c.email, Verified: true}, out, errOut)
}

// ResendCmd implements the resend command.
type ResendCmd struct{}

func (c *ResendCmd) Name() string      { return "resend" }
func (c *ResendCmd) Aliases() []string { return nil }
func (c *ResendCmd) Synopsis() string  { return "Send a new verification code" }
func (c *ResendCmd) Usage() string     { return "todopro resend <email>" }
func (c *ResendCmd) NeedsAuth() bool   { return false }

func (c *ResendCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ResendCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	if err := service.ValidateEmail(args[0]); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := env.Auth.ResendVerification(ctx, args[0]); err != nil {
		return authFailure(errOut, err)
	}
	printOK(env, out)
	return exitcode.Success
}

// startSession stores the token and prints "ok".
func startSession(env *Env, token string, profile service.Profile, out, errOut io.Writer) int {
	route, err := env.Store.Login(token, profile)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}
	env.Log.Debug("session started", zap.String("route", string(route)))
	printOK(env, out)
	return exitcode.Success
}

// prompt writes label to w and reads one line from in.
func prompt(in io.Reader, w io.Writer, label string) (string, error) {
	if in == nil {
		return "", fmt.Errorf("password required")
	}
	fmt.Fprint(w, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("password required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
