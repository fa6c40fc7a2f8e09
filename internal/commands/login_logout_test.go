package commands_test

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"todopro/internal/commands"
	"todopro/internal/exitcode"
	"todopro/internal/service"
	"todopro/internal/session"
	"todopro/internal/testutil"
)

func storedToken(t *testing.T, env *commands.Env) string {
	t.Helper()
	sess, err := session.NewStore(env.Config.SessionPath(), false).Load()
	if err != nil {
		return ""
	}
	return sess.Token
}

// TestLoginCommand stores the issued token.
func TestLoginCommand(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Login", mock.Anything, "ada", "secret1").Return(service.Credentials{Token: "tok", Email: "ada@example.com"}, nil)
	env := newEnv(t, nil, auth)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, env, "--password", "secret1", "ada")

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if got := storedToken(t, env); got != "tok" {
		t.Errorf("expected stored token %q, got %q", "tok", got)
	}
	if p := env.Store.Current().Profile; p.Email != "ada@example.com" || p.Username != "ada" {
		t.Errorf("unexpected profile %+v", p)
	}
	auth.AssertExpectations(t)
}

// TestLoginCommand_PasswordFromInput reads the password when no flag is given.
func TestLoginCommand_PasswordFromInput(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Login", mock.Anything, "ada", "secret1").Return(service.Credentials{Token: "tok"}, nil)
	env := newEnv(t, nil, auth)
	env.In = strings.NewReader("secret1\n")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, env, "ada")

	expectCode(t, exitcode.Success, code, stderr)
	if stderr != "Password: " {
		t.Errorf("expected password prompt, got %q", stderr)
	}
}

// TestLoginCommand_AlreadyLoggedIn keeps a valid session.
func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	auth := &testutil.MockAuth{}
	env := newEnv(t, nil, auth)
	if _, err := env.Store.Login("existing", service.Profile{}); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runCommand(t, &commands.LoginCmd{}, env, "--password", "secret1", "ada")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected 'already logged in', got %q", stdout)
	}
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

// TestLoginCommand_CorruptSession proceeds with login instead of
// reporting "already logged in".
func TestLoginCommand_CorruptSession(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Login", mock.Anything, "ada", "secret1").Return(service.Credentials{Token: "fresh"}, nil)
	env := newEnv(t, nil, auth)
	if err := os.WriteFile(env.Config.SessionPath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, env, "-p", "secret1", "ada")

	expectCode(t, exitcode.Success, code, stderr)
	if stdout == "already logged in\n" {
		t.Error("should not say 'already logged in' with a corrupt session")
	}
	if got := storedToken(t, env); got != "fresh" {
		t.Errorf("expected stored token %q, got %q", "fresh", got)
	}
}

func TestLoginCommand_Validation(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no username", []string{"-p", "secret1"}, "error: username required\n"},
		{"short username", []string{"-p", "secret1", "ab"}, "error: username must be at least 3 characters\n"},
		{"short password", []string{"-p", "12345", "ada"}, "error: password must be at least 6 characters\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &testutil.MockAuth{}
			_, stderr, code := runCommand(t, &commands.LoginCmd{}, newEnv(t, nil, auth), tt.args...)

			expectCode(t, exitcode.UserError, code, stderr)
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
			auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLoginCommand_Rejected(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Login", mock.Anything, "ada", "wrongpw").Return(service.Credentials{}, fmt.Errorf("%w: invalid credentials", service.ErrAuth))
	env := newEnv(t, nil, auth)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, env, "-p", "wrongpw", "ada")

	expectCode(t, exitcode.AuthError, code, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: auth error: authentication failed: invalid credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if storedToken(t, env) != "" {
		t.Error("no session should be stored")
	}
}

func TestRegisterCommand(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Register", mock.Anything, "ada", "ada@example.com", "secret1").Return(service.Credentials{Token: "tok"}, nil)
	env := newEnv(t, nil, auth)

	stdout, stderr, code := runCommand(t, &commands.RegisterCmd{}, env, "--email", "ada@example.com", "-p", "secret1", "ada")

	expectCode(t, exitcode.Success, code, stderr)
	want := "verification code sent to ada@example.com (run: todopro verify --email ada@example.com <code>)\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
	if got := storedToken(t, env); got != "tok" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestRegisterCommand_InvalidEmail(t *testing.T) {
	auth := &testutil.MockAuth{}

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, newEnv(t, nil, auth), "--email", "nope", "-p", "secret1", "ada")

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: invalid email address\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCommand(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("Verify", mock.Anything, "ada@example.com", "123456").Return(service.Credentials{Token: "verified"}, nil)
	env := newEnv(t, nil, auth)

	stdout, stderr, code := runCommand(t, &commands.VerifyCmd{}, env, "--email", "ada@example.com", "123456")

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if got := storedToken(t, env); got != "verified" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestVerifyCommand_BadCode(t *testing.T) {
	auth := &testutil.MockAuth{}

	_, stderr, code := runCommand(t, &commands.VerifyCmd{}, newEnv(t, nil, auth), "--email", "ada@example.com", "12ab56")

	expectCode(t, exitcode.UserError, code, stderr)
	if stderr != "error: code must be 6 digits\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestResendCommand(t *testing.T) {
	auth := &testutil.MockAuth{}
	auth.On("ResendVerification", mock.Anything, "ada@example.com").Return(nil)

	stdout, stderr, code := runCommand(t, &commands.ResendCmd{}, newEnv(t, nil, auth), "ada@example.com")

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	auth.AssertExpectations(t)
}

// TestLogoutCommand_NoSession reports "not logged in".
func TestLogoutCommand_NoSession(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, newEnv(t, nil, nil))

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

// TestLogoutCommand_RemovesSession deletes the cookie file.
func TestLogoutCommand_RemovesSession(t *testing.T) {
	env := newEnv(t, nil, nil)
	if _, err := env.Store.Login("tok", service.Profile{Username: "ada"}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, env)

	expectCode(t, exitcode.Success, code, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	if _, err := os.Stat(env.Config.SessionPath()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}
}
