package todoapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopro/internal/backend/todoapi"
	"todopro/internal/service"
	"todopro/internal/testutil"
)

func newAuth(t *testing.T, api *testutil.FakeAPI) *todoapi.AuthClient {
	t.Helper()
	a, err := todoapi.NewAuthClient(api.BaseURL(), nil, nil)
	require.NoError(t, err)
	return a
}

func TestLogin(t *testing.T) {
	api := startAPI(t)

	creds, err := newAuth(t, api).Login(context.Background(), "ada", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.Token)
	assert.Equal(t, "ada@example.com", creds.Email)
}

func TestLogin_BadPassword(t *testing.T) {
	api := startAPI(t)

	_, err := newAuth(t, api).Login(context.Background(), "ada", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLogin_ResponseWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	a, err := todoapi.NewAuthClient(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "ada", "secret1")
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestRegisterThenVerify(t *testing.T) {
	api := startAPI(t)
	a := newAuth(t, api)

	creds, err := a.Register(context.Background(), "bob", "bob@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "token-bob", creds.Token)

	_, err = a.Verify(context.Background(), "bob@example.com", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by server (400)")

	creds, err = a.Verify(context.Background(), "bob@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "token-bob", creds.Token)
}

func TestRegister_Conflict(t *testing.T) {
	api := startAPI(t)

	_, err := newAuth(t, api).Register(context.Background(), "ada", "x@example.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by server (409)")
}

func TestResendVerification(t *testing.T) {
	api := startAPI(t)

	require.NoError(t, newAuth(t, api).ResendVerification(context.Background(), "ada@example.com"))
	assert.Equal(t, []string{"ada@example.com"}, api.Resent)
}

func TestUser(t *testing.T) {
	api := startAPI(t)

	p, err := newAuth(t, api).User(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, service.Profile{Username: "ada", Email: "ada@example.com", Verified: true}, p)
}

func TestUser_RevokedToken(t *testing.T) {
	api := startAPI(t)
	a := newAuth(t, api)

	_, err := a.User(context.Background(), "revoked")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = a.User(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrNoToken)
}
