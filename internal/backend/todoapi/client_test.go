package todoapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todopro/internal/backend/todoapi"
	"todopro/internal/config"
	"todopro/internal/service"
	"todopro/internal/session"
	"todopro/internal/testutil"
)

func newClient(t *testing.T, api *testutil.FakeAPI, token string) *todoapi.Client {
	t.Helper()
	cfg := &config.Config{APIURL: api.BaseURL()}
	c, err := todoapi.New(context.Background(), cfg, &session.Session{Token: token}, nil)
	require.NoError(t, err)
	return c
}

func startAPI(t *testing.T) *testutil.FakeAPI {
	t.Helper()
	api := testutil.NewFakeAPI()
	t.Cleanup(api.Close)
	api.AddAccount(testutil.Account{Username: "ada", Email: "ada@example.com", Password: "secret1", Token: "tok", Verified: true})
	return api
}

func TestNew_RequiresToken(t *testing.T) {
	cfg := &config.Config{APIURL: "http://127.0.0.1:5000/"}

	_, err := todoapi.New(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, service.ErrNoToken)

	_, err = todoapi.New(context.Background(), cfg, &session.Session{}, nil)
	assert.ErrorIs(t, err, service.ErrNoToken)
}

func TestNewWithHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := todoapi.NewWithHTTPClient("not a url", nil, nil)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	api := startAPI(t)
	api.AddTask(service.Task{ID: "1", Title: "Buy milk", Date: "2024-01-01", Hour: 9})
	api.AddTask(service.Task{ID: "2", Title: "Walk dog", Status: true})

	tasks, err := newClient(t, api, "tok").List(context.Background())
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, service.ID("2"), tasks[1].ID)
	assert.True(t, tasks[1].Status)
}

func TestList_Empty(t *testing.T) {
	api := startAPI(t)

	tasks, err := newClient(t, api, "tok").List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestList_ResultsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"todo_id":3,"title":"x"}]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := todoapi.NewWithHTTPClient(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)

	tasks, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, service.ID("3"), tasks[0].ID)
}

func TestList_InvalidToken(t *testing.T) {
	api := startAPI(t)

	_, err := newClient(t, api, "wrong").List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNetwork)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Contains(t, err.Error(), "token expired or revoked")
}

func TestList_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	c, err := todoapi.NewWithHTTPClient(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)

	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, service.ErrNetwork)
}

func TestCreate_SingleRecord(t *testing.T) {
	api := startAPI(t)
	c := newClient(t, api, "tok")

	out, err := c.Create(context.Background(), service.Draft{Title: "Buy milk", Date: "2024-01-01", Hour: 9, Minute: 30})
	require.NoError(t, err)

	assert.False(t, out.IsReplacement())
	require.NotNil(t, out.Record)
	assert.Equal(t, service.Task{ID: "1", Title: "Buy milk", Date: "2024-01-01", Hour: 9, Minute: 30}, *out.Record)
	assert.Len(t, api.Tasks(), 1)
}

func TestCreate_Results(t *testing.T) {
	api := startAPI(t)
	api.ReplyWithResults = true
	api.AddTask(service.Task{ID: "1", Title: "existing"})
	c := newClient(t, api, "tok")

	out, err := c.Create(context.Background(), service.Draft{Title: "new", Date: "2024-01-01"})
	require.NoError(t, err)

	require.True(t, out.IsReplacement())
	require.Len(t, out.Results, 2)
	assert.Equal(t, "new", out.Results[1].Title)
	assert.Equal(t, service.ID("2"), out.Results[1].ID)
}

func TestCreate_ServerError(t *testing.T) {
	api := startAPI(t)
	api.Fail["POST /todos/add"] = http.StatusInternalServerError

	_, err := newClient(t, api, "tok").Create(context.Background(), service.Draft{Title: "x", Date: "2024-01-01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrCreate)
	assert.ErrorIs(t, err, service.ErrNetwork)
	assert.Contains(t, err.Error(), "server returned 500")
}

func TestSetStatus(t *testing.T) {
	api := startAPI(t)
	api.AddTask(service.Task{ID: "7", Title: "x"})
	c := newClient(t, api, "tok")

	out, err := c.SetStatus(context.Background(), "7", true)
	require.NoError(t, err)

	require.NotNil(t, out.Record)
	assert.True(t, out.Record.Status)
	assert.True(t, api.Tasks()[0].Status)
	assert.Contains(t, api.Requests, "PUT /todos/7")
}

func TestSetStatus_RecordWithoutIDUsesRequestedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true}`))
	}))
	t.Cleanup(srv.Close)

	c, err := todoapi.NewWithHTTPClient(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)

	out, err := c.SetStatus(context.Background(), "42", true)
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Equal(t, service.ID("42"), out.Record.ID)
	assert.True(t, out.Record.Status)
}

func replyWith(t *testing.T, body string) *todoapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := todoapi.NewWithHTTPClient(srv.URL+"/", srv.Client(), nil)
	require.NoError(t, err)
	return c
}

func TestSetStatus_ReplyWithoutStatusConfirmsRequested(t *testing.T) {
	c := replyWith(t, `{"message":"Todo updated"}`)

	for _, want := range []bool{true, false} {
		out, err := c.SetStatus(context.Background(), "42", want)
		require.NoError(t, err)
		require.NotNil(t, out.Record)
		assert.Equal(t, service.ID("42"), out.Record.ID)
		assert.Equal(t, want, out.Record.Status)
	}
}

func TestSetStatus_ReplyStatusWins(t *testing.T) {
	c := replyWith(t, `{"todo_id":42,"status":false}`)

	out, err := c.SetStatus(context.Background(), "42", true)
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.False(t, out.Record.Status)
}

func TestCreate_ReplyWithoutStatusIsPending(t *testing.T) {
	c := replyWith(t, `{"todo_id":5,"title":"Buy milk"}`)

	out, err := c.Create(context.Background(), service.Draft{Title: "Buy milk", Date: "2024-01-01"})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.False(t, out.Record.Status)
}

func TestSetStatus_NotFound(t *testing.T) {
	api := startAPI(t)

	_, err := newClient(t, api, "tok").SetStatus(context.Background(), "99", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUpdate)
	assert.Contains(t, err.Error(), "not found")
}

func TestDelete(t *testing.T) {
	api := startAPI(t)
	api.AddTask(service.Task{ID: "1", Title: "a"})
	api.AddTask(service.Task{ID: "2", Title: "b"})

	err := newClient(t, api, "tok").Delete(context.Background(), "1")
	require.NoError(t, err)

	remaining := api.Tasks()
	require.Len(t, remaining, 1)
	assert.Equal(t, service.ID("2"), remaining[0].ID)
}

func TestDelete_Failure(t *testing.T) {
	api := startAPI(t)
	api.AddTask(service.Task{ID: "1", Title: "a"})
	api.Fail["DELETE /todos/{id}"] = http.StatusBadGateway

	err := newClient(t, api, "tok").Delete(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrDelete))
	assert.Len(t, api.Tasks(), 1)
}

func TestCanceledContext(t *testing.T) {
	api := startAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, api, "tok").List(ctx)
	assert.ErrorIs(t, err, service.ErrNetwork)
}
