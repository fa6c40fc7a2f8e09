package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"todopro/internal/service"
)

// Account is a user known to FakeAPI.
type Account struct {
	Username string
	Email    string
	Password string
	Code     string
	Verified bool
	Token    string
}

// FakeAPI is an httptest server speaking the TodoPro REST API.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []service.Task
	nextID   int
	accounts []*Account

	// ReplyWithResults makes add and update reply with {"results": [...]}.
	ReplyWithResults bool

	// Fail maps "METHOD /pattern" (e.g. "POST /todos/add") to a status
	// code returned instead of handling the request.
	Fail map[string]int

	// Resent records emails passed to resend-verification.
	Resent []string

	// Requests records "METHOD path" for every request.
	Requests []string
}

// NewFakeAPI starts a server. Close it with t.Cleanup(api.Close).
func NewFakeAPI() *FakeAPI {
	api := &FakeAPI{nextID: 1, Fail: make(map[string]int)}

	r := chi.NewRouter()
	r.Use(api.recordAndFail)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", api.login)
		r.Post("/register", api.register)
		r.Post("/verify", api.verify)
		r.Post("/resend-verification", api.resend)
		r.With(api.requireToken).Get("/user", api.user)
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(api.requireToken)
		r.Get("/", api.listTodos)
		r.Post("/add", api.addTodo)
		r.Put("/{id}", api.updateTodo)
		r.Delete("/{id}", api.deleteTodo)
	})

	api.Server = httptest.NewServer(r)
	return api
}

// BaseURL returns the server URL with a trailing slash.
func (a *FakeAPI) BaseURL() string {
	return a.Server.URL + "/"
}

// AddAccount registers a verified account with the given token.
func (a *FakeAPI) AddAccount(acc Account) *Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	stored := acc
	a.accounts = append(a.accounts, &stored)
	return &stored
}

// AddTask stores a task directly.
func (a *FakeAPI) AddTask(t service.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = append(a.tasks, t)
	if n, err := strconv.Atoi(string(t.ID)); err == nil && n >= a.nextID {
		a.nextID = n + 1
	}
}

// Tasks returns a copy of the stored tasks.
func (a *FakeAPI) Tasks() []service.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]service.Task, len(a.tasks))
	copy(out, a.tasks)
	return out
}

func (a *FakeAPI) recordAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.Requests = append(a.Requests, r.Method+" "+r.URL.Path)
		code := a.failFor(r)
		a.mu.Unlock()

		if code != 0 {
			writeJSON(w, code, map[string]string{"error": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) failFor(r *http.Request) int {
	path := strings.TrimSuffix(r.URL.Path, "/")
	for key, code := range a.Fail {
		method, pattern, _ := strings.Cut(key, " ")
		if method != r.Method {
			continue
		}
		if matchPattern(pattern, path) {
			return code
		}
	}
	return 0
}

func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") || ps[i] == xs[i] {
			continue
		}
		return false
	}
	return true
}

func (a *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || a.accountByToken(token) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) accountByToken(token string) *Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.Token != "" && acc.Token == token {
			return acc
		}
	}
	return nil
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	if !decode(w, r, &in) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.Username == in.Username && acc.Password == in.Password {
			writeJSON(w, http.StatusOK, map[string]string{"token": acc.Token, "email": acc.Email})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Email, Password string }
	if !decode(w, r, &in) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.Username == in.Username {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "username taken"})
			return
		}
	}
	acc := &Account{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Code:     "123456",
		Token:    "token-" + in.Username,
	}
	a.accounts = append(a.accounts, acc)
	writeJSON(w, http.StatusCreated, map[string]string{"token": acc.Token})
}

func (a *FakeAPI) verify(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Code string }
	if !decode(w, r, &in) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.Email == in.Email && acc.Code == in.Code {
			acc.Verified = true
			writeJSON(w, http.StatusOK, map[string]string{"token": acc.Token})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid code"})
}

func (a *FakeAPI) resend(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email string }
	if !decode(w, r, &in) {
		return
	}
	a.mu.Lock()
	a.Resent = append(a.Resent, in.Email)
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
}

func (a *FakeAPI) user(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	acc := a.accountByToken(token)
	writeJSON(w, http.StatusOK, service.Profile{Username: acc.Username, Email: acc.Email, Verified: acc.Verified})
}

func (a *FakeAPI) listTodos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Tasks())
}

func (a *FakeAPI) addTodo(w http.ResponseWriter, r *http.Request) {
	var d service.Draft
	if !decode(w, r, &d) {
		return
	}
	if strings.TrimSpace(d.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title required"})
		return
	}

	a.mu.Lock()
	t := service.Task{
		ID:     service.ID(strconv.Itoa(a.nextID)),
		Title:  d.Title,
		Date:   d.Date,
		Hour:   d.Hour,
		Minute: d.Minute,
	}
	a.nextID++
	a.tasks = append(a.tasks, t)
	a.mu.Unlock()

	a.reply(w, http.StatusCreated, t)
}

func (a *FakeAPI) updateTodo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status bool `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	id := service.ID(chi.URLParam(r, "id"))

	a.mu.Lock()
	var updated *service.Task
	for i := range a.tasks {
		if a.tasks[i].ID == id {
			a.tasks[i].Status = in.Status
			t := a.tasks[i]
			updated = &t
		}
	}
	a.mu.Unlock()

	if updated == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "todo not found"})
		return
	}
	a.reply(w, http.StatusOK, *updated)
}

func (a *FakeAPI) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id := service.ID(chi.URLParam(r, "id"))

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, t := range a.tasks {
		if t.ID == id {
			a.tasks = append(a.tasks[:i], a.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "todo not found"})
}

func (a *FakeAPI) reply(w http.ResponseWriter, code int, t service.Task) {
	if a.ReplyWithResults {
		writeJSON(w, code, map[string]any{"results": a.Tasks()})
		return
	}
	writeJSON(w, code, t)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
