// Package session persists the bearer token the way the web client keeps
// its `token` cookie: site-wide path, fixed 7-day expiry, strict same-site,
// Secure in production. The profile is only ever held in memory.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todopro/internal/service"
)

const (
	// CookieName is the name the token is stored under.
	CookieName = "token"

	// CookiePath scopes the cookie to the whole site.
	CookiePath = "/"

	// CookieTTL is the fixed lifetime of a stored token. It is never renewed.
	CookieTTL = 7 * 24 * time.Hour

	sameSiteStrict = "Strict"
)

// ErrNoSession is returned when no usable token is stored.
var ErrNoSession = errors.New("not logged in")

// Route is where the user should go next.
type Route string

const (
	RouteDashboard Route = "/dashboard"
	RouteLogin     Route = "/login"
)

// Session is an authenticated session. It is passed explicitly to whatever
// needs the token.
type Session struct {
	Token     string
	Profile   service.Profile
	ExpiresAt time.Time
}

// cookie is the on-disk form of the token.
type cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	SameSite string    `json:"same_site"`
}

// Store reads and writes the session cookie file.
type Store struct {
	path    string
	secure  bool
	now     func() time.Time
	current *Session
}

// NewStore creates a store backed by the file at path.
// secure marks the cookie as Secure (production).
func NewStore(path string, secure bool) *Store {
	return &Store{
		path:   path,
		secure: secure,
		now:    time.Now,
	}
}

// SetClock overrides the time source (for testing).
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Path returns the cookie file path.
func (s *Store) Path() string {
	return s.path
}

// Load initializes the store from disk. A missing cookie, an elapsed
// cookie expiry or an expired JWT means logged out; stale cookies are removed.
func (s *Store) Load() (*Session, error) {
	s.current = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var c cookie
	if err := json.Unmarshal(data, &c); err != nil || c.Name != CookieName || c.Value == "" {
		s.remove()
		return nil, ErrNoSession
	}

	now := s.now()
	expires := c.Expires
	if exp, ok := tokenExpiry(c.Value); ok && exp.Before(expires) {
		expires = exp
	}
	if !now.Before(expires) {
		s.remove()
		return nil, ErrNoSession
	}

	s.current = &Session{Token: c.Value, ExpiresAt: expires}
	return s.current, nil
}

// Current returns the loaded session, or nil when logged out.
func (s *Store) Current() *Session {
	return s.current
}

// Token returns the current bearer token.
func (s *Store) Token() (string, error) {
	if s.current == nil || s.current.Token == "" {
		return "", ErrNoSession
	}
	return s.current.Token, nil
}

// SetProfile records the profile of the current session in memory.
func (s *Store) SetProfile(p service.Profile) {
	if s.current != nil {
		s.current.Profile = p
	}
}

// Login persists token with a fresh 7-day expiry and keeps profile in memory.
func (s *Store) Login(token string, profile service.Profile) (Route, error) {
	if token == "" {
		return "", fmt.Errorf("empty token")
	}

	c := cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		Expires:  s.now().Add(CookieTTL).UTC(),
		Secure:   s.secure,
		SameSite: sameSiteStrict,
	}
	if err := s.save(c); err != nil {
		return "", err
	}

	s.current = &Session{Token: token, Profile: profile, ExpiresAt: c.Expires}
	return RouteDashboard, nil
}

// Logout removes the persisted cookie and the in-memory profile.
// Logging out without a session is not an error.
func (s *Store) Logout() (Route, error) {
	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to remove session: %w", err)
	}
	return RouteLogin, nil
}

// save writes the cookie file with mode 0600.
func (s *Store) save(c cookie) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) remove() {
	_ = os.Remove(s.path)
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
// Opaque tokens report ok=false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
