// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for the remote task API.
// All task HTTP calls go through this interface.
// Commands and the task list never import the HTTP client directly.
type Service interface {
	// List returns all tasks in server order (no client-side sorting).
	List(ctx context.Context) ([]Task, error)

	// Create adds a task. The outcome carries either the full
	// replacement list or the single created record.
	Create(ctx context.Context, draft Draft) (Outcome, error)

	// SetStatus sets the completion status of a task.
	SetStatus(ctx context.Context, id ID, status bool) (Outcome, error)

	// Delete removes a task.
	Delete(ctx context.Context, id ID) error
}

// Auth defines the account endpoints of the remote API.
type Auth interface {
	// Login exchanges username and password for a token.
	Login(ctx context.Context, username, password string) (Credentials, error)

	// Register creates an account. A verification code is mailed to email.
	Register(ctx context.Context, username, email, password string) (Credentials, error)

	// Verify confirms the emailed code and returns a token.
	Verify(ctx context.Context, email, code string) (Credentials, error)

	// ResendVerification mails a new verification code.
	ResendVerification(ctx context.Context, email string) error

	// User returns the profile of the token's owner.
	User(ctx context.Context, token string) (Profile, error)
}
