// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ID identifies a task. The server may send integers or strings;
// both are kept in their string form.
type ID string

// UnmarshalJSON accepts a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid task id: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Task represents a single task record as confirmed by the server.
type Task struct {
	ID     ID     `json:"todo_id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Status bool   `json:"status" yaml:"status"` // false = pending, true = completed
	Date   string `json:"task_date" yaml:"date"`
	Hour   int    `json:"task_hour" yaml:"hour"`
	Minute int    `json:"task_minute" yaml:"minute"`
}

// Draft is what the user submits when adding a task.
type Draft struct {
	Title  string `json:"title"`
	Date   string `json:"task_date"`
	Hour   int    `json:"task_hour"`
	Minute int    `json:"task_minute"`
}

// NewDraft creates a draft scheduled at now, the way the add form pre-fills it.
func NewDraft(title string, now time.Time) Draft {
	return Draft{
		Title:  title,
		Date:   now.Format(DateLayout),
		Hour:   now.Hour(),
		Minute: now.Minute(),
	}
}

// Validate reports the first invalid field of the draft.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title required")
	}
	if !datePattern.MatchString(d.Date) {
		return fmt.Errorf("invalid date: %q (want YYYY-MM-DD)", d.Date)
	}
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return fmt.Errorf("invalid date: %q", d.Date)
	}
	if d.Hour < 0 || d.Hour > 23 {
		return fmt.Errorf("invalid hour: %d", d.Hour)
	}
	if d.Minute < 0 || d.Minute > 59 {
		return fmt.Errorf("invalid minute: %d", d.Minute)
	}
	return nil
}

// Outcome is the result of a successful create or status update.
// Exactly one of Results and Record is set.
type Outcome struct {
	// Results is the full replacement list; non-nil when the response carried one.
	Results []Task

	// Record is the single created or updated task.
	Record *Task
}

// IsReplacement reports whether the outcome carries a full replacement list.
func (o Outcome) IsReplacement() bool {
	return o.Results != nil
}

// Profile is the minimal user profile shown on the dashboard.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"is_verified"`
}

// Credentials is the token issued by the auth endpoints.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}
