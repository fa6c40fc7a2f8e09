// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"todopro/internal/service"
	"todopro/internal/tasklist"
)

const (
	// ListSeparator separates the task rows from the stat cards.
	ListSeparator = "------------"

	savingMarker = "(saving...)"
)

// Format selects how lists and stats are rendered.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates an --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (want text, json or yaml)", s)
	}
}

// FormatTask formats one task row.
// Format: "{N:>4}  [ ] {TITLE}  {DATE} {HH:MM}  #{ID}\n"; pending entries
// show "(saving...)" in place of the id.
func FormatTask(w io.Writer, num int, task service.Task, saving bool) {
	box := "[ ]"
	if task.Status {
		box = "[x]"
	}
	ref := "#" + string(task.ID)
	if saving {
		ref = savingMarker
	}
	fmt.Fprintf(w, "%4d  %s %s  %s  %s\n", num, box, normalizeTitle(task.Title), when(task), ref)
}

// FormatStats formats the three stat cards.
func FormatStats(w io.Writer, st tasklist.Stats) {
	fmt.Fprintf(w, "Total: %d  Completed: %d  Pending: %d\n", st.Total, st.Completed, st.Pending)
}

// FormatList writes every entry followed by the stat cards.
func FormatList(w io.Writer, st tasklist.State) {
	entries := st.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "no tasks found")
	}
	for i, e := range entries {
		FormatTask(w, i+1, e.Task(), e.IsPending())
	}
	fmt.Fprintln(w, ListSeparator)
	FormatStats(w, st.Stats())
}

// Render writes the state in the requested format.
func Render(w io.Writer, f Format, st tasklist.State) error {
	if f == Text {
		FormatList(w, st)
		return nil
	}
	return Encode(w, f, newDocument(st))
}

// RenderStats writes only the aggregates in the requested format.
func RenderStats(w io.Writer, f Format, st tasklist.Stats) error {
	if f == Text {
		FormatStats(w, st)
		return nil
	}
	return Encode(w, f, st)
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid output format: %q", f)
	}
}

// document is the machine-readable form of a list.
type document struct {
	Tasks []row          `json:"tasks" yaml:"tasks"`
	Stats tasklist.Stats `json:"stats" yaml:"stats"`
}

type row struct {
	Position int        `json:"position" yaml:"position"`
	ID       service.ID `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string     `json:"title" yaml:"title"`
	Status   bool       `json:"status" yaml:"status"`
	Date     string     `json:"date" yaml:"date"`
	Time     string     `json:"time" yaml:"time"`
	Saving   bool       `json:"saving,omitempty" yaml:"saving,omitempty"`
}

func newDocument(st tasklist.State) document {
	doc := document{Tasks: []row{}, Stats: st.Stats()}
	for i, e := range st.Entries() {
		t := e.Task()
		doc.Tasks = append(doc.Tasks, row{
			Position: i + 1,
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Date:     t.Date,
			Time:     clock(t),
			Saving:   e.IsPending(),
		})
	}
	return doc
}

func when(t service.Task) string {
	if t.Date == "" {
		return clock(t)
	}
	return t.Date + " " + clock(t)
}

func clock(t service.Task) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
