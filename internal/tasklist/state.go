// Package tasklist holds the in-memory task list and the optimistic
// synchronization protocol that reconciles it with the remote API.
//
// State transitions are expressed as a pure reducer (Reduce) over
// (State, Event). List owns a State and serializes transitions so that
// each one runs to completion before the next is applied.
package tasklist

import (
	"maps"

	"github.com/google/uuid"

	"todopro/internal/service"
)

// Entry is one row of the list: either a server-confirmed task or a
// provisional one whose create call is still in flight.
type Entry struct {
	task        service.Task
	provisional uuid.UUID
	draft       service.Draft
}

// Confirmed wraps a server-confirmed task.
func Confirmed(t service.Task) Entry {
	return Entry{task: t}
}

// Pending wraps a draft that has not been confirmed yet.
func Pending(id uuid.UUID, d service.Draft) Entry {
	return Entry{provisional: id, draft: d}
}

// IsPending reports whether the entry is provisional.
func (e Entry) IsPending() bool {
	return e.provisional != uuid.Nil
}

// ProvisionalID returns the client-generated id, or uuid.Nil for confirmed entries.
func (e Entry) ProvisionalID() uuid.UUID {
	return e.provisional
}

// Task returns the record to display. Pending entries have an empty ID
// and are never completed.
func (e Entry) Task() service.Task {
	if e.IsPending() {
		return service.Task{
			Title:  e.draft.Title,
			Date:   e.draft.Date,
			Hour:   e.draft.Hour,
			Minute: e.draft.Minute,
		}
	}
	return e.task
}

// Stats are the aggregates shown on the dashboard cards.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// State is an ordered list of entries plus, per task, the latest toggle
// sequence number issued and the latest one whose response was applied.
// Treat it as a value: Reduce never modifies its input.
type State struct {
	entries []Entry
	seq     map[service.ID]uint64
	applied map[service.ID]uint64
}

// NewState returns a state holding the given confirmed tasks.
func NewState(tasks []service.Task) State {
	return Reduce(State{}, Loaded{Tasks: tasks})
}

// Entries returns a copy of the entries in display order.
func (s State) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Tasks returns the confirmed tasks in display order.
func (s State) Tasks() []service.Task {
	var out []service.Task
	for _, e := range s.entries {
		if !e.IsPending() {
			out = append(out, e.task)
		}
	}
	return out
}

// Len returns the number of entries, pending ones included.
func (s State) Len() int {
	return len(s.entries)
}

// Find returns the confirmed task with the given id.
func (s State) Find(id service.ID) (service.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, false
	}
	return s.entries[i].task, true
}

// HasPending reports whether the provisional entry is still in the list.
func (s State) HasPending(id uuid.UUID) bool {
	return s.indexOfPending(id) >= 0
}

// NextSeq returns the sequence number to use for the next toggle of id.
func (s State) NextSeq(id service.ID) uint64 {
	return s.seq[id] + 1
}

// Stats derives the dashboard counts from the current entries.
// Pending entries count as not completed.
func (s State) Stats() Stats {
	st := Stats{Total: len(s.entries)}
	for _, e := range s.entries {
		if !e.IsPending() && e.task.Status {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

func (s State) indexOf(id service.ID) int {
	for i, e := range s.entries {
		if !e.IsPending() && e.task.ID == id {
			return i
		}
	}
	return -1
}

func (s State) indexOfPending(id uuid.UUID) int {
	for i, e := range s.entries {
		if e.IsPending() && e.provisional == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	return State{
		entries: s.Entries(),
		seq:     maps.Clone(s.seq),
		applied: maps.Clone(s.applied),
	}
}
