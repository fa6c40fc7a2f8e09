package tasklist

import (
	"github.com/google/uuid"

	"todopro/internal/service"
)

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Loaded carries a freshly fetched list.
type Loaded struct {
	Tasks []service.Task
}

// AddStarted appends a provisional entry.
type AddStarted struct {
	ProvisionalID uuid.UUID
	Draft         service.Draft
}

// AddSucceeded reconciles a provisional entry with the create response.
type AddSucceeded struct {
	ProvisionalID uuid.UUID
	Outcome       service.Outcome
}

// AddFailed discards a provisional entry.
type AddFailed struct {
	ProvisionalID uuid.UUID
}

// ToggleStarted records Seq as the latest toggle issued for ID.
type ToggleStarted struct {
	ID  service.ID
	Seq uint64
}

// ToggleSucceeded applies a status update response.
type ToggleSucceeded struct {
	ID      service.ID
	Seq     uint64
	Outcome service.Outcome
}

// ToggleFailed leaves the list unchanged. Earlier toggles of the same
// task that succeed later still apply.
type ToggleFailed struct {
	ID  service.ID
	Seq uint64
}

// DeleteSucceeded removes a task.
type DeleteSucceeded struct {
	ID service.ID
}

func (Loaded) isEvent()          {}
func (AddStarted) isEvent()      {}
func (AddSucceeded) isEvent()    {}
func (AddFailed) isEvent()       {}
func (ToggleStarted) isEvent()   {}
func (ToggleSucceeded) isEvent() {}
func (ToggleFailed) isEvent()    {}
func (DeleteSucceeded) isEvent() {}

// Reduce returns the state that results from applying ev to s.
// s itself is left untouched.
func Reduce(s State, ev Event) State {
	next := s.clone()

	switch ev := ev.(type) {
	case Loaded:
		next.replace(ev.Tasks)

	case AddStarted:
		if ev.ProvisionalID == uuid.Nil || next.indexOfPending(ev.ProvisionalID) >= 0 {
			return next
		}
		next.entries = append(next.entries, Pending(ev.ProvisionalID, ev.Draft))

	case AddSucceeded:
		switch {
		case ev.Outcome.IsReplacement():
			next.replace(ev.Outcome.Results)
		case ev.Outcome.Record != nil:
			next.confirm(ev.ProvisionalID, *ev.Outcome.Record)
		default:
			next.removePending(ev.ProvisionalID)
		}

	case AddFailed:
		next.removePending(ev.ProvisionalID)

	case ToggleStarted:
		if ev.Seq > next.seq[ev.ID] {
			if next.seq == nil {
				next.seq = make(map[service.ID]uint64)
			}
			next.seq[ev.ID] = ev.Seq
		}

	case ToggleSucceeded:
		// A response older than one already applied is stale. A success
		// is applied even when a later toggle is still unresolved, so a
		// failed later toggle cannot hide it.
		if ev.Seq <= next.applied[ev.ID] {
			return next
		}
		if next.applied == nil {
			next.applied = make(map[service.ID]uint64)
		}
		next.applied[ev.ID] = ev.Seq
		switch {
		case ev.Outcome.IsReplacement():
			next.replace(ev.Outcome.Results)
		case ev.Outcome.Record != nil:
			if i := next.indexOf(ev.ID); i >= 0 {
				next.entries[i].task.Status = ev.Outcome.Record.Status
			}
		}

	case ToggleFailed:

	case DeleteSucceeded:
		if i := next.indexOf(ev.ID); i >= 0 {
			next.entries = append(next.entries[:i], next.entries[i+1:]...)
		}
	}

	return next
}

// replace adopts tasks as the whole list. Provisional entries are dropped.
// If the server repeats an id, the first occurrence wins.
func (s *State) replace(tasks []service.Task) {
	entries := make([]Entry, 0, len(tasks))
	seen := make(map[service.ID]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		entries = append(entries, Confirmed(t))
	}
	s.entries = entries
}

// confirm swaps the provisional entry for the server record in place.
// Any other entry already holding the record's id is dropped.
func (s *State) confirm(pid uuid.UUID, rec service.Task) {
	if i := s.indexOf(rec.ID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
	if i := s.indexOfPending(pid); i >= 0 {
		s.entries[i] = Confirmed(rec)
		return
	}
	// The provisional entry was superseded by a replacement list that
	// did not include the new task yet.
	s.entries = append(s.entries, Confirmed(rec))
}

func (s *State) removePending(pid uuid.UUID) {
	if i := s.indexOfPending(pid); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}
