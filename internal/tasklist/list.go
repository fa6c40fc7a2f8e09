package tasklist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"todopro/internal/service"
)

// ErrNotFound is returned when an operation names a task that is not in the list.
var ErrNotFound = errors.New("task not found")

// ErrInvalidDraft is returned by Add when the draft fails validation.
var ErrInvalidDraft = errors.New("invalid task")

// List owns a State and applies every transition under one lock, so each
// transition runs to completion before the next. Network calls are made
// between transitions, never while the lock is held.
type List struct {
	mu       sync.Mutex
	state    State
	svc      service.Service
	newID    func() uuid.UUID
	onChange func(State)
}

// Option configures a List.
type Option func(*List)

// WithOnChange registers fn to be called with the new state after every
// transition. fn runs outside the lock and may call back into the List.
func WithOnChange(fn func(State)) Option {
	return func(l *List) { l.onChange = fn }
}

// WithIDGenerator overrides how provisional ids are generated.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(l *List) { l.newID = fn }
}

// WithTasks seeds the list with already fetched tasks.
func WithTasks(tasks []service.Task) Option {
	return func(l *List) { l.state = NewState(tasks) }
}

// New creates a List backed by svc.
func New(svc service.Service, opts ...Option) *List {
	l := &List{
		svc:   svc,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stats returns the current aggregates.
func (l *List) Stats() Stats {
	return l.State().Stats()
}

// Load fetches the list from the server and replaces local state.
// On failure the prior state is left untouched.
func (l *List) Load(ctx context.Context) error {
	tasks, err := l.svc.List(ctx)
	if err != nil {
		return err
	}
	l.apply(Loaded{Tasks: tasks})
	return nil
}

// Add appends a provisional entry, issues the create call and reconciles
// the list with the response. On failure the provisional entry is removed.
func (l *List) Add(ctx context.Context, draft service.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	pid := l.newID()
	l.apply(AddStarted{ProvisionalID: pid, Draft: draft})

	outcome, err := l.svc.Create(ctx, draft)
	if err != nil {
		l.apply(AddFailed{ProvisionalID: pid})
		return err
	}
	l.apply(AddSucceeded{ProvisionalID: pid, Outcome: outcome})
	return nil
}

// Toggle flips the status of the task with the given id. Local state only
// changes once the server confirms; a response older than one already
// applied for the same task is discarded.
func (l *List) Toggle(ctx context.Context, id service.ID) error {
	l.mu.Lock()
	task, ok := l.state.Find(id)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	seq := l.state.NextSeq(id)
	l.state = Reduce(l.state, ToggleStarted{ID: id, Seq: seq})
	l.mu.Unlock()

	outcome, err := l.svc.SetStatus(ctx, id, !task.Status)
	if err != nil {
		l.apply(ToggleFailed{ID: id, Seq: seq})
		return err
	}
	l.apply(ToggleSucceeded{ID: id, Seq: seq, Outcome: outcome})
	return nil
}

// Delete removes the task with the given id once the server confirms.
func (l *List) Delete(ctx context.Context, id service.ID) error {
	if _, ok := l.State().Find(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := l.svc.Delete(ctx, id); err != nil {
		return err
	}
	l.apply(DeleteSucceeded{ID: id})
	return nil
}

func (l *List) apply(ev Event) {
	l.mu.Lock()
	l.state = Reduce(l.state, ev)
	st := l.state
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(st)
	}
}
