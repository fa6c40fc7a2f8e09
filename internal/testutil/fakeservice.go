// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"todopro/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int

	// ReplyWithResults makes Create and SetStatus answer with the full
	// list instead of the single record.
	ReplyWithResults bool

	// Error injection for testing
	ListErr      error
	CreateErr    error
	SetStatusErr error
	DeleteErr    error

	// BeforeReply, when set, runs after the request is accepted and before
	// the response is returned. Tests use it to observe in-flight state.
	BeforeReply func(op string)

	// Calls counts requests per operation.
	Calls map[string]int
}

// NewFakeService creates an empty FakeService. Server ids start at 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

// AddTask stores a task directly, bypassing Create.
func (f *FakeService) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
	if n, err := strconv.Atoi(string(t.ID)); err == nil && n >= f.nextID {
		f.nextID = n + 1
	}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// CallCount returns how many times op was requested.
func (f *FakeService) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]service.Task, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, draft service.Draft) (service.Outcome, error) {
	f.record("create")
	f.hook("create")
	if f.CreateErr != nil {
		return service.Outcome{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := service.Task{
		ID:     service.ID(strconv.Itoa(f.nextID)),
		Title:  draft.Title,
		Date:   draft.Date,
		Hour:   draft.Hour,
		Minute: draft.Minute,
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return f.outcome(t), nil
}

// SetStatus implements service.Service.
func (f *FakeService) SetStatus(ctx context.Context, id service.ID, status bool) (service.Outcome, error) {
	f.record("set_status")
	f.hook("set_status")
	if f.SetStatusErr != nil {
		return service.Outcome{}, f.SetStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Status = status
			return f.outcome(f.tasks[i]), nil
		}
	}
	return service.Outcome{}, fmt.Errorf("%w: not found", service.ErrUpdate)
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id service.ID) error {
	f.record("delete")
	f.hook("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: not found", service.ErrDelete)
}

func (f *FakeService) outcome(t service.Task) service.Outcome {
	if f.ReplyWithResults {
		return service.Outcome{Results: f.snapshot()}
	}
	return service.Outcome{Record: &t}
}

func (f *FakeService) snapshot() []service.Task {
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeService) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[op]++
}

func (f *FakeService) hook(op string) {
	if f.BeforeReply != nil {
		f.BeforeReply(op)
	}
}
