// Package dashboard drives the task list on behalf of the user: it issues
// add, toggle and delete through a tasklist.List, renders the result and
// turns gateway failures into user-facing notices.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"todopro/internal/logger"
	"todopro/internal/output"
	"todopro/internal/service"
	"todopro/internal/tasklist"
)

// Notices shown when a gateway call fails.
const (
	MsgAddFailed    = "Failed to add task. Please try again."
	MsgUpdateFailed = "Failed to update task. Please try again."
	MsgDeleteFailed = "Failed to delete task. Please try again."
	MsgLoadFailed   = "Failed to load tasks."
)

// ErrSaving is returned when a reference names an entry whose create call
// has not completed yet.
var ErrSaving = errors.New("task is still saving")

// Notifier shows a notice to the user and returns once it has been shown.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// WriterNotifier prints notices as "error: <msg>" lines.
func WriterNotifier(w io.Writer) Notifier {
	return NotifierFunc(func(msg string) {
		fmt.Fprintf(w, "error: %s\n", msg)
	})
}

// Options configures a Dashboard. Zero values are usable.
type Options struct {
	// Out receives rendered lists. Defaults to io.Discard.
	Out io.Writer

	// Format selects the render format. Defaults to text.
	Format output.Format

	// Notifier receives failure notices. Defaults to dropping them.
	Notifier Notifier

	// Log receives failure details.
	Log *zap.Logger

	// Live re-renders after every state transition.
	Live bool

	// Now is the clock used to pre-fill drafts.
	Now func() time.Time

	// ListOptions are passed to tasklist.New.
	ListOptions []tasklist.Option
}

// Dashboard is the task view of a logged-in user.
type Dashboard struct {
	list   *tasklist.List
	out    io.Writer
	format output.Format
	notify Notifier
	log    *zap.Logger
	now    func() time.Time
	live   atomic.Bool

	// mu serializes writes to out and notices.
	mu sync.Mutex
	wg sync.WaitGroup
}

// New creates a dashboard over svc.
func New(svc service.Service, opts Options) *Dashboard {
	d := &Dashboard{
		out:    opts.Out,
		format: opts.Format,
		notify: opts.Notifier,
		log:    opts.Log,
		now:    opts.Now,
	}
	if d.out == nil {
		d.out = io.Discard
	}
	if d.format == "" {
		d.format = output.Text
	}
	if d.notify == nil {
		d.notify = NotifierFunc(func(string) {})
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	if d.now == nil {
		d.now = time.Now
	}

	d.live.Store(opts.Live)

	listOpts := append(slices.Clone(opts.ListOptions), tasklist.WithOnChange(func(st tasklist.State) {
		if !d.live.Load() {
			return
		}
		if err := d.renderState(st); err != nil {
			d.log.Warn("render failed", zap.Error(err))
		}
	}))
	d.list = tasklist.New(svc, listOpts...)
	return d
}

// SetLive turns re-rendering after every transition on or off.
func (d *Dashboard) SetLive(on bool) {
	d.live.Store(on)
}

// State returns the current list state.
func (d *Dashboard) State() tasklist.State {
	return d.list.State()
}

// Stats returns the current aggregates.
func (d *Dashboard) Stats() tasklist.Stats {
	return d.list.Stats()
}

// Draft returns a draft for title scheduled now.
func (d *Dashboard) Draft(title string) service.Draft {
	return service.NewDraft(title, d.now())
}

// Load fetches the list. On failure the previous list stays in place.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.list.Load(ctx); err != nil {
		d.fail("load tasks", MsgLoadFailed, err)
		return err
	}
	return nil
}

// Add creates a task. Invalid drafts are rejected before any request.
func (d *Dashboard) Add(ctx context.Context, draft service.Draft) error {
	err := d.list.Add(ctx, draft)
	if err != nil && !errors.Is(err, tasklist.ErrInvalidDraft) {
		d.fail("add task", MsgAddFailed, err)
	}
	return err
}

// Toggle flips the completion status of the referenced task.
func (d *Dashboard) Toggle(ctx context.Context, ref Ref) error {
	id, err := d.Resolve(ref)
	if err != nil {
		return err
	}
	if err := d.list.Toggle(ctx, id); err != nil {
		if !errors.Is(err, tasklist.ErrNotFound) {
			d.fail("update task", MsgUpdateFailed, err, zap.String("id", string(id)))
		}
		return err
	}
	return nil
}

// Delete removes the referenced task.
func (d *Dashboard) Delete(ctx context.Context, ref Ref) error {
	id, err := d.Resolve(ref)
	if err != nil {
		return err
	}
	if err := d.list.Delete(ctx, id); err != nil {
		if !errors.Is(err, tasklist.ErrNotFound) {
			d.fail("delete task", MsgDeleteFailed, err, zap.String("id", string(id)))
		}
		return err
	}
	return nil
}

// Render writes the current list and stats.
func (d *Dashboard) Render() error {
	return d.renderState(d.list.State())
}

// RenderStats writes the current aggregates only.
func (d *Dashboard) RenderStats() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return output.RenderStats(d.out, d.format, d.list.Stats())
}

// Printf writes an informational line to the output.
func (d *Dashboard) Printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format, args...)
}

func (d *Dashboard) renderState(st tasklist.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return output.Render(d.out, d.format, st)
}

func (d *Dashboard) fail(op, msg string, err error, fields ...zap.Field) {
	d.log.Warn(op+" failed", append(fields, zap.Error(err))...)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.notify.Notify(msg)
}

// Ref names a task either by its 1-based position in the list or by its
// server id.
type Ref struct {
	Position int
	ID       service.ID
}

// ParseRef parses "3" as a position and "#17" as an id.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("task reference required")
	}
	if id, ok := strings.CutPrefix(s, "#"); ok {
		if id == "" {
			return Ref{}, fmt.Errorf("invalid task reference: %s", s)
		}
		return Ref{ID: service.ID(id)}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return Ref{}, fmt.Errorf("invalid task reference: %s", s)
	}
	return Ref{Position: n}, nil
}

// Resolve turns ref into a server id against the current list.
func (d *Dashboard) Resolve(ref Ref) (service.ID, error) {
	st := d.list.State()
	if ref.ID != "" {
		if _, ok := st.Find(ref.ID); !ok {
			return "", fmt.Errorf("%w: #%s", tasklist.ErrNotFound, ref.ID)
		}
		return ref.ID, nil
	}

	entries := st.Entries()
	if ref.Position < 1 || ref.Position > len(entries) {
		return "", fmt.Errorf("%w: task number out of range: %d", tasklist.ErrNotFound, ref.Position)
	}
	e := entries[ref.Position-1]
	if e.IsPending() {
		return "", fmt.Errorf("%w: %d", ErrSaving, ref.Position)
	}
	return e.Task().ID, nil
}
