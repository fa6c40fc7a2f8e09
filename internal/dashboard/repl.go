package dashboard

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"todopro/internal/tasklist"
)

const prompt = "> "

const replHelp = `Commands:
  list              Show tasks and stats
  add <title...>    Add a task scheduled now
  toggle <ref>      Mark a task done or not done
  rm <ref>          Delete a task
  stats             Show totals
  reload            Fetch the list again
  help              Show this help
  quit              Wait for pending requests and exit

A <ref> is the number shown by list, or #<id>.
`

// Run reads commands from in until quit or EOF. Each request runs in the
// background so the prompt stays usable while calls are in flight; Run
// returns only after all of them have completed. In-flight requests are
// not cancelled when ctx is.
func (d *Dashboard) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	d.Printf(prompt)
	for sc.Scan() {
		if quit := d.exec(ctx, sc.Text()); quit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		d.Printf(prompt)
	}
	d.Wait()
	return sc.Err()
}

// Wait blocks until every background request has completed.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

func (d *Dashboard) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		d.Printf("%s", replHelp)
	case "list", "ls":
		d.report(d.Render())
	case "stats":
		d.report(d.RenderStats())
	case "reload":
		d.background(ctx, d.Load)
	case "add":
		draft := d.Draft(strings.Join(args, " "))
		d.background(ctx, func(ctx context.Context) error {
			return d.Add(ctx, draft)
		})
	case "toggle", "done":
		d.withRef(ctx, args, d.Toggle)
	case "rm", "delete":
		d.withRef(ctx, args, d.Delete)
	default:
		d.Printf("unknown command: %s (try help)\n", cmd)
	}
	return false
}

// withRef resolves the reference now, against the list as currently shown,
// and runs op in the background.
func (d *Dashboard) withRef(ctx context.Context, args []string, op func(context.Context, Ref) error) {
	if len(args) != 1 {
		d.Printf("error: task reference required\n")
		return
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		d.report(err)
		return
	}
	id, err := d.Resolve(ref)
	if err != nil {
		d.report(err)
		return
	}
	d.background(ctx, func(ctx context.Context) error {
		return op(ctx, Ref{ID: id})
	})
}

func (d *Dashboard) background(ctx context.Context, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := fn(ctx)
		if errors.Is(err, tasklist.ErrInvalidDraft) || errors.Is(err, tasklist.ErrNotFound) {
			d.report(err)
		}
	}()
}

// report prints user errors. Gateway failures have already been notified.
func (d *Dashboard) report(err error) {
	if err != nil {
		d.Printf("error: %v\n", err)
	}
}
