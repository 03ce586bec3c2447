package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/shop/internal/model"
	"github.com/Makepad-fr/shop/internal/shoplist"
	"github.com/Makepad-fr/shop/internal/ui"
)

// Options tune output behavior from root flags and carry the pieces the
// runner needs from main.
type Options struct {
	Group bool // list grouped by pending/done

	Stdout, Stderr io.Writer

	// Open hydrates the list. Called once, only by subcommands that need it.
	Open func(ctx context.Context) (*shoplist.List, error)
	// Interactive runs the terminal UI.
	Interactive func(ctx context.Context, l *shoplist.List) error
	// Serve runs the HTTP API until ctx is done.
	Serve func(ctx context.Context, l *shoplist.List) error
	// Config is printed by `shop config`.
	Config fmt.Stringer
}

func (o *Options) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "config":
		if opt.Config == nil {
			ui.Fail(opt.Stderr, "config: not available")
			return 1
		}
		fmt.Fprintln(opt.Stdout, opt.Config.String())
		return 0

	case "ls":
		return withList(ctx, opt, func(l *shoplist.List) int { return doList(opt, l) })

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: shop add <title...>")
			return 2
		}
		return withList(ctx, opt, func(l *shoplist.List) int { return doAdd(ctx, opt, l, strings.Join(a, " ")) })

	case "done":
		id, code := parseID(opt, "done", a)
		if code != 0 {
			return code
		}
		return withList(ctx, opt, func(l *shoplist.List) int { return doToggle(ctx, opt, l, id) })

	case "rm":
		id, code := parseID(opt, "rm", a)
		if code != 0 {
			return code
		}
		return withList(ctx, opt, func(l *shoplist.List) int { return doRemove(ctx, opt, l, id) })

	case "rename":
		if len(a) < 2 {
			ui.Fail(opt.Stderr, "usage: shop rename <id> <title...>")
			return 2
		}
		id, code := parseID(opt, "rename", a[:1])
		if code != 0 {
			return code
		}
		return withList(ctx, opt, func(l *shoplist.List) int {
			return doRename(ctx, opt, l, id, strings.Join(a[1:], " "))
		})

	case "tui":
		if opt.Interactive == nil {
			ui.Fail(opt.Stderr, "tui: not available")
			return 1
		}
		return withList(ctx, opt, func(l *shoplist.List) int {
			if err := opt.Interactive(ctx, l); err != nil {
				ui.Fail(opt.Stderr, "tui: "+err.Error())
				return 1
			}
			return 0
		})

	case "serve":
		if opt.Serve == nil {
			ui.Fail(opt.Stderr, "serve: not available")
			return 1
		}
		return withList(ctx, opt, func(l *shoplist.List) int {
			if err := opt.Serve(ctx, l); err != nil {
				ui.Fail(opt.Stderr, "serve: "+err.Error())
				return 1
			}
			return 0
		})
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `shop - a persisted shopping list

Usage:
  shop [flags] <subcommand> [args]

Flags:
  --group            ls: split output into pending/done
  --store <name>     file | memory | redis | sqlite | postgres | mysql
  --theme <name>     classic | neon | mono

Subcommands:
  add <title...>         Add an item (title can be multiple words)
  ls                     List items with their ids
  done <id>              Toggle completed for the item with id
  rm <id>                Remove the item with id
  rename <id> <title...> Change an item's title
  tui                    Interactive list
  serve                  Run the JSON HTTP API
  config                 Print the effective configuration (secrets hidden)

Examples:
  shop add "Oat milk"
  shop ls
  shop done 2
  shop rm 3
`)
}

func withList(ctx context.Context, opt Options, fn func(l *shoplist.List) int) int {
	if opt.Open == nil {
		ui.Fail(opt.Stderr, "load: no store configured")
		return 1
	}
	l, err := opt.Open(ctx)
	if err != nil {
		ui.Fail(opt.Stderr, "load: "+err.Error())
		return 1
	}
	if herr := l.HydrationErr(); herr != nil {
		ui.Warn(opt.Stderr, "stored list was unreadable and has been reset: "+herr.Error())
	}
	return fn(l)
}

func parseID(opt Options, cmd string, a []string) (int, int) {
	if len(a) != 1 {
		ui.Fail(opt.Stderr, fmt.Sprintf("usage: shop %s <id>", cmd))
		return 0, 2
	}
	n, err := strconv.Atoi(a[0])
	if err != nil {
		ui.Fail(opt.Stderr, cmd+": not a number: "+a[0])
		return 0, 2
	}
	return n, 0
}

// report maps a mutation error to output and an exit code.
func report(opt Options, op string, id int, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shoplist.ErrInvalidTitle):
		ui.Fail(opt.Stderr, op+": title must be 1-"+strconv.Itoa(model.MaxTitleLen)+" characters")
		return 2
	case errors.Is(err, shoplist.ErrNotFound):
		ui.Fail(opt.Stderr, fmt.Sprintf("%s: no item with id %d", op, id))
		ui.Hint(opt.Stderr, "Hint: run `shop ls` to see valid ids")
		return 2
	case errors.Is(err, shoplist.ErrStoreWrite):
		ui.Warn(opt.Stderr, op+": change was not saved: "+err.Error())
		return 1
	default:
		ui.Fail(opt.Stderr, op+": "+err.Error())
		return 1
	}
}

// -------------- subcommand impls ----------------

func doList(opt Options, l *shoplist.List) int {
	items := l.Items()
	t := ui.Current()

	d, p := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Shopping list"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(model.DisplayOrder(items))...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `shop add \"Oat milk\"`"))
	fmt.Fprintln(opt.Stdout, ui.Panel(lines))
	return 0
}

func doAdd(ctx context.Context, opt Options, l *shoplist.List, title string) int {
	it, err := l.Add(ctx, title)
	if code := report(opt, "add", it.ID, err); code != 0 {
		return code
	}
	ui.OK(opt.Stdout, fmt.Sprintf("added #%d %s", it.ID, it.Title))
	return 0
}

func doToggle(ctx context.Context, opt Options, l *shoplist.List, id int) int {
	it, err := l.Toggle(ctx, id)
	if code := report(opt, "done", id, err); code != 0 {
		return code
	}
	state := "pending"
	if it.Completed {
		state = "done"
	}
	ui.OK(opt.Stdout, fmt.Sprintf("#%d marked %s", id, state))
	return 0
}

func doRemove(ctx context.Context, opt Options, l *shoplist.List, id int) int {
	if code := report(opt, "rm", id, l.Remove(ctx, id)); code != 0 {
		return code
	}
	ui.OK(opt.Stdout, fmt.Sprintf("removed #%d", id))
	return 0
}

func doRename(ctx context.Context, opt Options, l *shoplist.List, id int, title string) int {
	it, err := l.Rename(ctx, id, title)
	if code := report(opt, "rename", id, err); code != 0 {
		return code
	}
	ui.OK(opt.Stdout, fmt.Sprintf("renamed #%d to %s", id, it.Title))
	return 0
}

// -------------- rendering helpers --------------

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		idx := t.Muted.Render(fmt.Sprintf("%3d.", it.ID))
		title := ui.Truncate(it.Title, 80)
		if it.Completed {
			title = t.Done.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s", idx, ui.Box(it.Completed), title))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
