package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/shop/internal/model"
	"github.com/Makepad-fr/shop/internal/shoplist"
	"github.com/Makepad-fr/shop/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.Title }

type mode int

const (
	browsing mode = iota
	adding
	editing
)

type modelTUI struct {
	ctx  context.Context
	shop *shoplist.List
	list list.Model

	mode     mode
	ti       textinput.Model // shared text input for add & edit
	editID   int
	inputErr string

	status    string // last store problem, shown under the list
	statusErr bool

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	text := it.Title
	if it.Completed {
		text = t.Done.Render(text)
	}
	line := fmt.Sprintf("%s %s", ui.Box(it.Completed), text)
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleKey = key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
)

func newModel(ctx context.Context, shop *shoplist.List) modelTUI {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	bindings := func() []key.Binding { return []key.Binding{toggleKey, addKey, editKey, deleteKey} }
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	m := modelTUI{ctx: ctx, shop: shop, list: l, width: 80, height: 24}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = model.MaxTitleLen
	m.refresh(-1)
	m.resize()
	return m
}

// Run starts the interactive list. Every change is saved as it is made.
func Run(ctx context.Context, shop *shoplist.List) error {
	p := tea.NewProgram(newModel(ctx, shop), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// refresh reloads rows from the controller in display order and keeps the
// cursor on selectID when it is still present.
func (m *modelTUI) refresh(selectID int) {
	items := model.DisplayOrder(m.shop.Items())
	rows := make([]list.Item, 0, len(items))
	sel := -1
	for i, it := range items {
		rows = append(rows, listItem{it})
		if it.ID == selectID {
			sel = i
		}
	}
	m.list.SetItems(rows)
	if sel >= 0 {
		m.list.Select(sel)
	}

	d, p := model.Stats(items)
	t := ui.Current()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Shopping list"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

func (m *modelTUI) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// afterWrite records the outcome of a controller call for the footer.
func (m *modelTUI) afterWrite(err error) {
	switch {
	case err == nil:
		m.status, m.statusErr = "", false
	case errors.Is(err, shoplist.ErrStoreWrite):
		m.status, m.statusErr = "not saved: "+err.Error(), true
	default:
		m.status, m.statusErr = err.Error(), true
	}
	m.resize()
}

func (m *modelTUI) resize() {
	h := m.height - 4
	if m.mode != browsing {
		h -= 4
	}
	if m.status != "" {
		h--
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch {
		case key.Matches(km, toggleKey):
			if it, ok := m.selected(); ok {
				_, err := m.shop.Toggle(m.ctx, it.ID)
				m.afterWrite(err)
				m.refresh(it.ID)
			}
			return m, nil
		case key.Matches(km, deleteKey):
			if it, ok := m.selected(); ok {
				idx := m.list.Index()
				m.afterWrite(m.shop.Remove(m.ctx, it.ID))
				m.refresh(-1)
				if n := len(m.list.Items()); idx >= n && n > 0 {
					m.list.Select(n - 1)
				}
			}
			return m, nil
		case key.Matches(km, addKey):
			m.mode = adding
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "Add something to buy..."
			m.resize()
			cmd := m.ti.Focus()
			return m, cmd
		case key.Matches(km, editKey):
			if it, ok := m.selected(); ok {
				m.mode = editing
				m.editID = it.ID
				m.inputErr = ""
				m.ti.SetValue(it.Title)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit item title..."
				m.resize()
				cmd := m.ti.Focus()
				return m, cmd
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			var (
				it  model.Item
				err error
			)
			if m.mode == adding {
				it, err = m.shop.Add(m.ctx, m.ti.Value())
			} else {
				it, err = m.shop.Rename(m.ctx, m.editID, m.ti.Value())
			}
			if errors.Is(err, shoplist.ErrInvalidTitle) {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			m.afterWrite(err)
			m.closeInput()
			sel := -1
			if err == nil || errors.Is(err, shoplist.ErrStoreWrite) {
				sel = it.ID
			}
			m.refresh(sel)
			return m, nil
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *modelTUI) closeInput() {
	m.mode = browsing
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m modelTUI) View() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(m.list.View())

	if m.mode != browsing {
		title := "Add new item"
		if m.mode == editing {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += "  " + t.Error.Render(m.inputErr)
		}
		b.WriteString("\n")
		b.WriteString(ui.Frame(title + "\n" + m.ti.View()))
	}
	if m.status != "" {
		style := t.Muted
		if m.statusErr {
			style = t.Error
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.status))
	}
	return ui.Frame(b.String())
}
