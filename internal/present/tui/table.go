package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/inkwell/pkg/api"
)

// RenderTable opens an interactive table to browse posts. It returns the
// post chosen with enter, or nil when the user quit without choosing.
// Deletion is offered when posts is non-nil.
func RenderTable(ctx context.Context, posts []api.Post, headers bool, deleter PostDeleter) (*api.Post, error) {
	m := newTableModel(ctx, posts, headers, deleter)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(tableModel); ok && fm.showIdx >= 0 && fm.showIdx < len(fm.posts) {
		sel := fm.posts[fm.showIdx]
		return &sel, nil
	}
	return nil, nil
}

type tableModel struct {
	ctx          context.Context
	table        table.Model
	posts        []api.Post
	deleter      PostDeleter
	showIdx      int
	headers      bool
	width        int
	height       int
	status       string
	lastDuration time.Duration
}

func newTableModel(ctx context.Context, posts []api.Post, headers bool, deleter PostDeleter) tableModel {
	m := tableModel{
		ctx:     ctx,
		posts:   posts,
		deleter: deleter,
		showIdx: -1,
		headers: headers,
	}
	m.table = table.New(table.WithColumns(m.columnsFor(14, 40, 24, 16)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
	return m
}

func (m *tableModel) updateRows() {
	rows := make([]table.Row, 0, len(m.posts))
	for _, p := range m.posts {
		rows = append(rows, table.Row{
			p.ID,
			oneLine(p.Title()),
			oneLine(p.Prompt),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

func (m tableModel) Init() tea.Cmd { return nil }

func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		if msg.idx >= 0 && msg.idx < len(m.posts) {
			m.posts = append(m.posts[:msg.idx], m.posts[msg.idx+1:]...)
		}
		m.updateRows()
		cur := msg.idx
		if cur >= len(m.posts) {
			cur = len(m.posts) - 1
		}
		m.table.SetCursor(max(0, cur))
		m.status = fmt.Sprintf("Deleted %s", msg.id)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.posts) {
				m.showIdx = idx
			}
			return m, tea.Quit
		case "d":
			idx := m.table.Cursor()
			if m.deleter == nil || idx < 0 || idx >= len(m.posts) {
				return m, nil
			}
			id := m.posts[idx].ID
			m.status = fmt.Sprintf("Deleting %s…", id)
			return m, deleteCmd(m.ctx, m.deleter, id, idx)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tableModel) renderFooter() string {
	left := "↑/↓ to navigate • enter=show • q=exit"
	if m.deleter != nil {
		left = "↑/↓ to navigate • enter=show • d=delete • q=exit"
	}

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += fmt.Sprintf("%d posts ", len(m.posts))

	space := max(1, m.table.Width()-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", space) + right
}

func (m tableModel) View() string {
	if len(m.posts) == 0 {
		return "(no posts) \n"
	}
	return m.table.View() + "\n" + m.renderFooter() + "\n"
}

func (m *tableModel) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 4
	if avail < 40 {
		return
	}
	idW := 26
	if avail < idW+60 {
		idW = 8
	}
	createdW := 16
	rem := max(20, avail-idW-createdW)
	promptW := max(8, rem/3)
	titleW := max(8, rem-promptW)
	m.table.SetColumns(m.columnsFor(idW, titleW, promptW, createdW))
}

func (m *tableModel) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.BorderBottom(false).Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on the headers flag.
func (m *tableModel) columnsFor(idW, titleW, promptW, createdW int) []table.Column {
	titles := []string{"ID", "Title", "Prompt", "Created"}
	if !m.headers {
		titles = []string{"", "", "", ""}
	}
	return []table.Column{
		{Title: titles[0], Width: idW},
		{Title: titles[1], Width: titleW},
		{Title: titles[2], Width: promptW},
		{Title: titles[3], Width: createdW},
	}
}
