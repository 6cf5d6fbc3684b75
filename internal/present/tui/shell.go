package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/inkwell/internal/present/format"
	"github.com/mithrel/inkwell/internal/shell"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	promptBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
)

const inputHeight = 3

// ShellModel is the Bubble Tea model for the interactive shell: a prompt
// box, a loading spinner, and a scrollable rendered result.
type ShellModel struct {
	ctx     context.Context
	sess    *shell.Session
	input   textarea.Model
	spin    spinner.Model
	view    viewport.Model
	width   int
	height  int
	status  string
	lastDur time.Duration
}

// NewShellModel wires a model to sess. sess must report its changes
// through a program created by RunShell, or the copied indicator will not
// refresh on screen.
func NewShellModel(ctx context.Context, sess *shell.Session) ShellModel {
	in := textarea.New()
	in.Placeholder = "What should the post be about?"
	in.ShowLineNumbers = false
	in.SetHeight(inputHeight)
	in.KeyMap.InsertNewline.SetEnabled(false)
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ShellModel{
		ctx:   ctx,
		sess:  sess,
		input: in,
		spin:  sp,
		view:  viewport.New(80, 20),
	}
}

// RunShell runs the shell full screen until the user quits.
func RunShell(ctx context.Context, opts shell.Options) error {
	var p *tea.Program
	prev := opts.OnChange
	opts.OnChange = func() {
		if prev != nil {
			prev()
		}
		if p != nil {
			p.Send(sessionChangedMsg{})
		}
	}
	m := NewShellModel(ctx, shell.New(opts))
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m ShellModel) Init() tea.Cmd { return textarea.Blink }

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			done, ok := m.sess.Submit(m.ctx, m.input.Value())
			if !ok {
				return m, nil
			}
			m.status = ""
			return m, tea.Batch(m.spin.Tick, awaitCmd(done, time.Now()))
		case "ctrl+y":
			if !m.sess.Copy(m.ctx) {
				m.status = "Nothing to copy yet"
			}
			return m, nil
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

	case finalStateMsg:
		m.lastDur = msg.dur
		if _, ok := msg.state.(shell.Ready); ok {
			m.input.Reset()
		}
		m.refreshContent()
		m.view.GotoTop()
		return m, nil

	case sessionChangedMsg:
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		if !m.sess.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *ShellModel) layout() {
	w := max(20, m.width-2)
	m.input.SetWidth(w - 2)
	// title + prompt box (input + border) + status + footer
	chrome := 1 + inputHeight + 2 + 1 + 1
	m.view.Width = w
	m.view.Height = max(3, m.height-chrome)
}

// refreshContent renders the current session state into the viewport.
func (m *ShellModel) refreshContent() {
	switch st := m.sess.State().(type) {
	case shell.Ready:
		if len(st.Nodes) == 0 {
			m.view.SetContent("")
			return
		}
		m.view.SetContent(format.ANSI(st.Nodes, format.DefaultANSIStyles(), m.view.Width))
	case shell.Failed:
		m.view.SetContent(errorStyle.Render(st.Message))
	default:
		m.view.SetContent("")
	}
}

func (m ShellModel) statusLine() string {
	switch st := m.sess.State().(type) {
	case shell.Loading:
		return m.spin.View() + " Generating a post about " + fmt.Sprintf("%q", st.Prompt) + "…"
	case shell.Failed:
		return errorStyle.Render("Generation failed")
	case shell.Ready:
		s := "Ready"
		if st.PostID != "" {
			s += " • saved as " + st.PostID
		}
		if m.lastDur > 0 {
			s += fmt.Sprintf(" (%s)", m.lastDur.Round(time.Millisecond))
		}
		return statusStyle.Render(s)
	}
	return statusStyle.Render(m.status)
}

func (m ShellModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Inkwell") + "\n")
	b.WriteString(promptBox.Render(m.input.View()) + "\n")
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.view.View() + "\n")
	b.WriteString(statusStyle.Render("enter=generate • ctrl+y=copy • pgup/pgdn=scroll • esc=quit"))
	out := b.String()
	if m.sess.Copied() {
		out = renderToast(out, "Copied!", m.width, m.height)
	}
	return out
}
