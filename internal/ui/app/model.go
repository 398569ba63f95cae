package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "quill/internal/modules/session/dto"
	apperrors "quill/internal/platform/errors"
	"quill/internal/ui/components"
	"quill/internal/ui/theme"
	landingview "quill/internal/ui/views/landing"
	practiceview "quill/internal/ui/views/practice"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// SessionPort is what the TUI needs from the session module. Every call is
// made from Update, which is the event loop for the session.
type SessionPort interface {
	StartRandom(ctx context.Context) (sessiondto.Snapshot, error)
	StartCustom(ctx context.Context, prompt string) (sessiondto.Snapshot, error)
	StartByID(ctx context.Context, promptID string) (sessiondto.Snapshot, error)
	Edit(ctx context.Context, text string) (sessiondto.Snapshot, error)
	Submit(ctx context.Context) (sessiondto.Snapshot, error)
	Reset(ctx context.Context) sessiondto.Snapshot
	TogglePreview(ctx context.Context) sessiondto.Snapshot
	CopyResponse(ctx context.Context) (sessiondto.CopyOutput, error)
	Snapshot(ctx context.Context) sessiondto.Snapshot
	Close(ctx context.Context)
}

// ─── messages ────────────────────────────────────────────────────────────────

// clearCopyMsg drops the copy status unless a newer copy replaced it.
type clearCopyMsg struct{ epoch int }

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Custom  key.Binding
	Submit  key.Binding
	Restart key.Binding
	Preview key.Binding
	Copy    key.Binding
	Cancel  key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "random prompt")),
		Custom:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "custom prompt")),
		Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Restart: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restart")),
		Preview: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "webcam preview")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy response")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Palette: key.NewBinding(key.WithKeys(":", "ctrl+p"), key.WithHelp(":/ctrl+p", "palette")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Custom, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Custom, k.Cancel},
		{k.Submit, k.Restart, k.Preview, k.Copy},
		{k.Palette, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes input by screen and
// re-reads the session snapshot after anything that may have changed it.
type Model struct {
	session SessionPort

	landing  landingview.Model
	practice practiceview.Model

	snap       sessiondto.Snapshot
	keys       keyMap
	help       help.Model
	showHelp   bool
	palette    components.Palette
	status     string
	copyStatus string
	copyEpoch  int
	width      int
	height     int
}

func NewModel(session SessionPort) Model {
	return Model{
		session:  session,
		landing:  landingview.New(),
		practice: practiceview.New(),
		snap:     session.Snapshot(context.Background()),
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd { return nil }

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Loop work runs before anything else so ticks land even while the
	// palette or help overlay is open.
	if msg, ok := msg.(invokeMsg); ok {
		msg.fn()
		return m.refresh()
	}

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case clearCopyMsg:
		if msg.epoch == m.copyEpoch {
			m.copyStatus = ""
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.practice, cmd = m.practice.Update(msg, m.snap)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.snap.Screen {
		case "practice":
			return m.updatePractice(msg)
		case "requesting":
			if key.Matches(msg, m.keys.Cancel, m.keys.Restart) {
				return m.restart()
			}
			return m, nil
		default:
			return m.updateLanding(msg)
		}
	}

	return m.forward(msg)
}

func (m Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.landing.CustomOpen() {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.landing.CloseCustom()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.startCustom(m.landing.CustomText())
		}
		var cmd tea.Cmd
		m.landing, cmd = m.landing.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Start):
		return m.start(func(ctx context.Context) (sessiondto.Snapshot, error) { return m.session.StartRandom(ctx) })
	case key.Matches(msg, m.keys.Custom):
		return m, m.landing.OpenCustom()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Palette):
		return m, m.palette.Open()
	}
	return m, nil
}

func (m Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Restart):
		return m.restart()
	case key.Matches(msg, m.keys.Preview):
		m.snap = m.session.TogglePreview(context.Background())
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyResponse()
	case msg.String() == "ctrl+p":
		return m, m.palette.Open()
	case m.snap.Locked && key.Matches(msg, m.keys.Quit):
		return m.quit()
	}

	var cmd tea.Cmd
	m.practice, cmd = m.practice.Update(msg, m.snap)
	if text := m.practice.Value(); text != m.snap.Response && !m.snap.Locked {
		snap, err := m.session.Edit(context.Background(), text)
		m.snap = snap
		if err != nil {
			m.status = err.Error()
		}
		m.practice.Sync(snap)
	}
	return m, cmd
}

// forward hands non-key messages (cursor blink and the like) to the view
// that owns the focused input.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.snap.Screen == "practice" {
		m.practice, cmd = m.practice.Update(msg, m.snap)
		return m, cmd
	}
	m.landing, cmd = m.landing.Update(msg)
	return m, cmd
}

// ─── actions ─────────────────────────────────────────────────────────────────

func (m Model) start(run func(ctx context.Context) (sessiondto.Snapshot, error)) (tea.Model, tea.Cmd) {
	if _, err := run(context.Background()); err != nil {
		m.status = "start failed: " + err.Error()
		return m, nil
	}
	m.copyStatus = ""
	m.status = "requesting webcam"
	return m.refresh()
}

func (m Model) startCustom(text string) (tea.Model, tea.Cmd) {
	_, err := m.session.StartCustom(context.Background(), text)
	if errors.Is(err, apperrors.ErrEmptyPrompt) {
		m.landing.Reject(landingview.EmptyPromptMessage)
		return m, nil
	}
	if err != nil {
		m.status = "start failed: " + err.Error()
		return m, nil
	}
	m.landing.Clear()
	m.copyStatus = ""
	m.status = "requesting webcam"
	return m.refresh()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if _, err := m.session.Submit(context.Background()); err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m.refresh()
}

func (m Model) restart() (tea.Model, tea.Cmd) {
	m.session.Reset(context.Background())
	m.copyStatus = ""
	m.status = "ready"
	return m.refresh()
}

func (m Model) copyResponse() (tea.Model, tea.Cmd) {
	out, err := m.session.CopyResponse(context.Background())
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.copyEpoch++
	m.copyStatus = out.Status
	epoch := m.copyEpoch
	return m, tea.Tick(out.ClearAfter, func(time.Time) tea.Msg { return clearCopyMsg{epoch: epoch} })
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.session.Close(context.Background())
	return m, tea.Quit
}

// refresh re-reads the snapshot and lets the views catch up with it.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	prev := m.snap.Screen
	m.snap = m.session.Snapshot(context.Background())
	cmds := []tea.Cmd{m.practice.Sync(m.snap)}
	if m.snap.Screen == "requesting" && prev != "requesting" {
		cmds = append(cmds, m.practice.SpinnerTick())
	}
	if m.snap.Screen == "practice" && prev != "practice" {
		m.status = "writing"
	}
	if m.snap.Locked {
		m.status = "locked"
	}
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	titleBar := m.renderTitleBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(titleBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.snap.Screen == "landing" || m.snap.Screen == "":
		content = m.landing.View(m.snap)
	default:
		content = m.practice.View(m.snap, m.copyStatus)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleBar, content, statusBar)
}

func (m Model) renderTitleBar() string {
	label := "Landing"
	switch m.snap.Screen {
	case "requesting":
		label = "Starting"
	case "practice":
		label = "Practice"
	}
	bar := "quill  " + theme.Hot.Render(" "+label+" ")
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.snap.Running {
		left = theme.Hot.Render("● "+m.snap.RemainingDisplay) + "  " + left
	}
	right := theme.Muted.Render(m.hints())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) hints() string {
	switch m.snap.Screen {
	case "practice":
		if m.snap.Locked {
			return "ctrl+r:restart  ctrl+y:copy  q:quit"
		}
		return "ctrl+s:submit  ctrl+r:restart  ctrl+w:preview  ctrl+y:copy"
	case "requesting":
		return "esc:cancel"
	default:
		if m.landing.CustomOpen() {
			return "ctrl+s:start  esc:cancel"
		}
		return "enter:start  c:custom  ?:help  q:quit"
	}
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "start":
		if len(parts) >= 2 {
			id := parts[1]
			return m.start(func(ctx context.Context) (sessiondto.Snapshot, error) { return m.session.StartByID(ctx, id) })
		}
		return m.start(func(ctx context.Context) (sessiondto.Snapshot, error) { return m.session.StartRandom(ctx) })
	case "custom":
		if m.snap.Screen != "landing" {
			m.session.Reset(context.Background())
			mm, _ := m.refresh()
			m = mm.(Model)
		}
		return m, m.landing.OpenCustom()
	case "submit":
		return m.submit()
	case "restart":
		return m.restart()
	case "copy":
		return m.copyResponse()
	case "preview":
		m.snap = m.session.TogglePreview(context.Background())
		return m, nil
	case "quit":
		return m.quit()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.landing, _ = m.landing.Update(sz)
	m.practice, _ = m.practice.Update(sz, m.snap)
}
