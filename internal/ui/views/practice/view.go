package practice

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "quill/internal/modules/session/dto"
	"quill/internal/ui/theme"
)

const (
	TimeUpBanner    = "Time’s up. Response locked."
	SubmittedBanner = "Submitted. Response locked."

	requestingTitle = "Requesting webcam permission…"
	requestingHint  = "If you deny permission, you can still continue without webcam."
)

// Model renders the requesting and practice screens. The editor mirrors the
// stored response: whatever the session keeps is what the editor shows.
type Model struct {
	editor    textarea.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	sessionID string
	prompt    string
	rendered  string
	width     int
	height    int
}

func New() Model {
	ed := textarea.New()
	ed.Placeholder = "Start writing…"
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetHeight(10)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(76),
	)
	return Model{editor: ed, spinner: sp, renderer: r}
}

func (m Model) Value() string { return m.editor.Value() }

// SpinnerTick starts the requesting-screen spinner.
func (m Model) SpinnerTick() tea.Cmd { return m.spinner.Tick }

// Sync aligns the editor with snap. A new session clears and focuses the
// editor; a locked session blurs it.
func (m *Model) Sync(snap sessiondto.Snapshot) tea.Cmd {
	var cmd tea.Cmd
	if snap.SessionID != m.sessionID {
		m.sessionID = snap.SessionID
		m.editor.Reset()
	}
	if snap.Prompt != m.prompt {
		m.prompt = snap.Prompt
		m.rendered = m.renderPrompt(snap.Prompt)
	}
	if m.editor.Value() != snap.Response {
		m.editor.SetValue(snap.Response)
	}
	switch {
	case snap.Locked:
		m.editor.Blur()
	case snap.Running && !m.editor.Focused():
		cmd = m.editor.Focus()
	}
	return cmd
}

func (m Model) Update(msg tea.Msg, snap sessiondto.Snapshot) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(20, min(m.width-6, 96)))
		m.editor.SetHeight(max(3, m.height/3))
		return m, nil
	case spinner.TickMsg:
		if snap.Screen != "requesting" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if snap.Screen != "practice" || snap.Locked {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) View(snap sessiondto.Snapshot, status string) string {
	if snap.Screen == "requesting" {
		return m.requestingView()
	}
	var sb strings.Builder
	sb.WriteString(m.header(snap) + "\n")
	if snap.Advisory != "" {
		sb.WriteString(theme.Warn.Render(snap.Advisory) + "\n")
	}
	sb.WriteString(m.rendered)
	if banner := Banner(snap); banner != "" {
		sb.WriteString(theme.Banner.Render(banner) + "\n")
	}
	sb.WriteString(m.editor.View() + "\n")
	sb.WriteString(Counter(snap) + "\n")
	if snap.Locked {
		sb.WriteString(Summary(snap) + "\n")
	}
	if status != "" {
		sb.WriteString(theme.Good.Render(status) + "\n")
	}
	return sb.String()
}

func (m Model) header(snap sessiondto.Snapshot) string {
	title := snap.PromptTitle
	if title == "" {
		title = "Prompt"
	}
	timer := theme.Title.Render(snap.RemainingDisplay)
	if snap.Running && snap.SecondsRemaining <= 60 {
		timer = theme.Hot.Render(snap.RemainingDisplay)
	}
	left := theme.Title.Render(title)
	right := timer + "  " + previewIndicator(snap)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) requestingView() string {
	body := m.spinner.View() + " " + theme.Title.Render(requestingTitle) + "\n\n" + theme.Muted.Render(requestingHint)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Pane.Render(body))
}

func (m Model) renderPrompt(prompt string) string {
	if prompt == "" {
		return ""
	}
	if m.renderer == nil {
		return prompt + "\n\n"
	}
	out, err := m.renderer.Render(prompt)
	if err != nil {
		return prompt + "\n\n"
	}
	return out
}

// Banner names why the response is locked, if it is.
func Banner(snap sessiondto.Snapshot) string {
	switch snap.EndReason {
	case "timeup":
		return TimeUpBanner
	case "submitted":
		return SubmittedBanner
	default:
		return ""
	}
}

// Counter shows words against the soft target; it turns to a warning once
// the target is passed.
func Counter(snap sessiondto.Snapshot) string {
	words := fmt.Sprintf("%d / %d words", snap.Words, snap.SoftTarget)
	if snap.OverTarget {
		words = theme.Warn.Render(words)
	} else {
		words = theme.Muted.Render(words)
	}
	return words + theme.Muted.Render(fmt.Sprintf("  ·  %d characters", snap.Characters))
}

func Summary(snap sessiondto.Snapshot) string {
	return theme.Title.Render("Summary") + theme.Muted.Render(fmt.Sprintf(
		"  words %d  ·  characters %d  ·  time used %s",
		snap.Words, snap.Characters, snap.TimeUsedDisplay,
	))
}

func previewIndicator(snap sessiondto.Snapshot) string {
	switch {
	case !snap.CaptureActive:
		return theme.Muted.Render("○ no webcam")
	case snap.PreviewVisible:
		return theme.Good.Render("● webcam preview")
	default:
		return theme.Muted.Render("● webcam preview hidden")
	}
}
