package landing

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "quill/internal/modules/session/dto"
	"quill/internal/ui/theme"
)

// EmptyPromptMessage is shown when a custom prompt is submitted blank.
const EmptyPromptMessage = "Please enter a prompt to continue."

// Model is the start screen: a short briefing, the random-prompt action and
// an optional custom prompt panel.
type Model struct {
	custom     textarea.Model
	customOpen bool
	validation string
	width      int
	height     int
}

func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Type or paste the prompt you want to answer…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(5)
	return Model{custom: ta}
}

func (m Model) CustomOpen() bool { return m.customOpen }

func (m Model) CustomText() string { return m.custom.Value() }

// OpenCustom shows the custom prompt panel with any earlier validation
// message cleared.
func (m *Model) OpenCustom() tea.Cmd {
	m.customOpen = true
	m.validation = ""
	return m.custom.Focus()
}

func (m *Model) CloseCustom() {
	m.customOpen = false
	m.validation = ""
	m.custom.Blur()
}

// Reject keeps the panel open with a validation message.
func (m *Model) Reject(message string) {
	m.validation = message
}

// Clear empties the panel after a prompt has been accepted.
func (m *Model) Clear() {
	m.CloseCustom()
	m.custom.SetValue("")
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.custom.SetWidth(max(20, min(m.width-8, 76)))
		return m, nil
	}
	if !m.customOpen {
		return m, nil
	}
	var cmd tea.Cmd
	m.custom, cmd = m.custom.Update(msg)
	return m, cmd
}

func (m Model) View(snap sessiondto.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Timed writing practice") + "\n\n")
	sb.WriteString(Briefing(snap.TotalSeconds, snap.SoftTarget) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("Typing stops at %d words.", snap.HardCap)) + "\n\n")

	if m.customOpen {
		sb.WriteString(theme.Hot.Render("Your prompt") + "\n")
		sb.WriteString(m.custom.View() + "\n")
		if m.validation != "" {
			sb.WriteString(theme.Error.Render(m.validation) + "\n")
		}
		sb.WriteString(theme.Muted.Render("ctrl+s start  esc cancel"))
	} else {
		sb.WriteString(theme.Hot.Render("enter") + theme.Muted.Render(" start with a random prompt") + "\n")
		sb.WriteString(theme.Hot.Render("c") + theme.Muted.Render("     write your own prompt"))
	}

	body := theme.Pane.Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// Briefing is the one-line summary of the session rules.
func Briefing(totalSeconds, softTarget int) string {
	return fmt.Sprintf("You have %s to write a response of up to %d words.", humanDuration(totalSeconds), softTarget)
}

func humanDuration(seconds int) string {
	switch {
	case seconds == 60:
		return "1 minute"
	case seconds%60 == 0:
		return fmt.Sprintf("%d minutes", seconds/60)
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	default:
		return fmt.Sprintf("%d:%02d minutes", seconds/60, seconds%60)
	}
}
