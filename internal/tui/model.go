package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rag-assistant/internal/chatlog"
	"rag-assistant/internal/domain"
	"rag-assistant/internal/loader"
)

// AssistantPort is the TUI-facing subset of the assistant.
type AssistantPort interface {
	Query(ctx context.Context, question string) domain.QueryResponse
}

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	assistant AssistantPort
	chat      *chatlog.Logger
	input     textinput.Model
	viewport  viewport.Model
	response  domain.QueryResponse
	answered  bool
	banner    string
	status    string
	ready     bool
}

// New creates a new session model. banner describes the loaded corpus and
// chat may be nil to disable transcript logging.
func New(assistant AssistantPort, banner string, chat *chatlog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		assistant: assistant,
		chat:      chat,
		input:     ti,
		viewport:  vp,
		banner:    banner,
		status:    "Ready. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + banner
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResponse())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				if q == "quit" || q == "exit" {
					return m, tea.Quit
				}
				m.chat.LogUser(q)
				m.response = m.assistant.Query(context.Background(), q)
				m.chat.LogAssistant(m.response.Answer)
				m.answered = true
				m.status = fmt.Sprintf("Answered %q", q)
				m.input.SetValue("")
				m.viewport.SetContent(m.renderResponse())
				m.viewport.GotoTop()
				return m, nil
			}
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the session layout and the latest answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Assistant")
	banner := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.banner)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + banner + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderResponse() string {
	if !m.answered {
		return "No answer yet. Ask a question below."
	}
	var b strings.Builder
	b.WriteString(m.response.Answer)
	if len(m.response.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceHeadStyle.Render("Explore the following document(s) to gain deeper insight:"))
		for i, src := range m.response.Sources {
			b.WriteString(fmt.Sprintf("\n%d. %s", i+1, loader.DisplayTitle(src)))
		}
	}
	return b.String()
}

var (
	answerBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
