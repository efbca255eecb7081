package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"orgopivy/internal/domain"
	"orgopivy/internal/scorer"
)

// AskPort is the TUI-facing subset of the QA service.
type AskPort interface {
	Ask(question string, topK int) (domain.Answer, error)
}

// Model is the Bubble Tea model for the interactive question console.
type Model struct {
	service  AskPort
	input    textinput.Model
	viewport viewport.Model
	answer   domain.Answer
	summary  string
	status   string
	cursor   int
	ready    bool
	asked    bool
	lastQ    string
}

// New creates a new TUI model instance.
func New(service AskPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Loaded. Ask away."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and question boxes
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.service.Ask(q, 5)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = domain.Answer{}
					m.asked = false
				} else {
					m.status = fmt.Sprintf("Answer for %q", q)
					m.answer = ans
					m.cursor = 0
					m.asked = true
					m.lastQ = q
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if len(m.answer.Contexts) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Contexts)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if len(m.answer.Contexts) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Contexts)) % len(m.answer.Contexts)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("OrgoPivy")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := questionBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if !m.asked {
		return "No answer yet."
	}
	body := highlightTerms(m.answer.Text, m.lastQ)
	if len(m.answer.Contexts) == 0 {
		return body
	}
	ctx := m.answer.Contexts[m.cursor]
	title := fmt.Sprintf("Source %d/%d  %s#%d  score=%d",
		m.cursor+1, len(m.answer.Contexts), ctx.StoredName, ctx.ChunkID, ctx.Score)
	snippet := highlightTerms(ctx.Snippet, m.lastQ)
	return body + "\n\n" + sourceTitleStyle.Render(title) + "\n" + snippet
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightTerms bolds every case-insensitive occurrence of the query's
// scoring terms in text.
func highlightTerms(text, query string) string {
	terms := scorer.Terms(query)
	if len(terms) == 0 || text == "" {
		return text
	}
	lower := strings.ToLower(text)
	var b strings.Builder
	i := 0
	for i < len(text) {
		matched := 0
		for _, t := range terms {
			if len(t) > matched && i+len(t) <= len(lower) && strings.HasPrefix(lower[i:], t) {
				matched = len(t)
			}
		}
		if matched > 0 && i+matched <= len(text) {
			b.WriteString(highlightStyle.Render(text[i : i+matched]))
			i += matched
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
