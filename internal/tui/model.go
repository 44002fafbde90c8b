// ABOUTME: Bubble Tea model for interactive legislation questions
// ABOUTME: Queries run asynchronously; answers are shown with highlighted source excerpts
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/guia/internal/models"
)

// Asker is the TUI-facing subset of the query engine.
type Asker interface {
	Ask(ctx context.Context, query string) (*models.Answer, error)
}

// answerMsg carries the outcome of an asynchronous query.
type answerMsg struct {
	query  string
	answer *models.Answer
	err    error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	asker     Asker
	timeout   time.Duration
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	answer    *models.Answer
	summary   string
	status    string
	lastQuery string
	loading   bool
	ready     bool
}

// New creates a new TUI model. timeout bounds each query; zero means no limit.
func New(asker Asker, summary string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Pergunte sobre a legislação tributária de Manaus e tecle Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		asker:    asker,
		timeout:  timeout,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Pronto. Digite sua pergunta.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and query events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, query box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answerMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Erro: " + msg.err.Error()
			return m, nil
		}
		m.answer = msg.answer
		m.lastQuery = msg.query
		m.status = fmt.Sprintf("Resposta para %q (%d fontes)", msg.query, len(msg.answer.Sources))
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.loading {
				return m, nil
			}
			m.loading = true
			m.status = "Consultando..."
			m.input.SetValue("")
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) askCmd(query string) tea.Cmd {
	asker, timeout := m.asker, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		answer, err := asker.Ask(ctx, query)
		return answerMsg{query: query, answer: answer, err: err}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	header := titleStyle.Render("Guia Tributário de Manaus")
	summary := summaryStyle.Render(m.summary)
	status := statusStyle.Render(m.status)
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" +
		resultBoxStyle.Render(m.viewport.View()) + "\n" +
		queryBoxStyle.Render(m.input.View()) + "\n" +
		status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "Nenhuma resposta ainda."
	}
	var b strings.Builder
	b.WriteString(m.answer.Text)
	if len(m.answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Fontes"))
		for i, sc := range m.answer.Sources {
			fmt.Fprintf(&b, "\n\n[%d] %s  score=%.3f\n", i+1, sc.Chunk.Label(), sc.Score)
			b.WriteString(highlightTerms(sc.Chunk.Content, m.lastQuery))
		}
	}
	return b.String()
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+`)
)

// highlightTerms emphasizes words of text that also occur in query.
// Words of two letters or fewer are ignored.
func highlightTerms(text, query string) string {
	terms := toTokenSet(query)
	if len(terms) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := terms[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) > 2 {
			m[t] = struct{}{}
		}
	}
	return m
}
