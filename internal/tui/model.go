// Package tui is a terminal front end for the notes pipeline.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
	"github.com/anatolykoptev/go_ytnotes/internal/notes"
)

// Runner executes one request. *notes.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req notes.Request) notes.Outcome
}

type phase int

const (
	phaseInput phase = iota
	phaseRunning
	phaseResult
)

type outcomeMsg struct {
	out notes.Outcome
}

// Model is the bubbletea model: URL input and language choice, then the outcome.
type Model struct {
	runner Runner

	input   textinput.Model
	spinner spinner.Model
	lang    int

	phase phase
	out   notes.Outcome
	width int
}

// NewModel creates the model in its input phase.
func NewModel(r Runner) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{runner: r, input: ti, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Language returns the currently selected language.
func (m Model) Language() engine.Language {
	return engine.Languages[m.lang]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case outcomeMsg:
		m.out = msg.out
		m.phase = phaseResult
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.phase {
		case phaseInput:
			return m.updateInput(msg)
		case phaseResult:
			return m.updateResult(msg)
		}
		return m, nil
	}

	if m.phase == phaseInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		m.lang = (m.lang + 1) % len(engine.Languages)
		return m, nil
	case tea.KeyShiftTab:
		m.lang = (m.lang + len(engine.Languages) - 1) % len(engine.Languages)
		return m, nil
	case tea.KeyEnter:
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.phase = phaseRunning
		req := notes.Request{URL: m.input.Value(), Language: m.Language().Code}
		r := m.runner
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return outcomeMsg{out: r.Run(context.Background(), req)}
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n", "enter":
		m.phase = phaseInput
		m.out = notes.Outcome{}
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("YouTube Transcript to Detailed Notes Converter"))
	b.WriteString("\n")

	switch m.phase {
	case phaseInput:
		b.WriteString("Enter YouTube Video Link:\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\nLanguage: ")
		b.WriteString(languageStyle.Render("< " + m.Language().Name + " >"))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("Enter: get detailed notes · Tab/Shift+Tab: language · Esc: quit"))

	case phaseRunning:
		b.WriteString(m.spinner.View())
		b.WriteString(" Fetching transcript and summarizing...")

	case phaseResult:
		b.WriteString(m.resultView())
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("n: new link · q: quit"))
	}
	return docStyle.Render(b.String())
}

func (m Model) resultView() string {
	var b strings.Builder
	if !m.out.Video.IsZero() {
		b.WriteString(urlStyle.Render(m.out.Video.ThumbnailURL()))
		b.WriteString("\n")
	}
	if m.out.Meta != nil && m.out.Meta.Title != "" {
		b.WriteString(m.out.Meta.Title)
		b.WriteString("\n")
	}
	if w := m.out.Warning(); w != "" {
		b.WriteString(warningStyle.Render(w))
		b.WriteString("\n")
	}
	if !m.out.OK() {
		b.WriteString(errorStyle.Render(m.out.Message))
		return b.String()
	}

	b.WriteString(headerStyle.Render("Detailed Notes"))
	b.WriteString("\n")
	text := m.out.Text
	if m.width > 8 {
		text = lipgloss.NewStyle().Width(m.width - 8).Render(text)
	}
	b.WriteString(text)
	return b.String()
}
