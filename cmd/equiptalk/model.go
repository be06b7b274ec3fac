package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/equiptalk-voice/core"
)

type (
	stateMsg          orchestration.State
	liveTranscriptMsg string
	turnMsg           orchestration.Turn
	errorMsg          string
	speakingMsg       bool
	commandErrMsg     struct{ err error }
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	liveStyle      = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// controller is the part of the orchestration controller the UI drives.
type controller interface {
	Toggle(ctx context.Context) error
	ToggleMute() bool
	Speak(ctx context.Context, text string) error
	StopSpeaking()
	IsSpeaking() bool
	IsPlaying() bool
	ClearHistory()
	History() []orchestration.Turn
}

type model struct {
	ctx        context.Context
	controller controller

	state    orchestration.State
	live     string
	turns    []orchestration.Turn
	err      string
	muted    bool
	speaking bool
	playing  bool

	viewport viewport.Model
	spinner  spinner.Model
	width    int
	ready    bool
}

func newModel(ctx context.Context, controller controller) model {
	return model{
		ctx:        ctx,
		controller: controller,
		turns:      controller.History(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := max(msg.Height-6, 3)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refreshViewport()

	case stateMsg:
		m.state = orchestration.State(msg)
		if m.state == orchestration.StateConnecting {
			m.err = ""
		}

	case liveTranscriptMsg:
		m.live = string(msg)

	case turnMsg:
		m.turns = append(m.turns, orchestration.Turn(msg))
		m.refreshViewport()

	case errorMsg:
		m.err = string(msg)

	case speakingMsg:
		m.speaking = bool(msg)

	case commandErrMsg:
		m.err = msg.err.Error()

	case spinner.TickMsg:
		m.playing = m.controller.IsPlaying()
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		ctx, controller := m.ctx, m.controller
		return m, func() tea.Msg {
			if err := controller.Toggle(ctx); reportable(err) {
				return commandErrMsg{err: err}
			}
			return nil
		}

	case "m":
		m.muted = m.controller.ToggleMute()

	case "s":
		if m.controller.IsSpeaking() {
			m.controller.StopSpeaking()
			return m, nil
		}
		text := lastAssistantText(m.turns)
		if text == "" {
			return m, nil
		}
		ctx, controller := m.ctx, m.controller
		return m, func() tea.Msg {
			if err := controller.Speak(ctx, text); err != nil {
				return commandErrMsg{err: fmt.Errorf("could not read the answer aloud: %w", err)}
			}
			return nil
		}

	case "c":
		m.controller.ClearHistory()
		m.turns = nil
		m.live = ""
		m.err = ""
		m.refreshViewport()
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// reportable filters out errors that already reached the UI through the error
// callback.
func reportable(err error) bool {
	if err == nil || errors.Is(err, orchestration.ErrSessionStopped) {
		return false
	}
	var sessionErr *orchestration.SessionError
	if errors.As(err, &sessionErr) {
		return false
	}
	return errors.Is(err, orchestration.ErrInvalidState) || errors.Is(err, orchestration.ErrNotConfigured)
}

func lastAssistantText(turns []orchestration.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Speaker == orchestration.SpeakerAssistant {
			return turns[i].Text
		}
	}
	return ""
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTurns(m.turns, m.width))
	m.viewport.GotoBottom()
}

func renderTurns(turns []orchestration.Turn, width int) string {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, turn := range turns {
		label := userStyle.Render("You")
		if turn.Speaker == orchestration.SpeakerAssistant {
			label = assistantStyle.Render("AI")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(wordwrap.String(turn.Text, width))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Equiptalk"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.live != "" {
		b.WriteString(liveStyle.Render(wordwrap.String(m.live, m.width)))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space: start/stop  m: mute  s: read answer  c: clear  q: quit"))
	return b.String()
}

func (m model) statusLine() string {
	var parts []string
	switch m.state {
	case orchestration.StateConnecting, orchestration.StateClosing:
		parts = append(parts, m.spinner.View()+" "+m.state.String())
	default:
		parts = append(parts, m.state.String())
	}
	if m.muted {
		parts = append(parts, "muted")
	}
	if m.speaking {
		parts = append(parts, "speaking")
	} else if m.playing {
		parts = append(parts, "answering")
	}
	return strings.Join(parts, " | ")
}
