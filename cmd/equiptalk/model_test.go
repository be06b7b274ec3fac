package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	orchestration "github.com/koscakluka/equiptalk-voice/core"
)

type fakeController struct {
	toggles  int
	muted    bool
	speaking bool
	playing  bool
	spoken   []string
	cleared  bool
	history  []orchestration.Turn
}

func (c *fakeController) Toggle(context.Context) error { c.toggles++; return nil }
func (c *fakeController) ToggleMute() bool             { c.muted = !c.muted; return c.muted }
func (c *fakeController) Speak(_ context.Context, text string) error {
	c.spoken = append(c.spoken, text)
	return nil
}
func (c *fakeController) StopSpeaking()                  { c.speaking = false }
func (c *fakeController) IsSpeaking() bool               { return c.speaking }
func (c *fakeController) IsPlaying() bool                { return c.playing }
func (c *fakeController) ClearHistory()                  { c.cleared = true }
func (c *fakeController) History() []orchestration.Turn { return c.history }

func sized(t *testing.T, m model) model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	return updated.(model)
}

func press(t *testing.T, m model, key string) (model, tea.Cmd) {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	updated, cmd := m.Update(msg)
	return updated.(model), cmd
}

func TestSpaceTogglesSession(t *testing.T) {
	fake := &fakeController{}
	m := sized(t, newModel(context.Background(), fake))

	_, cmd := press(t, m, " ")
	if cmd == nil {
		t.Fatalf("expected a command for space")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("expected no message for a successful toggle, got %v", msg)
	}
	if fake.toggles != 1 {
		t.Fatalf("expected one toggle, got %d", fake.toggles)
	}
}

func TestMuteKeyUpdatesStatus(t *testing.T) {
	fake := &fakeController{}
	m := sized(t, newModel(context.Background(), fake))

	m, _ = press(t, m, "m")
	if !m.muted || !strings.Contains(m.View(), "muted") {
		t.Fatalf("expected muted status to be shown")
	}
}

func TestSpinnerTickRefreshesPlaybackStatus(t *testing.T) {
	fake := &fakeController{playing: true}
	m := sized(t, newModel(context.Background(), fake))

	updated, _ := m.Update(spinner.TickMsg{})
	m = updated.(model)
	if !strings.Contains(m.statusLine(), "answering") {
		t.Fatalf("expected answering status, got %q", m.statusLine())
	}

	m.speaking = true
	if strings.Contains(m.statusLine(), "answering") {
		t.Fatalf("expected speaking to take precedence, got %q", m.statusLine())
	}
}

func TestSpeakKeyReadsLastAssistantTurn(t *testing.T) {
	fake := &fakeController{history: []orchestration.Turn{
		{Speaker: orchestration.SpeakerUser, Text: "What is the dryer temperature?"},
		{Speaker: orchestration.SpeakerAssistant, Text: "Around 120 degrees."},
	}}
	m := sized(t, newModel(context.Background(), fake))

	_, cmd := press(t, m, "s")
	if cmd == nil {
		t.Fatalf("expected a speak command")
	}
	cmd()
	if len(fake.spoken) != 1 || fake.spoken[0] != "Around 120 degrees." {
		t.Fatalf("expected last answer to be spoken, got %v", fake.spoken)
	}
}

func TestSpeakKeyStopsOngoingSpeech(t *testing.T) {
	fake := &fakeController{speaking: true}
	m := sized(t, newModel(context.Background(), fake))

	_, cmd := press(t, m, "s")
	if cmd != nil {
		t.Fatalf("expected no command when stopping speech")
	}
	if fake.speaking {
		t.Fatalf("expected speech to be stopped")
	}
}

func TestClearKeyWipesConversation(t *testing.T) {
	fake := &fakeController{history: []orchestration.Turn{{Speaker: orchestration.SpeakerUser, Text: "hello"}}}
	m := sized(t, newModel(context.Background(), fake))
	updated, _ := m.Update(liveTranscriptMsg("You: hi\nAI: "))
	m = updated.(model)

	m, _ = press(t, m, "c")
	if !fake.cleared || len(m.turns) != 0 || m.live != "" {
		t.Fatalf("expected conversation to be cleared")
	}
}

func TestTurnsAndErrorsAreRendered(t *testing.T) {
	m := sized(t, newModel(context.Background(), &fakeController{}))

	updated, _ := m.Update(turnMsg(orchestration.Turn{Speaker: orchestration.SpeakerAssistant, Text: "Check the slurry viscosity."}))
	m = updated.(model)
	updated, _ = m.Update(errorMsg(orchestration.MessageConnectionError))
	m = updated.(model)

	view := m.View()
	if !strings.Contains(view, "Check the slurry viscosity.") {
		t.Fatalf("expected turn text in view, got %q", view)
	}
	if !strings.Contains(view, orchestration.MessageConnectionError) {
		t.Fatalf("expected error message in view, got %q", view)
	}
}

func TestReportableSkipsErrorsAlreadySurfaced(t *testing.T) {
	if reportable(&orchestration.SessionError{Message: "x", Err: orchestration.ErrPermissionDenied}) {
		t.Fatalf("expected session errors to be left to the error callback")
	}
	if reportable(orchestration.ErrSessionStopped) {
		t.Fatalf("expected a user stop not to be reported")
	}
	if !reportable(errors.Join(orchestration.ErrInvalidState)) {
		t.Fatalf("expected invalid state to be reported")
	}
}
