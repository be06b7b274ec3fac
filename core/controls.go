package orchestration

import (
	"time"

	"github.com/koscakluka/equiptalk-voice/core/events"
)

// SetMuted silences assistant audio. Turning mute on also cuts off whatever is
// playing; chunks that arrive while muted are dropped, not queued.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	changed := c.muted != muted
	c.muted = muted
	c.mu.Unlock()

	if muted && changed {
		c.StopAudioPlayback()
	}
}

// ToggleMute flips the mute flag and returns the new value.
func (c *Controller) ToggleMute() bool {
	muted := !c.IsMuted()
	c.SetMuted(muted)
	return muted
}

func (c *Controller) IsMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Controller) IsSpeaking() bool {
	return c.speech.IsSpeaking()
}

// IsPlaying reports whether model audio from the live session is scheduled
// or audible.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.scheduler != nil && c.session.scheduler.IsPlaying()
}

// StopSpeaking cuts off one-shot speech, leaving live playback alone.
func (c *Controller) StopSpeaking() {
	c.speech.Stop()
}

// StopAudioPlayback cuts off one-shot speech and every live source, and
// rewinds the live timeline.
func (c *Controller) StopAudioPlayback() {
	c.speech.Stop()
	c.stopLivePlayback()
}

func (c *Controller) stopLivePlayback() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s != nil {
		c.interruptPlayback(s)
	}
}

// SetResetGuard raises or lowers the reset guard by hand. While it is up,
// captured frames are dropped and inbound messages are ignored. A pending
// automatic release from ClearHistory is cancelled.
func (c *Controller) SetResetGuard(active bool) {
	c.mu.Lock()
	c.resetSeq++
	changed := c.resetGuard.Swap(active) != active
	c.mu.Unlock()

	if changed {
		c.emit(events.NewSessionResetGuard(active))
	}
}

func (c *Controller) ResetGuardActive() bool {
	return c.resetGuard.Load()
}

// ClearHistory stops the session and all playback and wipes both history and
// the live transcript. The reset guard stays up for the settle delay after the
// wipe so that late deliveries from the old session are ignored.
func (c *Controller) ClearHistory() {
	c.mu.Lock()
	c.resetSeq++
	seq := c.resetSeq
	raised := !c.resetGuard.Swap(true)
	c.mu.Unlock()

	if raised {
		c.emit(events.NewSessionResetGuard(true))
	}

	_ = c.Stop()
	c.StopAudioPlayback()

	c.mu.Lock()
	logger.Info("clearing conversation history", "turns", c.history.Len())
	c.transcript.Clear()
	c.history.Clear()
	cleared := c.setLiveTranscriptLocked("")
	c.mu.Unlock()
	c.emitAll([]events.Event{events.NewHistoryCleared(), cleared})

	time.AfterFunc(c.resetSettleDelay, func() {
		c.mu.Lock()
		if c.resetSeq != seq {
			c.mu.Unlock()
			return
		}
		c.resetGuard.Store(false)
		c.mu.Unlock()
		c.emit(events.NewSessionResetGuard(false))
	})
}
