package orchestration

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

// pcmPayload returns base64 PCM16 silence lasting seconds at the output rate.
func pcmPayload(seconds float64) string {
	return base64.StdEncoding.EncodeToString(make([]byte, audio.Samples(seconds, audio.OutputSampleRate)*2))
}

type inbound struct {
	message live.ServerMessage
	err     error
}

type fakeChannel struct {
	inbox     chan inbound
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	sent    []live.Blob
	sendErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		inbox:  make(chan inbound, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeChannel) Send(_ context.Context, blob live.Blob) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, blob)
	return nil
}

func (c *fakeChannel) Receive() (live.ServerMessage, error) {
	select {
	case in := <-c.inbox:
		return in.message, in.err
	case <-c.closed:
		return live.ServerMessage{}, fmt.Errorf("fake channel: %w", live.ErrClosed)
	}
}

func (c *fakeChannel) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) deliver(message live.ServerMessage) {
	c.inbox <- inbound{message: message}
}

func (c *fakeChannel) fail(err error) {
	c.inbox <- inbound{err: err}
}

func (c *fakeChannel) failSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *fakeChannel) sentBlobs() []live.Blob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]live.Blob(nil), c.sent...)
}

func (c *fakeChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out a fresh fakeChannel per Dial. When release is set, Dial
// waits for it and ignores the context, like a handshake that can not be
// aborted.
type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	err      error
	release  chan struct{}
	dialing  chan struct{}
}

func (d *fakeDialer) Dial(context.Context) (live.Channel, error) {
	d.mu.Lock()
	release, dialing, err := d.release, d.dialing, d.err
	d.mu.Unlock()

	if dialing != nil {
		close(dialing)
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}

	channel := newFakeChannel()
	d.mu.Lock()
	d.channels = append(d.channels, channel)
	d.mu.Unlock()
	return channel, nil
}

func (d *fakeDialer) last() *fakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

func audioMessage(seconds ...float64) live.ServerMessage {
	parts := make([]live.Part, 0, len(seconds))
	for _, s := range seconds {
		parts = append(parts, live.Part{InlineData: &live.Blob{Data: pcmPayload(s), MIMEType: audio.GetOutputEncodingInfo().MimeType()}})
	}
	return live.ServerMessage{ModelTurn: &live.ModelTurn{Parts: parts}}
}
