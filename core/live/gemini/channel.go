package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/equiptalk-voice/core/live"
	"google.golang.org/genai"
)

type liveSession interface {
	SendRealtimeInput(input genai.LiveRealtimeInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

// Channel adapts a genai live session to [live.Channel].
type Channel struct {
	session liveSession
	pending *genai.LiveServerMessage

	sendMu    sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newChannel(session liveSession) *Channel {
	return &Channel{session: session}
}

func (c *Channel) Send(ctx context.Context, blob live.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return fmt.Errorf("invalid media payload: %w", err)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: data, MIMEType: blob.MIMEType},
	}); err != nil {
		return fmt.Errorf("failed to send realtime input: %w", classify(err))
	}
	return nil
}

func (c *Channel) Receive() (live.ServerMessage, error) {
	for {
		var msg *genai.LiveServerMessage
		if c.pending != nil {
			msg, c.pending = c.pending, nil
		} else {
			var err error
			if msg, err = c.session.Receive(); err != nil {
				return live.ServerMessage{}, classify(err)
			}
		}

		if msg.GoAway != nil {
			logger.Info("live server is going away")
		}
		converted := convert(msg)
		if converted.IsEmpty() {
			continue
		}
		return converted, nil
	}
}

func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.session.Close()
	})
	return c.closeErr
}

func classify(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return fmt.Errorf("%w: %w", live.ErrClosed, err)
	}
	return err
}

func convert(msg *genai.LiveServerMessage) live.ServerMessage {
	var out live.ServerMessage
	if msg == nil || msg.ServerContent == nil {
		return out
	}
	content := msg.ServerContent

	if content.InputTranscription != nil {
		out.InputTranscription = &live.Transcription{Text: content.InputTranscription.Text}
	}
	if content.OutputTranscription != nil {
		out.OutputTranscription = &live.Transcription{Text: content.OutputTranscription.Text}
	}
	out.TurnComplete = content.TurnComplete
	out.Interrupted = content.Interrupted

	if content.ModelTurn != nil {
		turn := &live.ModelTurn{}
		for _, part := range content.ModelTurn.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			turn.Parts = append(turn.Parts, live.Part{InlineData: &live.Blob{
				Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
				MIMEType: part.InlineData.MIMEType,
			}})
		}
		if len(turn.Parts) > 0 {
			out.ModelTurn = turn
		}
	}

	return out
}
