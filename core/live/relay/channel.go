package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

// ClientMessage is the only outbound message shape.
type ClientMessage struct {
	Media live.Blob `json:"media"`
}

// serverEnvelope accepts the flat message shape and the same fields nested
// under serverContent.
type serverEnvelope struct {
	live.ServerMessage
	ServerContent *live.ServerMessage `json:"serverContent,omitempty"`
	SetupComplete *struct{}           `json:"setupComplete,omitempty"`
}

type Channel struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newChannel(conn *websocket.Conn) *Channel {
	return &Channel{conn: conn}
}

func (c *Channel) Send(ctx context.Context, blob live.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteJSON(ClientMessage{Media: blob}); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", classify(err))
	}
	return nil
}

func (c *Channel) Receive() (live.ServerMessage, error) {
	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			return live.ServerMessage{}, classify(err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		msg, err := parseServerMessage(raw)
		if err != nil {
			logger.Warn("failed to parse relay message", "error", err)
			continue
		}
		if msg.IsEmpty() {
			continue
		}
		return msg, nil
	}
}

func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func parseServerMessage(raw []byte) (live.ServerMessage, error) {
	var envelope serverEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return live.ServerMessage{}, fmt.Errorf("invalid server message: %w", err)
	}

	msg := envelope.ServerMessage
	if nested := envelope.ServerContent; nested != nil {
		if nested.OutputTranscription != nil {
			msg.OutputTranscription = nested.OutputTranscription
		}
		if nested.InputTranscription != nil {
			msg.InputTranscription = nested.InputTranscription
		}
		if nested.ModelTurn != nil {
			msg.ModelTurn = nested.ModelTurn
		}
		msg.TurnComplete = msg.TurnComplete || nested.TurnComplete
		msg.Interrupted = msg.Interrupted || nested.Interrupted
	}

	if msg.ModelTurn != nil {
		parts := msg.ModelTurn.Parts[:0]
		for _, part := range msg.ModelTurn.Parts {
			if part.InlineData == nil {
				continue
			}
			if _, err := base64.StdEncoding.DecodeString(part.InlineData.Data); err != nil {
				logger.Warn("skipping audio part with malformed base64", "error", err)
				continue
			}
			parts = append(parts, part)
		}
		msg.ModelTurn.Parts = parts
	}

	return msg, nil
}

func classify(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return fmt.Errorf("%w: %w", live.ErrClosed, err)
	}
	return err
}
