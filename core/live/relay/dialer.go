// Package relay implements the live channel over a plain JSON websocket, for
// deployments that proxy the model through their own server.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

type Dialer struct {
	url    string
	token  string
	dialer *websocket.Dialer
}

type DialerOption func(*Dialer)

// WithToken sends token as a bearer Authorization header on the upgrade
// request.
func WithToken(token string) DialerOption {
	return func(d *Dialer) { d.token = token }
}

func WithWebsocketDialer(dialer *websocket.Dialer) DialerOption {
	return func(d *Dialer) {
		if dialer != nil {
			d.dialer = dialer
		}
	}
}

func NewDialer(rawURL string, opts ...DialerOption) *Dialer {
	d := &Dialer{url: rawURL, dialer: websocket.DefaultDialer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialer) Dial(ctx context.Context) (live.Channel, error) {
	u, err := url.Parse(d.url)
	if err != nil {
		return nil, fmt.Errorf("invalid relay url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported relay url scheme %q", u.Scheme)
	}

	header := http.Header{}
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}

	conn, _, err := d.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to relay: %w", err)
	}

	return newChannel(conn), nil
}
