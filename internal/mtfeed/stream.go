// Package mtfeed consumes the public Bitstamp market-data feed
// and commits to the received trades in batches of trees.
package mtfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// DefaultURL is the public Bitstamp websocket endpoint.
const DefaultURL = "wss://ws.bitstamp.net"

// Config is the configuration for [Dial].
type Config struct {
	// Defaults to [DefaultURL] when empty.
	URL string

	// Channels to subscribe to immediately after connecting.
	Channels []string

	// Defaults to [websocket.DefaultDialer] when nil.
	Dialer *websocket.Dialer

	// Extra headers sent with the handshake.
	Header http.Header
}

// Dial connects to the feed and subscribes to every configured channel.
func Dial(ctx context.Context, log *slog.Logger, cfg Config) (*websocket.Conn, error) {
	u := cfg.URL
	if u == "" {
		u = DefaultURL
	}
	d := cfg.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}

	conn, _, err := d.DialContext(ctx, u, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial feed %s: %w", u, err)
	}

	for _, ch := range cfg.Channels {
		if err := Subscribe(conn, ch); err != nil {
			_ = conn.Close()
			return nil, err
		}
		log.Debug("Requested subscription", "channel", ch)
	}

	return conn, nil
}

// Subscribe sends a subscription request for channel.
func Subscribe(conn *websocket.Conn, channel string) error {
	if err := conn.WriteJSON(subscribeRequest{
		Event: eventSubscribe,
		Data:  subscribeData{Channel: channel},
	}); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return nil
}

// Callbacks receive decoded feed events.
// A nil callback drops its events.
// Returning an error from a callback stops [Stream].
type Callbacks struct {
	Order func(channel string, o Order) error

	// Raw holds the undecoded trade payload,
	// which is what gets committed to a tree.
	Trade func(channel string, tr Trade, raw []byte) error
}

// Stream reads messages from conn until the remote side closes the connection,
// a callback fails, or ctx is canceled.
// Stream closes conn if ctx is canceled, and then returns ctx.Err().
func Stream(ctx context.Context, log *slog.Logger, conn *websocket.Conn, cb Callbacks) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Unblocks the pending read.
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("Remote endpoint closed the feed")
				return nil
			}
			return fmt.Errorf("failed to read feed message: %w", err)
		}

		if mt != websocket.TextMessage {
			return UnexpectedMessageTypeError{Type: mt}
		}

		if err := handleMessage(log, msg, cb); err != nil {
			return err
		}
	}
}

func handleMessage(log *slog.Logger, msg []byte, cb Callbacks) error {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return fmt.Errorf("failed to decode feed envelope: %w", err)
	}

	switch env.Event {
	case eventSubscriptionSucceeded:
		log.Info("Subscribed to channel", "channel", env.Channel)
	case eventUnsubscriptionSucceeded:
		log.Info("Unsubscribed from channel", "channel", env.Channel)
	case eventRequestReconnect:
		return ErrReconnectRequested

	case eventOrderCreated:
		var o Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			return fmt.Errorf("failed to decode order on %s: %w", env.Channel, err)
		}
		if cb.Order != nil {
			return cb.Order(env.Channel, o)
		}

	case eventTrade:
		var tr Trade
		if err := json.Unmarshal(env.Data, &tr); err != nil {
			return fmt.Errorf("failed to decode trade on %s: %w", env.Channel, err)
		}
		if cb.Trade != nil {
			return cb.Trade(env.Channel, tr, env.Data)
		}

	case eventOrderChanged, eventOrderDeleted:
		log.Debug("Ignoring order update", "event", env.Event, "channel", env.Channel)

	default:
		return UnknownEventError{Event: env.Event, Channel: env.Channel}
	}

	return nil
}
