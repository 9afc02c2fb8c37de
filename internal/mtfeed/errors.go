package mtfeed

import (
	"errors"
	"fmt"
)

// ErrReconnectRequested is returned from [Stream]
// when the server asks the client to reconnect.
var ErrReconnectRequested = errors.New("feed requested reconnect")

// UnknownEventError is returned from [Stream]
// for an event name the feed is not expected to send.
type UnknownEventError struct {
	Event, Channel string
}

func (e UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q on channel %q", e.Event, e.Channel)
}

// UnexpectedMessageTypeError is returned from [Stream]
// when a websocket frame is not a text frame.
type UnexpectedMessageTypeError struct {
	Type int
}

func (e UnexpectedMessageTypeError) Error() string {
	return fmt.Sprintf("unexpected websocket message type %d", e.Type)
}
