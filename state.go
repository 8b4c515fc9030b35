package voevent

// ConnectionState is the state of a client's supervision loop.
type ConnectionState int32

const (
	// Disconnected: no connection, waiting out the backoff delay.
	Disconnected ConnectionState = iota
	// Connecting: dialing the feed.
	Connecting
	// Streaming: connected and decoding frames.
	Streaming
	// Stopped is terminal.
	Stopped
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
