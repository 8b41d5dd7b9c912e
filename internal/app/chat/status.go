package chat

// Status is the connection state of a Session.
type Status int

const (
	// StatusIdle means no connection is open or scheduled. A manual close lands here.
	StatusIdle Status = iota

	// StatusConnecting means a dial is pending, either waiting out the settle delay or in flight.
	StatusConnecting

	// StatusOpen means the handshake succeeded and frames are flowing.
	StatusOpen

	// StatusClosedUnexpected means the tracked connection dropped and a single retry is scheduled.
	StatusClosedUnexpected
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosedUnexpected:
		return "closed-unexpected"
	default:
		return "unknown"
	}
}
