package relay

type EventKind int

const (
	EventMessage EventKind = iota
	EventAction
	EventJoin
	EventPart
	EventQuit
	// EventLeave covers any other way of leaving a channel, such as a kick.
	EventLeave
)

// Event is a channel event observed by one chat session.
type Event struct {
	Kind    EventKind
	Channel string
	Nick    string
	Text    string
}
