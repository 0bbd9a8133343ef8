package pipeline

import "fmt"

// EventKind is what happened on the page.
type EventKind string

const (
	// EventMutation is reported for any DOM change under the observed game root.
	EventMutation EventKind = "mutation"
	// EventClick is reported for clicks anywhere on the document.
	EventClick  EventKind = "click"
	EventClose  EventKind = "close"
	EventToggle EventKind = "toggle"
	EventAudio  EventKind = "audio"
)

func (kind EventKind) Valid() bool {
	switch kind {
	case EventMutation, EventClick, EventClose, EventToggle, EventAudio:
		return true
	}
	return false
}

// Event is a page notification. Index is the card the toggle or audio control belongs to.
type Event struct {
	Kind  EventKind `json:"kind"`
	Index int       `json:"index"`
}

func (event Event) String() string {
	switch event.Kind {
	case EventToggle, EventAudio:
		return fmt.Sprintf("%s[%d]", event.Kind, event.Index)
	}
	return string(event.Kind)
}
