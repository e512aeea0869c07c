package mediacontrol

import (
	"time"

	"github.com/rs/xid"

	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/eventbus"
)

// EventID represents a unique event ID.
type EventID byte

// The different types of event IDs.
const (
	EventNone EventID = iota // The zero value for this type.
	EventError
	EventCommand
	EventVolume
)

// eventNames holds names of different events.
var eventNames = map[EventID]string{
	EventNone:    "",
	EventError:   "error_event",
	EventCommand: "media_control_event",
	EventVolume:  "volume_change_event",
}

// String returns the name of the event ID.
func (e EventID) String() string {
	return eventNames[e]
}

// Value returns the event ID.
func (e EventID) Value() uint {
	return uint(e)
}

// ControlEvent is a normalized notification that a user or system
// action requested a transport action.
type ControlEvent struct {
	// ID holds a unique ID for this event.
	ID xid.ID `json:"id,omitempty" codec:"id,omitempty" doc:"A unique ID for this event."`

	// Command holds the requested transport action.
	Command Command `json:"command" codec:"command" doc:"The requested transport action."`

	// Data holds the per-command payload, if any.
	Data map[string]any `json:"data,omitempty" codec:"data,omitempty" doc:"The per-command payload, if any."`

	// Timestamp holds the time the action was observed, in Unix milliseconds.
	Timestamp int64 `json:"timestamp" codec:"timestamp" doc:"The time the action was observed, in Unix milliseconds."`
}

// VolumeChange reports a change of the system volume.
type VolumeChange struct {
	// Volume holds the new volume, normalized to [0, 1].
	Volume float64 `json:"volume" codec:"volume" doc:"The new volume, normalized to [0, 1]."`

	// UserInitiated indicates whether the change came from a user action.
	UserInitiated bool `json:"userInitiated" codec:"userInitiated" doc:"Whether the change came from a user action."`
}

// NewControlEvent returns a ControlEvent for a command without a payload.
func NewControlEvent(cmd Command) ControlEvent {
	return ControlEvent{
		ID:        xid.New(),
		Command:   cmd,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewSeekEvent returns a seek ControlEvent carrying the absolute
// position in seconds.
func NewSeekEvent(position float64) ControlEvent {
	ev := NewControlEvent(CommandSeek)
	ev.Data = map[string]any{"position": position}

	return ev
}

// NewSkipEvent returns a skip-forward or skip-backward ControlEvent
// carrying the skip interval in seconds.
func NewSkipEvent(cmd Command, interval float64) ControlEvent {
	ev := NewControlEvent(cmd)
	ev.Data = map[string]any{"interval": interval}

	return ev
}

// NewRatingEvent returns a setRating ControlEvent carrying the rating
// value and scale.
func NewRatingEvent(rating Rating) ControlEvent {
	ev := NewControlEvent(CommandSetRating)
	ev.Data = map[string]any{
		"rating": rating.Value(),
		"type":   rating.Kind.String(),
	}

	return ev
}

// Events defines the set of possible event data types.
type Events interface {
	ControlEvent | VolumeChange | errorkinds.GenericError
}

// Event represents a general event.
type Event[T Events] struct {
	// ID holds the event ID.
	ID EventID `json:"event_id,omitempty" doc:"The event ID."`

	// Data holds the actual event data.
	Data T `json:"event_data,omitempty" doc:"The actual event data."`
}

// EventGroup publishes and subscribes to one kind of event.
type EventGroup[T Events] struct {
	// ID holds the event ID.
	ID EventID
}

// Subscriber receives events of one kind from the bus.
type Subscriber[T Events] struct {
	// Events receives the published events. It is closed after
	// Unsubscribe is called.
	Events chan T

	Unsubscribe eventbus.UnsubFunc
}

// Publish publishes an event to all subscribers of the group.
func (e EventGroup[T]) Publish(data T) {
	eventbus.Publish(e.ID.Value(), Event[T]{e.ID, data})
}

// Subscribe subscribes to the group's events.
func (e EventGroup[T]) Subscribe() *Subscriber[T] {
	token := eventbus.Subscribe(e.ID.Value())

	sub := &Subscriber[T]{
		Events:      make(chan T, cap(token.C)),
		Unsubscribe: token.Unsubscribe,
	}

	go func() {
		for data := range token.C {
			if ev, ok := data.(Event[T]); ok {
				sub.Events <- ev.Data
			}
		}

		close(sub.Events)
	}()

	return sub
}

// CommandEvents returns an event interface to publish and subscribe to
// transport command events.
func CommandEvents() EventGroup[ControlEvent] {
	return EventGroup[ControlEvent]{ID: EventCommand}
}

// VolumeEvents returns an event interface to publish and subscribe to
// volume change events.
func VolumeEvents() EventGroup[VolumeChange] {
	return EventGroup[VolumeChange]{ID: EventVolume}
}

// ErrorEvents returns an event interface to publish and subscribe to
// error events.
func ErrorEvents() EventGroup[errorkinds.GenericError] {
	return EventGroup[errorkinds.GenericError]{ID: EventError}
}

// ErrorEvent wraps an error for publishing to the error event stream.
func ErrorEvent(err error, origin string) errorkinds.GenericError {
	return errorkinds.GenericError{
		Message: err.Error(),
		Origin:  origin,
		Err:     err,
	}
}
