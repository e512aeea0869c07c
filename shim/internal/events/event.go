//go:build !linux

// Package events decodes events pushed by the shim helper daemon.
package events

import (
	"github.com/ugorji/go/codec"

	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
	"github.com/nowplaying-org/media-session/shim/internal/serde"
)

// ServerEvent describes a raw event that was sent from the daemon.
type ServerEvent struct {
	EventId mediacontrol.EventID `json:"event_id,omitempty"`
	Event   codec.Raw            `json:"event"`
}

// UnmarshalControlEvent unmarshals a ServerEvent into a control event.
func UnmarshalControlEvent(ev ServerEvent) (mediacontrol.ControlEvent, error) {
	var event mediacontrol.ControlEvent

	err := serde.UnmarshalJson(ev.Event, &event)

	return event, err
}

// UnmarshalErrorEvent unmarshals a ServerEvent into an error event.
func UnmarshalErrorEvent(ev ServerEvent) (errorkinds.GenericError, error) {
	var event errorkinds.GenericError

	err := serde.UnmarshalJson(ev.Event, &event)

	return event, err
}

// UnmarshalVolumeEvent unmarshals a ServerEvent into a volume change.
func UnmarshalVolumeEvent(ev ServerEvent) (mediacontrol.VolumeChange, error) {
	var event mediacontrol.VolumeChange

	err := serde.UnmarshalJson(ev.Event, &event)

	return event, err
}
