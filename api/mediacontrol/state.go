package mediacontrol

// PlaybackState indicates the logical state of the session's playback.
type PlaybackState int

// The different playback states. Exactly one state is current at a time.
const (
	StateNone PlaybackState = iota
	StateStopped
	StatePlaying
	StatePaused
	StateBuffering
	StateError
)

// stateNames holds the wire names of the playback states.
var stateNames = map[PlaybackState]string{
	StateNone:      "none",
	StateStopped:   "stopped",
	StatePlaying:   "playing",
	StatePaused:    "paused",
	StateBuffering: "buffering",
	StateError:     "error",
}

// String returns the name of the playback state.
func (s PlaybackState) String() string {
	name, ok := stateNames[s]
	if !ok {
		return "unknown"
	}

	return name
}

// Valid reports whether the state is one of the known playback states.
func (s PlaybackState) Valid() bool {
	_, ok := stateNames[s]

	return ok
}

// Active reports whether playback is in progress.
func (s PlaybackState) Active() bool {
	return s == StatePlaying || s == StateBuffering
}

// PlaybackInfo is the payload of a playback-state update.
// Position and Rate are optional; when Rate is left unset the session
// forwards the update as-is and the platform adapter applies its own
// presentation default.
type PlaybackInfo struct {
	// State holds the playback state to reflect.
	State PlaybackState `json:"state" codec:"state"`

	// Position holds the playback position in seconds, if provided.
	Position *float64 `json:"position,omitempty" codec:"position,omitempty"`

	// Rate holds the playback rate, if provided.
	Rate *float64 `json:"rate,omitempty" codec:"rate,omitempty"`
}
