package mediacontrol

// Command identifies a transport action that can be requested from a
// now-playing surface, a hardware button or a remote control.
type Command string

// The different controllable commands.
const (
	CommandPlay          Command = "play"
	CommandPause         Command = "pause"
	CommandStop          Command = "stop"
	CommandNextTrack     Command = "nextTrack"
	CommandPreviousTrack Command = "previousTrack"
	CommandSkipForward   Command = "skipForward"
	CommandSkipBackward  Command = "skipBackward"
	CommandSeek          Command = "seek"
	CommandSetRating     Command = "setRating"
	CommandVolumeUp      Command = "volumeUp"
	CommandVolumeDown    Command = "volumeDown"
)

// Commands returns every known command.
func Commands() []Command {
	return []Command{
		CommandPlay,
		CommandPause,
		CommandStop,
		CommandNextTrack,
		CommandPreviousTrack,
		CommandSkipForward,
		CommandSkipBackward,
		CommandSeek,
		CommandSetRating,
		CommandVolumeUp,
		CommandVolumeDown,
	}
}

// Valid reports whether the command is a known command.
func (c Command) Valid() bool {
	switch c {
	case CommandPlay, CommandPause, CommandStop,
		CommandNextTrack, CommandPreviousTrack,
		CommandSkipForward, CommandSkipBackward,
		CommandSeek, CommandSetRating,
		CommandVolumeUp, CommandVolumeDown:
		return true
	}

	return false
}

// String returns the wire name of the command.
func (c Command) String() string {
	return string(c)
}
