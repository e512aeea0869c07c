// Package config holds the enable-time options of a media session.
package config

import "github.com/nowplaying-org/media-session/api/mediacontrol"

// Options configures the session when media controls are enabled.
type Options struct {
	// Capabilities lists the commands advertised to the operating
	// system. A command left out of this list is not offered on the
	// now-playing surface, although hardware sources may still emit it.
	Capabilities []mediacontrol.Command

	// Notification configures the appearance of the now-playing
	// notification, where the platform shows one.
	Notification *Notification

	// Mpris configures the MPRIS adapter.
	Mpris *Mpris

	// Shim configures the helper-daemon adapter.
	Shim *Shim
}

// Notification configures the now-playing notification appearance.
type Notification struct {
	// Icon names the small icon resource.
	Icon string

	// LargeIcon names the large icon resource.
	LargeIcon string

	// Color holds the accent color as "#RRGGBB".
	Color string

	// ShowWhenClosed keeps the notification visible while the
	// application is not in the foreground.
	ShowWhenClosed bool
}

// Mpris configures the MPRIS adapter.
type Mpris struct {
	// Identity is the player name shown by MPRIS clients.
	Identity string

	// DesktopEntry names the application's desktop file, without
	// the ".desktop" suffix.
	DesktopEntry string

	// SkipInterval is the seek offset, in seconds, reported for
	// skip-forward and skip-backward actions.
	SkipInterval float64
}

// Shim configures the helper-daemon adapter.
type Shim struct {
	// SocketPath overrides the default helper daemon socket path.
	SocketPath string

	// SkipInterval is the seek offset, in seconds, reported for
	// skip-forward and skip-backward actions.
	SkipInterval float64
}

// DefaultSkipInterval is the skip interval used when none is configured.
const DefaultSkipInterval = 15

// Default returns the options used when none are provided.
func Default() *Options {
	return &Options{
		Capabilities: []mediacontrol.Command{
			mediacontrol.CommandPlay,
			mediacontrol.CommandPause,
			mediacontrol.CommandStop,
			mediacontrol.CommandNextTrack,
			mediacontrol.CommandPreviousTrack,
			mediacontrol.CommandSeek,
		},
	}
}

// Has reports whether the given command is an advertised capability.
func (o *Options) Has(cmd mediacontrol.Command) bool {
	for _, c := range o.Capabilities {
		if c == cmd {
			return true
		}
	}

	return false
}

// SkipInterval returns the configured skip interval for the current
// platform adapter, falling back to the default.
func (o *Options) SkipInterval() float64 {
	if o.Mpris != nil && o.Mpris.SkipInterval > 0 {
		return o.Mpris.SkipInterval
	}
	if o.Shim != nil && o.Shim.SkipInterval > 0 {
		return o.Shim.SkipInterval
	}

	return DefaultSkipInterval
}
