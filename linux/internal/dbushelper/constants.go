//go:build linux

package dbushelper

import "github.com/godbus/dbus/v5"

// The DBus specific bus and interface names.
const (
	DbusPropertiesIface     = "org.freedesktop.DBus.Properties"
	DbusIntrospectableIface = "org.freedesktop.DBus.Introspectable"

	DbusSignalPropertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"

	MprisBusNamePrefix = "org.mpris.MediaPlayer2."
	MprisRootIface     = "org.mpris.MediaPlayer2"
	MprisPlayerIface   = "org.mpris.MediaPlayer2.Player"

	MprisObjectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")

	// MprisTrackPath is the track id reported for the current
	// metadata. The session exposes a single logical track.
	MprisTrackPath = dbus.ObjectPath("/org/mpris/MediaPlayer2/track/current")
)
