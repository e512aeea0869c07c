//go:build linux

package linux

import (
	"github.com/godbus/dbus/v5"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
	dbh "github.com/nowplaying-org/media-session/linux/internal/dbushelper"
)

// playbackStatus maps the logical playback state onto the MPRIS
// PlaybackStatus property. MPRIS has no buffering or error status;
// buffering presents as Playing and error as Stopped.
func playbackStatus(state mediacontrol.PlaybackState) string {
	switch state {
	case mediacontrol.StatePlaying, mediacontrol.StateBuffering:
		return "Playing"

	case mediacontrol.StatePaused:
		return "Paused"
	}

	return "Stopped"
}

// effectiveRate returns the rate to present for a state update,
// substituting the platform default when the caller omitted one:
// 1.0 while playing, 0.0 otherwise.
func effectiveRate(info mediacontrol.PlaybackInfo) float64 {
	if info.Rate != nil {
		return *info.Rate
	}

	if info.State.Active() {
		return 1.0
	}

	return 0.0
}

// metadataMap translates stripped metadata fields into the MPRIS
// metadata dictionary.
func metadataMap(fields map[string]any) map[string]dbus.Variant {
	meta := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbh.MprisTrackPath),
	}

	if title, ok := fields["title"].(string); ok {
		meta["xesam:title"] = dbus.MakeVariant(title)
	}
	if artist, ok := fields["artist"].(string); ok {
		meta["xesam:artist"] = dbus.MakeVariant([]string{artist})
	}
	if album, ok := fields["album"].(string); ok {
		meta["xesam:album"] = dbus.MakeVariant(album)
	}
	if genre, ok := fields["genre"].(string); ok {
		meta["xesam:genre"] = dbus.MakeVariant([]string{genre})
	}
	if date, ok := fields["date"].(string); ok {
		meta["xesam:contentCreated"] = dbus.MakeVariant(date)
	}
	if duration, ok := fields["duration"].(float64); ok {
		meta["mpris:length"] = dbus.MakeVariant(secondsToMicroseconds(duration))
	}
	if track, ok := fields["trackNumber"].(float64); ok {
		meta["xesam:trackNumber"] = dbus.MakeVariant(int32(track))
	}
	if artwork, ok := fields["artwork"].(map[string]any); ok {
		if uri, ok := artwork["uri"].(string); ok {
			meta["mpris:artUrl"] = dbus.MakeVariant(uri)
		}
	}
	if rating, ok := fields["rating"].(map[string]any); ok {
		meta["xesam:userRating"] = dbus.MakeVariant(normalizedRating(rating))
	}

	return meta
}

// normalizedRating converts a rating payload to the MPRIS 0..1 scale.
func normalizedRating(rating map[string]any) float64 {
	kind, _ := rating["type"].(string)

	switch value := rating["value"].(type) {
	case bool:
		if value {
			return 1
		}

	case float64:
		if scale := mediacontrol.RatingKind(kind).Scale(); scale > 0 {
			return value / scale
		}
	}

	return 0
}

// capabilityFlags maps the advertised capability set onto the MPRIS
// Can* properties.
func capabilityFlags(caps []mediacontrol.Command) map[string]bool {
	has := func(cmd mediacontrol.Command) bool {
		for _, c := range caps {
			if c == cmd {
				return true
			}
		}

		return false
	}

	return map[string]bool{
		"CanPlay":       has(mediacontrol.CommandPlay),
		"CanPause":      has(mediacontrol.CommandPause),
		"CanGoNext":     has(mediacontrol.CommandNextTrack),
		"CanGoPrevious": has(mediacontrol.CommandPreviousTrack),
		"CanSeek": has(mediacontrol.CommandSeek) ||
			has(mediacontrol.CommandSkipForward) ||
			has(mediacontrol.CommandSkipBackward),
		"CanControl": true,
	}
}

// seekEvent normalizes a relative MPRIS Seek offset into a skip event.
func seekEvent(offsetSeconds float64) mediacontrol.ControlEvent {
	if offsetSeconds < 0 {
		return mediacontrol.NewSkipEvent(mediacontrol.CommandSkipBackward, -offsetSeconds)
	}

	return mediacontrol.NewSkipEvent(mediacontrol.CommandSkipForward, offsetSeconds)
}

func secondsToMicroseconds(seconds float64) int64 {
	return int64(seconds * 1e6)
}

func microsecondsToSeconds(micros int64) float64 {
	return float64(micros) / 1e6
}
