// Package validate implements the payload checks that guard the
// adapter boundary. Every public session operation validates its input
// here before any native call is made; a failed check prevents the
// native call entirely.
package validate

import (
	"fmt"
	"math"
	"regexp"

	"github.com/nowplaying-org/media-session/api/config"
	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
)

// MaxPlaybackRate is the highest accepted playback rate. Rates above
// this are rejected as almost-certainly erroneous input, not as a
// physical playback limit.
const MaxPlaybackRate = 10

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Metadata validates a metadata payload.
func Metadata(md *mediacontrol.Metadata) error {
	if md == nil {
		return errorkinds.NewValidation("metadata", "metadata is required")
	}

	numbers := []struct {
		field string
		value *float64
	}{
		{"metadata.duration", md.Duration},
		{"metadata.elapsedTime", md.ElapsedTime},
		{"metadata.trackNumber", md.TrackNumber},
		{"metadata.albumTrackCount", md.AlbumTrackCount},
	}
	for _, n := range numbers {
		if n.value == nil {
			continue
		}
		if err := nonNegative(n.field, *n.value); err != nil {
			return err
		}
	}

	if md.Artwork != nil {
		if err := artwork(md.Artwork); err != nil {
			return err
		}
	}

	if md.Rating != nil {
		if err := rating(md.Rating); err != nil {
			return err
		}
	}

	if md.Color != nil && !colorPattern.MatchString(*md.Color) {
		return errorkinds.NewValidation("metadata.color", "must be a #RRGGBB color, got %q", *md.Color)
	}

	return nil
}

// PlaybackState validates a playback state value.
func PlaybackState(state mediacontrol.PlaybackState) error {
	if !state.Valid() {
		return errorkinds.NewValidation("state", "unknown playback state %d", int(state))
	}

	return nil
}

// Position validates a playback position in seconds.
func Position(position float64) error {
	return nonNegative("position", position)
}

// Rate validates a playback rate.
func Rate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return errorkinds.NewValidation("playbackRate", "must be a finite number")
	}
	if rate < 0 || rate > MaxPlaybackRate {
		return errorkinds.NewValidation("playbackRate",
			"must be between 0 and %d, got %s", MaxPlaybackRate, formatNumber(rate))
	}

	return nil
}

// Options validates enable-time options.
func Options(opts *config.Options) error {
	if opts == nil {
		return errorkinds.NewValidation("options", "options are required")
	}

	for i, cmd := range opts.Capabilities {
		if !cmd.Valid() {
			return errorkinds.NewValidation(
				fmt.Sprintf("capabilities[%d]", i), "unknown command %q", string(cmd))
		}
	}

	if n := opts.Notification; n != nil && n.Color != "" && !colorPattern.MatchString(n.Color) {
		return errorkinds.NewValidation("notification.color", "must be a #RRGGBB color, got %q", n.Color)
	}

	if m := opts.Mpris; m != nil && m.SkipInterval != 0 {
		if err := positiveFinite("mpris.skipInterval", m.SkipInterval); err != nil {
			return err
		}
	}
	if s := opts.Shim; s != nil && s.SkipInterval != 0 {
		if err := positiveFinite("shim.skipInterval", s.SkipInterval); err != nil {
			return err
		}
	}

	return nil
}

// artwork validates an artwork descriptor.
func artwork(art *mediacontrol.Artwork) error {
	if art.URI == "" {
		return errorkinds.NewValidation("artwork.uri", "must be a non-empty string")
	}

	if art.Width != nil {
		if err := nonNegative("artwork.width", *art.Width); err != nil {
			return err
		}
	}
	if art.Height != nil {
		if err := nonNegative("artwork.height", *art.Height); err != nil {
			return err
		}
	}

	return nil
}

// rating validates a rating payload against its scale.
func rating(r *mediacontrol.Rating) error {
	if !r.Kind.Valid() {
		return errorkinds.NewValidation("rating.type", "unknown rating type %q", string(r.Kind))
	}

	if !r.Kind.Binary() {
		if err := nonNegative("rating.value", r.Score); err != nil {
			return err
		}
		if r.Score > r.Kind.Scale() {
			return errorkinds.NewValidation("rating.value",
				"must be at most %s for %s ratings", formatNumber(r.Kind.Scale()), r.Kind)
		}
	}

	if r.Max != nil {
		if err := nonNegative("rating.maxValue", *r.Max); err != nil {
			return err
		}
	}

	return nil
}

func nonNegative(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errorkinds.NewValidation(field, "must be a finite number")
	}
	if value < 0 {
		return errorkinds.NewValidation(field, "must not be negative, got %s", formatNumber(value))
	}

	return nil
}

func positiveFinite(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return errorkinds.NewValidation(field, "must be a positive number")
	}

	return nil
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
