//go:build linux

package linux

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
	dbh "github.com/nowplaying-org/media-session/linux/internal/dbushelper"
)

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state mediacontrol.PlaybackState
		want  string
	}{
		{mediacontrol.StatePlaying, "Playing"},
		{mediacontrol.StateBuffering, "Playing"},
		{mediacontrol.StatePaused, "Paused"},
		{mediacontrol.StateStopped, "Stopped"},
		{mediacontrol.StateNone, "Stopped"},
		{mediacontrol.StateError, "Stopped"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, playbackStatus(tt.state), tt.state.String())
	}
}

func TestEffectiveRate(t *testing.T) {
	rate := 1.5
	info := mediacontrol.PlaybackInfo{State: mediacontrol.StatePlaying, Rate: &rate}
	assert.Equal(t, 1.5, effectiveRate(info))

	info = mediacontrol.PlaybackInfo{State: mediacontrol.StatePlaying}
	assert.Equal(t, 1.0, effectiveRate(info), "omitted rate defaults to 1.0 while playing")

	info = mediacontrol.PlaybackInfo{State: mediacontrol.StatePaused}
	assert.Equal(t, 0.0, effectiveRate(info), "omitted rate defaults to 0.0 while idle")
}

func TestMetadataMap(t *testing.T) {
	md := mediacontrol.Metadata{
		Title:       mediacontrol.String("Reckoner"),
		Artist:      mediacontrol.String("Radiohead"),
		Album:       mediacontrol.String("In Rainbows"),
		Duration:    mediacontrol.Number(290),
		TrackNumber: mediacontrol.Number(7),
		Artwork:     &mediacontrol.Artwork{URI: "https://example.com/in-rainbows.jpg"},
	}

	meta := metadataMap(md.Fields())

	assert.Equal(t, dbus.MakeVariant(dbh.MprisTrackPath), meta["mpris:trackid"])
	assert.Equal(t, dbus.MakeVariant("Reckoner"), meta["xesam:title"])
	assert.Equal(t, dbus.MakeVariant([]string{"Radiohead"}), meta["xesam:artist"])
	assert.Equal(t, dbus.MakeVariant("In Rainbows"), meta["xesam:album"])
	assert.Equal(t, dbus.MakeVariant(int64(290_000_000)), meta["mpris:length"])
	assert.Equal(t, dbus.MakeVariant(int32(7)), meta["xesam:trackNumber"])
	assert.Equal(t, dbus.MakeVariant("https://example.com/in-rainbows.jpg"), meta["mpris:artUrl"])

	require.NotContains(t, meta, "xesam:genre")
	require.NotContains(t, meta, "xesam:userRating")
}

func TestMetadataMapEmpty(t *testing.T) {
	meta := metadataMap(nil)

	assert.Len(t, meta, 1)
	assert.Contains(t, meta, "mpris:trackid")
}

func TestMetadataMapRating(t *testing.T) {
	md := mediacontrol.Metadata{
		Rating: &mediacontrol.Rating{Kind: mediacontrol.RatingFiveStars, Score: 4},
	}
	meta := metadataMap(md.Fields())
	assert.Equal(t, dbus.MakeVariant(0.8), meta["xesam:userRating"])

	md.Rating = &mediacontrol.Rating{Kind: mediacontrol.RatingHeart, Liked: true}
	meta = metadataMap(md.Fields())
	assert.Equal(t, dbus.MakeVariant(1.0), meta["xesam:userRating"])

	md.Rating = &mediacontrol.Rating{Kind: mediacontrol.RatingHeart, Liked: false}
	meta = metadataMap(md.Fields())
	assert.Equal(t, dbus.MakeVariant(0.0), meta["xesam:userRating"])
}

func TestCapabilityFlags(t *testing.T) {
	flags := capabilityFlags([]mediacontrol.Command{
		mediacontrol.CommandPlay,
		mediacontrol.CommandNextTrack,
	})

	assert.True(t, flags["CanPlay"])
	assert.True(t, flags["CanGoNext"])
	assert.False(t, flags["CanPause"])
	assert.False(t, flags["CanGoPrevious"])
	assert.False(t, flags["CanSeek"])
	assert.True(t, flags["CanControl"])

	flags = capabilityFlags([]mediacontrol.Command{mediacontrol.CommandSkipForward})
	assert.True(t, flags["CanSeek"], "skip capabilities imply seeking")
}

func TestSeekEvent(t *testing.T) {
	forward := seekEvent(30)
	assert.Equal(t, mediacontrol.CommandSkipForward, forward.Command)
	assert.Equal(t, map[string]any{"interval": 30.0}, forward.Data)

	backward := seekEvent(-15)
	assert.Equal(t, mediacontrol.CommandSkipBackward, backward.Command)
	assert.Equal(t, map[string]any{"interval": 15.0}, backward.Data)
}

func TestMicrosecondConversions(t *testing.T) {
	assert.Equal(t, int64(1_500_000), secondsToMicroseconds(1.5))
	assert.Equal(t, 1.5, microsecondsToSeconds(1_500_000))
}
