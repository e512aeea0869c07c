//go:build linux

package dbushelper

import (
	"github.com/nowplaying-org/media-session/api/mediacontrol"
)

// PublishError publishes an error to the global error event stream.
// Bus callbacks have no caller to return an error to, so failures
// inside them surface here.
func PublishError(err error, origin string) {
	mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, origin))
}
