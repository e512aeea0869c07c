//go:build linux

package linux

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
	dbh "github.com/nowplaying-org/media-session/linux/internal/dbushelper"
)

// mprisRoot implements org.mpris.MediaPlayer2. All public methods are
// exported on the session bus and hence called by MPRIS clients only.
type mprisRoot struct {
	session *Session
}

// Raise is requested when a client wants the application brought to
// the front. The session has no window of its own.
func (r *mprisRoot) Raise() *dbus.Error {
	return nil
}

// Quit is requested when a client wants the application to exit.
// Quitting is the host application's decision; the request is ignored.
func (r *mprisRoot) Quit() *dbus.Error {
	return nil
}

// mprisPlayer implements org.mpris.MediaPlayer2.Player. Every incoming
// call is normalized into exactly one control event on the command
// event stream.
type mprisPlayer struct {
	session *Session
}

func (p *mprisPlayer) Play() *dbus.Error {
	p.publish(mediacontrol.NewControlEvent(mediacontrol.CommandPlay))

	return nil
}

func (p *mprisPlayer) Pause() *dbus.Error {
	p.publish(mediacontrol.NewControlEvent(mediacontrol.CommandPause))

	return nil
}

// PlayPause maps onto play or pause depending on the state the surface
// currently presents.
func (p *mprisPlayer) PlayPause() *dbus.Error {
	cmd := mediacontrol.CommandPlay
	if p.session.currentState().Active() {
		cmd = mediacontrol.CommandPause
	}

	p.publish(mediacontrol.NewControlEvent(cmd))

	return nil
}

func (p *mprisPlayer) Stop() *dbus.Error {
	p.publish(mediacontrol.NewControlEvent(mediacontrol.CommandStop))

	return nil
}

func (p *mprisPlayer) Next() *dbus.Error {
	p.publish(mediacontrol.NewControlEvent(mediacontrol.CommandNextTrack))

	return nil
}

func (p *mprisPlayer) Previous() *dbus.Error {
	p.publish(mediacontrol.NewControlEvent(mediacontrol.CommandPreviousTrack))

	return nil
}

// Seek handles a relative seek, in microseconds.
func (p *mprisPlayer) Seek(offset int64) *dbus.Error {
	p.publish(seekEvent(microsecondsToSeconds(offset)))

	return nil
}

// SetPosition handles an absolute seek, in microseconds.
func (p *mprisPlayer) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	if trackID != dbh.MprisTrackPath {
		// Stale track id from a client racing a metadata change.
		return nil
	}

	p.publish(mediacontrol.NewSeekEvent(microsecondsToSeconds(position)))

	return nil
}

// OpenUri is not supported; the host application owns its playback
// sources.
func (p *mprisPlayer) OpenUri(string) *dbus.Error {
	return nil
}

func (p *mprisPlayer) publish(ev mediacontrol.ControlEvent) {
	mediacontrol.CommandEvents().Publish(ev)
}

// mprisProperties implements org.freedesktop.DBus.Properties for both
// MPRIS interfaces.
type mprisProperties struct {
	session *Session
}

func (p *mprisProperties) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	all, derr := p.GetAll(iface)
	if derr != nil {
		return dbus.Variant{}, derr
	}

	value, ok := all[property]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(
			errors.New("unknown property " + iface + "." + property))
	}

	return value, nil
}

func (p *mprisProperties) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case dbh.MprisRootIface:
		return p.session.rootProperties(), nil

	case dbh.MprisPlayerIface:
		return p.session.playerProperties(), nil
	}

	return nil, dbus.MakeFailedError(errors.New("unknown interface " + iface))
}

// Set handles writable player properties. A volume write is reported
// as a user-initiated volume change; everything else is read-only.
func (p *mprisProperties) Set(iface, property string, value dbus.Variant) *dbus.Error {
	if iface != dbh.MprisPlayerIface {
		return dbus.MakeFailedError(errors.New("unknown interface " + iface))
	}

	switch property {
	case "Volume":
		volume, ok := value.Value().(float64)
		if !ok {
			return dbus.MakeFailedError(errors.New("volume must be a double"))
		}

		p.session.setVolume(volume, true)

		return nil

	case "Rate":
		// The application owns the playback rate; a client write is
		// acknowledged but not applied.
		return nil
	}

	return dbus.MakeFailedError(errors.New("read-only property " + property))
}

// rootProperties returns the org.mpris.MediaPlayer2 property map.
func (s *Session) rootProperties() map[string]dbus.Variant {
	identity := "media-session"
	desktopEntry := ""

	s.mu.Lock()
	if s.opts != nil && s.opts.Mpris != nil {
		if s.opts.Mpris.Identity != "" {
			identity = s.opts.Mpris.Identity
		}
		desktopEntry = s.opts.Mpris.DesktopEntry
	}
	s.mu.Unlock()

	return map[string]dbus.Variant{
		"Identity":            dbus.MakeVariant(identity),
		"DesktopEntry":        dbus.MakeVariant(desktopEntry),
		"CanRaise":            dbus.MakeVariant(false),
		"CanQuit":             dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(false),
		"SupportedUriSchemes": dbus.MakeVariant([]string{}),
		"SupportedMimeTypes":  dbus.MakeVariant([]string{}),
	}
}

// playerProperties returns the org.mpris.MediaPlayer2.Player property map.
func (s *Session) playerProperties() map[string]dbus.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()

	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(playbackStatus(s.info.State)),
		"Rate":           dbus.MakeVariant(effectiveRate(s.info)),
		"MinimumRate":    dbus.MakeVariant(0.0),
		"MaximumRate":    dbus.MakeVariant(10.0),
		"Volume":         dbus.MakeVariant(s.volume),
		"Metadata":       dbus.MakeVariant(metadataMap(s.fields)),
	}

	position := int64(0)
	if s.info.Position != nil {
		position = secondsToMicroseconds(*s.info.Position)
	}
	props["Position"] = dbus.MakeVariant(position)

	caps := []mediacontrol.Command(nil)
	if s.opts != nil {
		caps = s.opts.Capabilities
	}
	for name, can := range capabilityFlags(caps) {
		props[name] = dbus.MakeVariant(can)
	}

	return props
}

// currentState returns the state the surface currently presents.
func (s *Session) currentState() mediacontrol.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.info.State
}

// setVolume records a new volume and publishes the change event.
func (s *Session) setVolume(volume float64, userInitiated bool) {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	mediacontrol.VolumeEvents().Publish(mediacontrol.VolumeChange{
		Volume:        volume,
		UserInitiated: userInitiated,
	})
}
