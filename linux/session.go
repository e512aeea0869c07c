//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/mafik/pulseaudio"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/nowplaying-org/media-session/api/config"
	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
	dbh "github.com/nowplaying-org/media-session/linux/internal/dbushelper"
)

// Session reflects the logical media session onto the MPRIS surface of
// the session bus, and reports system volume changes from PulseAudio.
type Session struct {
	log zerolog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	busName string
	opts    *config.Options

	pulse     *pulseaudio.Client
	pulseDone chan struct{}

	fields map[string]any
	info   mediacontrol.PlaybackInfo
	volume float64

	enabled bool
}

// NewSession returns a new MPRIS adapter session.
func NewSession(log zerolog.Logger) *Session {
	return &Session{log: log, volume: 1.0}
}

// Initialize claims a bus name on the session bus, exports the MPRIS
// interfaces and starts watching the system volume. Initializing an
// already initialized session tears the surface down first and
// rebuilds it with the new options.
func (s *Session) Initialize(_ context.Context, opts *config.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		s.teardownLocked()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}

	if err := s.export(conn); err != nil {
		conn.Close()
		return err
	}

	identity := "media-session"
	if opts.Mpris != nil && opts.Mpris.Identity != "" {
		identity = opts.Mpris.Identity
	}

	busName := dbh.MprisBusNamePrefix + identity + ".instance_" + xid.New().String()
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("bus name %q is already taken", busName)
	}

	s.conn = conn
	s.busName = busName
	s.opts = opts
	s.fields = nil
	s.info = mediacontrol.PlaybackInfo{}
	s.enabled = true

	if err := s.startVolumeWatch(); err != nil {
		// Volume reporting is best effort; the surface stays up.
		s.log.Warn().Err(err).Msg("pulseaudio volume watch unavailable")
	}

	s.log.Info().Str("bus_name", busName).Msg("mpris surface initialized")

	return nil
}

// Shutdown releases the bus name and closes the bus and PulseAudio
// connections.
func (s *Session) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}

	s.teardownLocked()

	return nil
}

// SetMetadata reflects the given metadata fields on the MPRIS surface.
func (s *Session) SetMetadata(_ context.Context, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return errorkinds.ErrSessionNotEnabled
	}

	s.fields = fields

	return s.emitPlayerProperties(map[string]dbus.Variant{
		"Metadata": dbus.MakeVariant(metadataMap(fields)),
	})
}

// SetPlaybackState reflects the given playback state. A missing rate
// is substituted with the platform default.
func (s *Session) SetPlaybackState(_ context.Context, info mediacontrol.PlaybackInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return errorkinds.ErrSessionNotEnabled
	}

	s.info = info

	changed := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(playbackStatus(info.State)),
		"Rate":           dbus.MakeVariant(effectiveRate(info)),
	}
	if err := s.emitPlayerProperties(changed); err != nil {
		return err
	}

	if info.Position != nil {
		return s.conn.Emit(dbh.MprisObjectPath, dbh.MprisPlayerIface+".Seeked",
			secondsToMicroseconds(*info.Position))
	}

	return nil
}

// Reset clears the surface back to its defaults.
func (s *Session) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return errorkinds.ErrSessionNotEnabled
	}

	s.fields = nil
	s.info = mediacontrol.PlaybackInfo{}

	return s.emitPlayerProperties(map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(playbackStatus(mediacontrol.StateNone)),
		"Rate":           dbus.MakeVariant(0.0),
		"Metadata":       dbus.MakeVariant(metadataMap(nil)),
	})
}

// Enabled reports whether the MPRIS surface is live.
func (s *Session) Enabled(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled, nil
}

// Metadata returns the current metadata snapshot.
func (s *Session) Metadata(context.Context) (*mediacontrol.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil, errorkinds.ErrSessionNotEnabled
	}

	return mediacontrol.FromFields(s.fields), nil
}

// State returns the current playback state.
func (s *Session) State(context.Context) (mediacontrol.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return mediacontrol.StateNone, errorkinds.ErrSessionNotEnabled
	}

	return s.info.State, nil
}

// export exports the MPRIS interfaces with introspection data.
func (s *Session) export(conn *dbus.Conn) error {
	root := &mprisRoot{session: s}
	player := &mprisPlayer{session: s}
	props := &mprisProperties{session: s}

	exports := []struct {
		object any
		iface  string
	}{
		{root, dbh.MprisRootIface},
		{player, dbh.MprisPlayerIface},
		{props, dbh.DbusPropertiesIface},
	}
	for _, e := range exports {
		if err := conn.Export(e.object, dbh.MprisObjectPath, e.iface); err != nil {
			return fmt.Errorf("export %s: %w", e.iface, err)
		}
	}

	node := &introspect.Node{
		Name: string(dbh.MprisObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: dbh.MprisRootIface, Methods: introspect.Methods(root)},
			{Name: dbh.MprisPlayerIface, Methods: introspect.Methods(player)},
			{Name: dbh.DbusPropertiesIface, Methods: introspect.Methods(props)},
		},
	}

	if err := conn.Export(introspect.NewIntrospectable(node),
		dbh.MprisObjectPath, dbh.DbusIntrospectableIface); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}

	return nil
}

// emitPlayerProperties signals changed player properties to MPRIS
// clients. Callers hold s.mu.
func (s *Session) emitPlayerProperties(changed map[string]dbus.Variant) error {
	if s.conn == nil {
		return errorkinds.ErrSessionNotExist
	}

	return s.conn.Emit(dbh.MprisObjectPath, dbh.DbusSignalPropertiesChanged,
		dbh.MprisPlayerIface, changed, []string{})
}

// teardownLocked releases every platform resource. Callers hold s.mu.
func (s *Session) teardownLocked() {
	if s.pulseDone != nil {
		close(s.pulseDone)
		s.pulseDone = nil
	}
	if s.pulse != nil {
		s.pulse.Close()
		s.pulse = nil
	}

	if s.conn != nil {
		if s.busName != "" {
			if _, err := s.conn.ReleaseName(s.busName); err != nil {
				s.log.Warn().Err(err).Str("bus_name", s.busName).Msg("bus name release failed")
			}
		}
		if err := s.conn.Close(); err != nil && !errors.Is(err, dbus.ErrClosed) {
			s.log.Warn().Err(err).Msg("session bus close failed")
		}
		s.conn = nil
	}

	s.busName = ""
	s.fields = nil
	s.info = mediacontrol.PlaybackInfo{}
	s.enabled = false
}
