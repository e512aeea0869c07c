// Package session implements the logical media-control session that
// the platform adapters mirror onto their now-playing surfaces.
//
// The session is the single process-wide owner of the logical media
// state. Application code mutates it through the validated operations
// below; operating-system actions (hardware buttons, lock-screen taps,
// remote controls) come back as ControlEvents fanned out to registered
// listeners. The session reflects state, it does not decide it:
// applying a command to the actual playback engine is the host
// application's job.
package session

import (
	"context"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/rs/zerolog"

	"github.com/nowplaying-org/media-session/api/config"
	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/helpers/validate"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
)

// Adapter translates the logical session state into platform calls and
// platform actions into events on the command and volume event groups.
//
// "Enabled" implies the platform's now-playing surface is live;
// "disabled" implies it is fully torn down.
type Adapter interface {
	// Initialize brings up the platform surface for the declared
	// capability set. Calling it on an initialized adapter rebuilds
	// the surface with the new options.
	Initialize(ctx context.Context, opts *config.Options) error

	// Shutdown releases every platform resource.
	Shutdown(ctx context.Context) error

	// SetMetadata reflects the given metadata fields. The map never
	// contains unset fields.
	SetMetadata(ctx context.Context, fields map[string]any) error

	// SetPlaybackState reflects the given playback state.
	SetPlaybackState(ctx context.Context, info mediacontrol.PlaybackInfo) error

	// Reset clears metadata and playback state to their defaults.
	Reset(ctx context.Context) error

	// Enabled reports whether the platform surface is live.
	Enabled(ctx context.Context) (bool, error)

	// Metadata returns the platform's current metadata snapshot, or
	// nil when none is set.
	Metadata(ctx context.Context) (*mediacontrol.Metadata, error)

	// State returns the platform's current playback state.
	State(ctx context.Context) (mediacontrol.PlaybackState, error)
}

// Session owns the logical media-control state and fans adapter events
// out to application listeners.
//
// Write operations may be invoked concurrently; the session does not
// serialize them, and last-write-wins applies at the adapter. Callers
// needing strict ordering must serialize themselves.
type Session struct {
	adapter Adapter
	log     zerolog.Logger

	commands *registry[mediacontrol.ControlEvent]
	volume   *registry[mediacontrol.VolumeChange]

	mu         sync.Mutex
	commandSub *mediacontrol.Subscriber[mediacontrol.ControlEvent]
	volumeSub  *mediacontrol.Subscriber[mediacontrol.VolumeChange]
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// New returns a Session backed by the given platform adapter.
func New(adapter Adapter, opts ...Option) *Session {
	s := &Session{
		adapter:  adapter,
		log:      zerolog.Nop(),
		commands: newRegistry[mediacontrol.ControlEvent](),
		volume:   newRegistry[mediacontrol.VolumeChange](),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Enable validates the options, initializes the platform surface and
// starts forwarding adapter events to registered listeners. A nil opts
// enables the default capability set.
//
// Enabling an already enabled session reinitializes the platform
// surface with the new options.
func (s *Session) Enable(ctx context.Context, opts *config.Options) error {
	if opts == nil {
		opts = config.Default()
	}

	if err := validate.Options(opts); err != nil {
		return err
	}

	if err := s.adapter.Initialize(ctx, opts); err != nil {
		return s.wrap(ctx, err, errorkinds.CodeEnableFailed,
			"Cannot initialize the platform media surface", "enable")
	}

	s.startBridges()

	return nil
}

// Disable stops event forwarding and tears the platform surface down.
// The event bridges are unregistered unconditionally; a native
// teardown failure is logged and returned unwrapped so the failing
// teardown step stays visible to the caller.
func (s *Session) Disable(ctx context.Context) error {
	s.stopBridges()

	if err := s.adapter.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("media surface teardown failed")
		return err
	}

	return nil
}

// UpdateMetadata validates the metadata and forwards it to the
// platform surface. Unset fields are stripped before they cross the
// adapter boundary. Artwork resolution never blocks this call; the
// adapter attaches the artwork to the presentation when it resolves.
func (s *Session) UpdateMetadata(ctx context.Context, md mediacontrol.Metadata) error {
	if err := validate.Metadata(&md); err != nil {
		return err
	}

	if err := s.adapter.SetMetadata(ctx, md.Fields()); err != nil {
		return s.wrap(ctx, err, errorkinds.CodeUpdateMetadataFailed,
			"Cannot update the now-playing metadata", "update-metadata")
	}

	return nil
}

// StateOption attaches an optional field to a playback-state update.
type StateOption func(*mediacontrol.PlaybackInfo)

// WithPosition sets the playback position, in seconds.
func WithPosition(seconds float64) StateOption {
	return func(info *mediacontrol.PlaybackInfo) {
		info.Position = &seconds
	}
}

// WithRate sets the playback rate.
func WithRate(rate float64) StateOption {
	return func(info *mediacontrol.PlaybackInfo) {
		info.Rate = &rate
	}
}

// UpdatePlaybackState validates and forwards a playback-state update.
// When no rate is given, none is substituted here: the idle rate is a
// platform presentation concern and is defaulted by the adapter.
func (s *Session) UpdatePlaybackState(ctx context.Context, state mediacontrol.PlaybackState, opts ...StateOption) error {
	info := mediacontrol.PlaybackInfo{State: state}
	for _, opt := range opts {
		opt(&info)
	}

	if err := validate.PlaybackState(info.State); err != nil {
		return err
	}
	if info.Position != nil {
		if err := validate.Position(*info.Position); err != nil {
			return err
		}
	}
	if info.Rate != nil {
		if err := validate.Rate(*info.Rate); err != nil {
			return err
		}
	}

	if err := s.adapter.SetPlaybackState(ctx, info); err != nil {
		return s.wrap(ctx, err, errorkinds.CodeUpdateStateFailed,
			"Cannot update the playback state", "update-state")
	}

	return nil
}

// Reset clears metadata and playback state to their defaults. Native
// failures propagate unwrapped.
func (s *Session) Reset(ctx context.Context) error {
	return s.adapter.Reset(ctx)
}

// IsEnabled reports whether the platform surface is live. It never
// fails: an adapter failure degrades to false, so callers polling
// status can always treat "unknown" as "disabled".
func (s *Session) IsEnabled(ctx context.Context) bool {
	enabled, err := s.adapter.Enabled(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("enabled query failed, reporting disabled")
		return false
	}

	return enabled
}

// CurrentMetadata returns the platform's metadata snapshot. It never
// fails: an adapter failure degrades to nil.
func (s *Session) CurrentMetadata(ctx context.Context) *mediacontrol.Metadata {
	md, err := s.adapter.Metadata(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("metadata query failed, reporting none")
		return nil
	}

	return md
}

// CurrentState returns the platform's playback state. It never fails:
// an adapter failure degrades to StateNone.
func (s *Session) CurrentState(ctx context.Context) mediacontrol.PlaybackState {
	state, err := s.adapter.State(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("state query failed, reporting none")
		return mediacontrol.StateNone
	}

	return state
}

// AddListener registers fn for transport command events and returns a
// function that removes exactly this registration. Registering the
// same function twice yields two independent registrations.
func (s *Session) AddListener(fn func(mediacontrol.ControlEvent)) func() {
	return s.commands.add(fn)
}

// AddVolumeListener registers fn for volume change events and returns
// a function that removes exactly this registration.
func (s *Session) AddVolumeListener(fn func(mediacontrol.VolumeChange)) func() {
	return s.volume.add(fn)
}

// RemoveAllListeners clears both listener registries. It does not
// affect the platform surface.
func (s *Session) RemoveAllListeners() {
	s.commands.clear()
	s.volume.clear()
}

// startBridges subscribes to the adapter event groups and pumps them
// into the listener registries. One goroutine per event kind keeps
// dispatch of a given kind single-threaded and ordered.
func (s *Session) startBridges() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commandSub != nil {
		return
	}

	s.commandSub = mediacontrol.CommandEvents().Subscribe()
	s.volumeSub = mediacontrol.VolumeEvents().Subscribe()

	go func(sub *mediacontrol.Subscriber[mediacontrol.ControlEvent]) {
		for ev := range sub.Events {
			s.commands.dispatch(s.log, ev)
		}
	}(s.commandSub)

	go func(sub *mediacontrol.Subscriber[mediacontrol.VolumeChange]) {
		for ev := range sub.Events {
			s.volume.dispatch(s.log, ev)
		}
	}(s.volumeSub)
}

// stopBridges unsubscribes both event bridges.
func (s *Session) stopBridges() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commandSub != nil {
		s.commandSub.Unsubscribe()
		s.commandSub = nil
	}
	if s.volumeSub != nil {
		s.volumeSub.Unsubscribe()
		s.volumeSub = nil
	}
}

// wrap annotates a native write failure and tags it with its stable
// operation code. Validation errors pass through untouched.
func (s *Session) wrap(ctx context.Context, err error, code, message, operation string) error {
	if errorkinds.IsValidation(err) {
		return err
	}

	return &errorkinds.NativeError{
		Code: code,
		Cause: fault.Wrap(err,
			fctx.With(ctx, "operation", operation),
			ftag.With(ftag.Internal),
			fmsg.With(message),
		),
	}
}
