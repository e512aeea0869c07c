//go:build !linux

// Package shim implements the platform adapter for systems where the
// native now-playing surface is owned by a helper daemon. The adapter
// drives the daemon over line-delimited JSON on a unix socket and
// decodes the events it pushes back.
package shim

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path"
	"sync"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/nowplaying-org/media-session/api/config"
	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/helpers/artwork"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
	"github.com/nowplaying-org/media-session/shim/internal/commands"
	"github.com/nowplaying-org/media-session/shim/internal/events"
	"github.com/nowplaying-org/media-session/shim/internal/serde"
)

// ShimSession describes a connected session with a running shim
// helper daemon.
//
//revive:disable
type ShimSession struct {
	log zerolog.Logger
	art *artwork.Resolver

	conn net.Conn

	sessionClosed atomic.Bool

	cancel context.CancelFunc

	id         *xsync.Counter
	requestMap *xsync.MapOf[int64, chan commands.CommandResponse]

	sync.Mutex
}

//revive:enable

const socketName = "nowplaying-shim.sock"

// NewSession returns a new shim adapter session.
func NewSession(log zerolog.Logger) *ShimSession {
	s := &ShimSession{
		log: log,
		art: artwork.NewResolver(log),
	}
	s.sessionClosed.Store(true)

	return s
}

// Initialize connects to the helper daemon and brings its now-playing
// surface up for the declared capability set. Initializing an already
// connected session re-sends the enable command, which makes the
// daemon rebuild the surface with the new options.
func (s *ShimSession) Initialize(ctx context.Context, opts *config.Options) error {
	if s.sessionClosed.Load() {
		socketPath := ""
		if opts.Shim != nil {
			socketPath = opts.Shim.SocketPath
		}

		if socketPath == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				return fault.Wrap(err,
					fctx.With(ctx, "error_at", "socket-dir"),
					ftag.With(ftag.Internal),
					fmsg.With("Cannot find socket directory"),
				)
			}

			socketPath = path.Join(dir, "nowplaying-shim", socketName)
		}

		listenerCtx := s.reset(false)

		if err := s.startListener(listenerCtx, socketPath); err != nil {
			s.reset(true)

			return fault.Wrap(errors.New(err.Error()),
				fctx.With(ctx, "error_at", "listener-shim"),
				ftag.With(ftag.Internal),
				fmsg.With("Cannot connect to the shim daemon socket"),
			)
		}

		if _, err := commands.Handshake(uuid.NewString()).ExecuteWith(s.executor); err != nil {
			s.reset(true)

			return fault.Wrap(err,
				fctx.With(ctx, "error_at", "shim-handshake"),
				ftag.With(ftag.Internal),
				fmsg.With("Shim daemon rejected the handshake"),
			)
		}
	}

	optionsJson, err := serde.MarshalJson(optionsPayload(opts))
	if err != nil {
		return err
	}

	if _, err := commands.EnableControls(string(optionsJson)).ExecuteWith(s.executor); err != nil {
		return fault.Wrap(err,
			fctx.With(ctx, "error_at", "shim-enable"),
			ftag.With(ftag.Internal),
			fmsg.With("Cannot enable the daemon's now-playing surface"),
		)
	}

	return nil
}

// Shutdown tears the daemon's surface down and closes the socket.
func (s *ShimSession) Shutdown(context.Context) error {
	if s.sessionClosed.Load() {
		return nil
	}

	_, err := commands.DisableControls().ExecuteWith(s.executor)

	s.reset(true)

	return err
}

// SetMetadata reflects the given metadata fields. The artwork
// descriptor is resolved off this path and attached when the bytes
// arrive, unless a newer metadata update supersedes it first.
func (s *ShimSession) SetMetadata(ctx context.Context, fields map[string]any) error {
	if s.sessionClosed.Load() {
		return errorkinds.ErrSessionNotEnabled
	}

	generation := s.art.NextGeneration()

	wire := make(map[string]any, len(fields))
	for key, value := range fields {
		if key == "artwork" {
			continue
		}
		wire[key] = value
	}

	metadataJson, err := serde.MarshalJson(wire)
	if err != nil {
		return err
	}

	if _, err := commands.SetMetadata(string(metadataJson)).ExecuteWith(s.executor); err != nil {
		return err
	}

	if art, ok := fields["artwork"].(map[string]any); ok {
		if uri, ok := art["uri"].(string); ok {
			s.art.Resolve(ctx, generation, uri, func(data []byte) {
				if _, err := commands.AttachArtwork(uri, data).ExecuteWith(s.executor); err != nil {
					mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, "shim-artwork"))
				}
			})
		}
	}

	return nil
}

// SetPlaybackState reflects the given playback state. The rate is
// forwarded only when provided; the daemon applies its own
// presentation default otherwise.
func (s *ShimSession) SetPlaybackState(_ context.Context, info mediacontrol.PlaybackInfo) error {
	if s.sessionClosed.Load() {
		return errorkinds.ErrSessionNotEnabled
	}

	stateJson, err := serde.MarshalJson(info)
	if err != nil {
		return err
	}

	_, err = commands.SetPlaybackState(string(stateJson)).ExecuteWith(s.executor)

	return err
}

// Reset clears the daemon's surface back to its defaults.
func (s *ShimSession) Reset(context.Context) error {
	if s.sessionClosed.Load() {
		return errorkinds.ErrSessionNotEnabled
	}

	_, err := commands.ResetControls().ExecuteWith(s.executor)

	return err
}

// Enabled reports whether the daemon's surface is live.
func (s *ShimSession) Enabled(context.Context) (bool, error) {
	if s.sessionClosed.Load() {
		return false, nil
	}

	return commands.IsEnabled().ExecuteWith(s.executor)
}

// Metadata returns the daemon's current metadata snapshot.
func (s *ShimSession) Metadata(context.Context) (*mediacontrol.Metadata, error) {
	if s.sessionClosed.Load() {
		return nil, errorkinds.ErrSessionNotEnabled
	}

	fields, err := commands.CurrentMetadata().ExecuteWith(s.executor)
	if err != nil {
		return nil, err
	}

	return mediacontrol.FromFields(fields), nil
}

// State returns the daemon's current playback state.
func (s *ShimSession) State(context.Context) (mediacontrol.PlaybackState, error) {
	if s.sessionClosed.Load() {
		return mediacontrol.StateNone, errorkinds.ErrSessionNotEnabled
	}

	return commands.CurrentState().ExecuteWith(s.executor)
}

// optionsPayload converts enable options into the daemon's wire shape.
func optionsPayload(opts *config.Options) map[string]any {
	capabilities := make([]string, 0, len(opts.Capabilities))
	for _, cmd := range opts.Capabilities {
		capabilities = append(capabilities, cmd.String())
	}

	payload := map[string]any{
		"capabilities": capabilities,
		"skipInterval": opts.SkipInterval(),
	}

	if n := opts.Notification; n != nil {
		notification := map[string]any{
			"showWhenClosed": n.ShowWhenClosed,
		}
		if n.Icon != "" {
			notification["icon"] = n.Icon
		}
		if n.LargeIcon != "" {
			notification["largeIcon"] = n.LargeIcon
		}
		if n.Color != "" {
			notification["color"] = n.Color
		}

		payload["notification"] = notification
	}

	return payload
}

// startListener starts the socket and the listener.
func (s *ShimSession) startListener(ctx context.Context, socketPath string) error {
	socket, err := net.Dial("unix", socketPath)
	if err != nil {
		return err
	}

	s.conn = socket
	go s.listen(ctx)

	return nil
}

// listen listens to the socket for any incoming replies and events.
func (s *ShimSession) listen(ctx context.Context) {
	sendData := func(c chan commands.CommandResponse, m commands.CommandResponse) {
		select {
		case <-ctx.Done():
			close(c)
		case c <- m:
			close(c)
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		default:
		}

		if s.sessionClosed.Load() {
			return
		}

		scanner := bufio.NewScanner(s.conn)
		scanner.Split(bufio.ScanLines)

		for scanner.Scan() {
			var response struct {
				commands.CommandResponse
				events.ServerEvent
			}

			if err := scanner.Err(); err != nil {
				s.handleListenerError(err, true)
				return
			}

			if err := serde.UnmarshalJson(scanner.Bytes(), &response); err != nil {
				s.handleListenerError(err, false)
			}

			if response.EventId > 0 {
				go s.handleListenerEvent(response.ServerEvent)
				continue
			}

			replyChan, ok := s.requestMap.LoadAndDelete(response.RequestId)
			if ok {
				sendData(replyChan, response.CommandResponse)
			}
		}
	}
}

// handleListenerEvent handles an event that was pushed by the daemon.
func (s *ShimSession) handleListenerEvent(ev events.ServerEvent) {
	switch ev.EventId {
	case mediacontrol.EventError:
		errorEvent, err := events.UnmarshalErrorEvent(ev)
		if err != nil {
			mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, "shim-listener"))
			return
		}

		mediacontrol.ErrorEvents().Publish(errorEvent)

	case mediacontrol.EventCommand:
		commandEvent, err := events.UnmarshalControlEvent(ev)
		if err != nil {
			mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, "shim-listener"))
			return
		}

		mediacontrol.CommandEvents().Publish(commandEvent)

	case mediacontrol.EventVolume:
		volumeEvent, err := events.UnmarshalVolumeEvent(ev)
		if err != nil {
			mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, "shim-listener"))
			return
		}

		mediacontrol.VolumeEvents().Publish(volumeEvent)
	}
}

// handleListenerError handles any errors that occurred while listening
// on the socket. If 'stop' is set, the connection is unrecoverable and
// the session is torn down.
func (s *ShimSession) handleListenerError(err error, stop bool) {
	mediacontrol.ErrorEvents().Publish(mediacontrol.ErrorEvent(err, "shim-listener"))
	if stop {
		s.reset(true)
	}
}

// executor forms a request using the provided parameters, generates a
// unique request ID, and sends the request to the daemon. Any reply
// will be routed back by the listener.
func (s *ShimSession) executor(params []string) (chan commands.CommandResponse, error) {
	if s.sessionClosed.Load() {
		return nil, errorkinds.ErrSessionNotExist
	}

	s.Lock()
	defer s.Unlock()

	s.id.Inc()
	replyChan := make(chan commands.CommandResponse, 1)
	s.requestMap.Store(s.id.Value(), replyChan)

	command := map[string]any{
		"command":    params,
		"request_id": s.id.Value(),
	}

	commandBytes, err := serde.MarshalJson(command)
	if err != nil {
		return nil, err
	}

	if _, err = s.conn.Write(commandBytes); err != nil {
		return nil, err
	}
	if _, err = s.conn.Write([]byte("\n")); err != nil {
		return nil, err
	}

	return replyChan, nil
}

// reset resets the state of the session. If 'isClosed' is true, the
// socket connection is closed; otherwise all session internals are
// initialized for a new connection.
func (s *ShimSession) reset(isClosed bool) context.Context {
	s.Lock()
	defer s.Unlock()

	s.sessionClosed.Store(isClosed)
	if isClosed {
		s.cleanup()

		return context.Background()
	}

	s.id = xsync.NewCounter()
	s.requestMap = xsync.NewMapOf[int64, chan commands.CommandResponse]()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	return ctx
}

// cleanup is called by reset() to close the listener and the
// connection when the session is stopped.
func (s *ShimSession) cleanup() {
	if s.cancel != nil {
		s.cancel()
	}

	if s.conn != nil {
		s.conn.Close()
	}
}
