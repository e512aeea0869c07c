package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying-org/media-session/api/config"
	"github.com/nowplaying-org/media-session/api/errorkinds"
	"github.com/nowplaying-org/media-session/api/mediacontrol"
)

// fakeAdapter records every call that crosses the adapter boundary and
// can be forced to fail.
type fakeAdapter struct {
	mu sync.Mutex

	initCalls     int
	shutdownCalls int
	resetCalls    int
	lastOptions   *config.Options
	lastFields    map[string]any
	lastInfo      *mediacontrol.PlaybackInfo

	failWith error

	enabled  bool
	metadata *mediacontrol.Metadata
	state    mediacontrol.PlaybackState
}

func (f *fakeAdapter) Initialize(_ context.Context, opts *config.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.initCalls++
	f.lastOptions = opts
	f.enabled = true

	return nil
}

func (f *fakeAdapter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.shutdownCalls++
	f.enabled = false

	return nil
}

func (f *fakeAdapter) SetMetadata(_ context.Context, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.lastFields = fields
	f.metadata = mediacontrol.FromFields(fields)

	return nil
}

func (f *fakeAdapter) SetPlaybackState(_ context.Context, info mediacontrol.PlaybackInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.lastInfo = &info
	f.state = info.State

	return nil
}

func (f *fakeAdapter) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.resetCalls++
	f.metadata = nil
	f.state = mediacontrol.StateNone

	return nil
}

func (f *fakeAdapter) Enabled(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return false, f.failWith
	}

	return f.enabled, nil
}

func (f *fakeAdapter) Metadata(context.Context) (*mediacontrol.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}

	return f.metadata, nil
}

func (f *fakeAdapter) State(context.Context) (mediacontrol.PlaybackState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return mediacontrol.StateNone, f.failWith
	}

	return f.state, nil
}

func (f *fakeAdapter) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failWith = err
}

func (f *fakeAdapter) fields() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastFields
}

func (f *fakeAdapter) info() *mediacontrol.PlaybackInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastInfo
}

func (f *fakeAdapter) calls() (initCalls, shutdownCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.initCalls, f.shutdownCalls
}

func newEnabled(t *testing.T, adapter *fakeAdapter, opts *config.Options) *Session {
	t.Helper()

	s := New(adapter)
	require.NoError(t, s.Enable(context.Background(), opts))
	t.Cleanup(func() {
		_ = s.Disable(context.Background())
	})

	return s
}

func TestEnableValidatesOptions(t *testing.T) {
	adapter := &fakeAdapter{}
	s := New(adapter)

	err := s.Enable(context.Background(), &config.Options{
		Capabilities: []mediacontrol.Command{"warp"},
	})

	require.Error(t, err)
	assert.True(t, errorkinds.IsValidation(err))

	initCalls, _ := adapter.calls()
	assert.Zero(t, initCalls, "a failed validation must not reach the adapter")
}

func TestEnableWrapsNativeFailure(t *testing.T) {
	adapter := &fakeAdapter{}
	adapter.fail(errors.New("surface unavailable"))
	s := New(adapter)

	err := s.Enable(context.Background(), nil)

	var nerr *errorkinds.NativeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, errorkinds.CodeEnableFailed, nerr.Code)
	require.ErrorContains(t, nerr.Cause, "surface unavailable")
}

func TestEnableDefaultsOptions(t *testing.T) {
	adapter := &fakeAdapter{}
	newEnabled(t, adapter, nil)

	require.NotNil(t, adapter.lastOptions)
	assert.True(t, adapter.lastOptions.Has(mediacontrol.CommandPlay))
}

func TestReenableReinitializes(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	opts := &config.Options{Capabilities: []mediacontrol.Command{mediacontrol.CommandPause}}
	require.NoError(t, s.Enable(context.Background(), opts))

	initCalls, _ := adapter.calls()
	assert.Equal(t, 2, initCalls)
	assert.Equal(t, opts, adapter.lastOptions)
}

func TestDisableReturnsRawError(t *testing.T) {
	adapter := &fakeAdapter{}
	s := New(adapter)
	require.NoError(t, s.Enable(context.Background(), nil))

	native := errors.New("teardown step failed")
	adapter.fail(native)

	err := s.Disable(context.Background())
	assert.ErrorIs(t, err, native, "disable failures propagate unwrapped")

	var nerr *errorkinds.NativeError
	assert.False(t, errors.As(err, &nerr))
}

func TestUpdateMetadataRejectsInvalid(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	err := s.UpdateMetadata(context.Background(), mediacontrol.Metadata{
		Duration: mediacontrol.Number(-1),
	})

	require.Error(t, err)
	assert.True(t, errorkinds.IsValidation(err))
	assert.Nil(t, adapter.fields(), "the native layer must never be invoked")
}

func TestUpdateMetadataStripsUnsetFields(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	err := s.UpdateMetadata(context.Background(), mediacontrol.Metadata{
		Title: mediacontrol.String("x"),
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "x"}, adapter.fields())
}

func TestUpdateMetadataWrapsNativeFailure(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)
	adapter.fail(errors.New("marshal refused"))

	err := s.UpdateMetadata(context.Background(), mediacontrol.Metadata{
		Title: mediacontrol.String("x"),
	})

	var nerr *errorkinds.NativeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, errorkinds.CodeUpdateMetadataFailed, nerr.Code)
}

func TestUpdatePlaybackStateBounds(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)
	ctx := context.Background()

	require.NoError(t, s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying, WithRate(0)))
	require.NoError(t, s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying, WithRate(10)))

	err := s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying, WithRate(10.0001))
	require.Error(t, err)
	assert.True(t, errorkinds.IsValidation(err))

	err = s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying, WithRate(-0.1))
	require.Error(t, err)
	assert.True(t, errorkinds.IsValidation(err))

	err = s.UpdatePlaybackState(ctx, mediacontrol.PlaybackState(42))
	require.Error(t, err)
	assert.True(t, errorkinds.IsValidation(err))
}

func TestUpdatePlaybackStateOmittedRateNotSubstituted(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	require.NoError(t, s.UpdatePlaybackState(context.Background(),
		mediacontrol.StatePlaying, WithPosition(12.5)))

	info := adapter.info()
	require.NotNil(t, info)
	assert.Equal(t, mediacontrol.StatePlaying, info.State)
	require.NotNil(t, info.Position)
	assert.Equal(t, 12.5, *info.Position)
	assert.Nil(t, info.Rate, "rate defaulting is the adapter's responsibility")
}

func TestReadAccessorsDegrade(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)
	ctx := context.Background()

	require.NoError(t, s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying))
	require.NoError(t, s.UpdateMetadata(ctx, mediacontrol.Metadata{
		Title: mediacontrol.String("Weird Fishes"),
	}))

	assert.True(t, s.IsEnabled(ctx))
	assert.Equal(t, mediacontrol.StatePlaying, s.CurrentState(ctx))
	require.NotNil(t, s.CurrentMetadata(ctx))

	adapter.fail(errors.New("bridge gone"))

	assert.False(t, s.IsEnabled(ctx))
	assert.Nil(t, s.CurrentMetadata(ctx))
	assert.Equal(t, mediacontrol.StateNone, s.CurrentState(ctx))
}

func TestResetPropagatesUnwrapped(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	require.NoError(t, s.Reset(context.Background()))
	assert.Equal(t, 1, adapter.resetCalls)

	native := errors.New("reset refused")
	adapter.fail(native)
	assert.ErrorIs(t, s.Reset(context.Background()), native)
}

func TestHardwareCommandReachesListener(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, &config.Options{
		Capabilities: []mediacontrol.Command{
			mediacontrol.CommandPlay,
			mediacontrol.CommandPause,
		},
	})
	ctx := context.Background()

	require.NoError(t, s.UpdatePlaybackState(ctx, mediacontrol.StatePlaying))

	var (
		mu     sync.Mutex
		events []mediacontrol.ControlEvent
	)
	remove := s.AddListener(func(ev mediacontrol.ControlEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	defer remove()

	// Simulated hardware pause button.
	mediacontrol.CommandEvents().Publish(mediacontrol.NewControlEvent(mediacontrol.CommandPause))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, mediacontrol.CommandPause, events[0].Command)
	assert.NotZero(t, events[0].Timestamp)
	assert.Nil(t, events[0].Data)
}

func TestVolumeListener(t *testing.T) {
	adapter := &fakeAdapter{}
	s := newEnabled(t, adapter, nil)

	var (
		mu      sync.Mutex
		changes []mediacontrol.VolumeChange
	)
	remove := s.AddVolumeListener(func(change mediacontrol.VolumeChange) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, change)
	})
	defer remove()

	mediacontrol.VolumeEvents().Publish(mediacontrol.VolumeChange{Volume: 0.7, UserInitiated: true})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0.7, changes[0].Volume)
	assert.True(t, changes[0].UserInitiated)
}
