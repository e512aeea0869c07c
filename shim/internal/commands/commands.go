//go:build !linux

// Package commands builds and executes requests against the shim
// helper daemon.
package commands

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ugorji/go/codec"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
	"github.com/nowplaying-org/media-session/shim/internal/serde"
)

// defaultTimeoutSec bounds the wait for a command reply.
const defaultTimeoutSec = 10

// CommandResponse describes a reply to a single request.
type CommandResponse struct {
	RequestId int64     `json:"request_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	Data      codec.Raw `json:"data,omitempty"`
}

// Executor sends a raw command to the daemon and returns the channel
// its reply will arrive on.
type Executor func(params []string) (chan CommandResponse, error)

// Command describes a request whose reply decodes to T.
type Command[T any] struct {
	params []string
}

// ExecuteWith sends the command through the executor and waits for its
// reply. An optional timeout overrides the default, in seconds.
func (c Command[T]) ExecuteWith(executor Executor, timeout ...int) (T, error) {
	var result T

	replyChan, err := executor(c.params)
	if err != nil {
		return result, err
	}

	waitSec := defaultTimeoutSec
	if len(timeout) > 0 && timeout[0] > 0 {
		waitSec = timeout[0]
	}

	timer := time.NewTimer(time.Duration(waitSec) * time.Second)
	defer timer.Stop()

	select {
	case <-timer.C:
		return result, fmt.Errorf("no reply to %q within %ds", c.params[0], waitSec)

	case response, ok := <-replyChan:
		if !ok {
			return result, errors.New("reply channel closed")
		}

		if response.Error != "" {
			return result, errors.New(response.Error)
		}

		if len(response.Data) > 0 {
			if err := serde.UnmarshalJson(response.Data, &result); err != nil {
				return result, fmt.Errorf("decode %q reply: %w", c.params[0], err)
			}
		}

		return result, nil
	}
}

// Handshake identifies the client to the daemon.
func Handshake(clientId string) Command[struct {
	ServerVersion string `json:"server_version,omitempty"`
}] {
	return Command[struct {
		ServerVersion string `json:"server_version,omitempty"`
	}]{params: []string{"handshake", ClientIdOption.String(), clientId}}
}

// EnableControls brings up the daemon's now-playing surface with the
// given options payload.
func EnableControls(optionsJson string) Command[bool] {
	return Command[bool]{params: []string{"enable", OptionsOption.String(), optionsJson}}
}

// DisableControls tears the daemon's now-playing surface down.
func DisableControls() Command[bool] {
	return Command[bool]{params: []string{"disable"}}
}

// SetMetadata reflects the given metadata payload.
func SetMetadata(metadataJson string) Command[bool] {
	return Command[bool]{params: []string{"metadata", MetadataOption.String(), metadataJson}}
}

// AttachArtwork attaches resolved artwork bytes to the current
// metadata presentation.
func AttachArtwork(uri string, data []byte) Command[bool] {
	return Command[bool]{params: []string{
		"artwork",
		ArtworkUriOption.String(), uri,
		ArtworkDataOption.String(), base64.StdEncoding.EncodeToString(data),
	}}
}

// SetPlaybackState reflects the given playback-state payload.
func SetPlaybackState(stateJson string) Command[bool] {
	return Command[bool]{params: []string{"state", StateOption.String(), stateJson}}
}

// ResetControls clears metadata and playback state to defaults.
func ResetControls() Command[bool] {
	return Command[bool]{params: []string{"reset"}}
}

// IsEnabled queries whether the surface is live.
func IsEnabled() Command[bool] {
	return Command[bool]{params: []string{"is-enabled"}}
}

// CurrentMetadata queries the current metadata payload.
func CurrentMetadata() Command[map[string]any] {
	return Command[map[string]any]{params: []string{"current-metadata"}}
}

// CurrentState queries the current playback state.
func CurrentState() Command[mediacontrol.PlaybackState] {
	return Command[mediacontrol.PlaybackState]{params: []string{"current-state"}}
}

// Params returns the raw command parameters.
func (c Command[T]) Params() []string {
	return c.params
}
