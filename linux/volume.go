//go:build linux

package linux

import (
	"github.com/mafik/pulseaudio"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
	dbh "github.com/nowplaying-org/media-session/linux/internal/dbushelper"
)

// startVolumeWatch connects to PulseAudio and starts forwarding sink
// volume updates as volume change events. Callers hold s.mu.
func (s *Session) startVolumeWatch() error {
	client, err := pulseaudio.NewClient()
	if err != nil {
		return err
	}

	updates, err := client.Updates()
	if err != nil {
		client.Close()
		return err
	}

	done := make(chan struct{})
	s.pulse = client
	s.pulseDone = done

	go s.watchVolume(client, updates, done)

	return nil
}

// watchVolume polls the sink volume on every PulseAudio update and
// publishes a change event when it moved. Updates arrive for volume
// keys, Bluetooth absolute-volume commands and mixer applications
// alike, so every change here is treated as user initiated.
func (s *Session) watchVolume(client *pulseaudio.Client, updates <-chan struct{}, done <-chan struct{}) {
	last := -1.0

	for {
		select {
		case <-done:
			return

		case _, ok := <-updates:
			if !ok {
				return
			}

			volume, err := client.Volume()
			if err != nil {
				dbh.PublishError(err, "pulseaudio-volume")
				continue
			}

			v := float64(volume)
			if v == last {
				continue
			}
			last = v

			mediacontrol.VolumeEvents().Publish(mediacontrol.VolumeChange{
				Volume:        v,
				UserInitiated: true,
			})
		}
	}
}
