package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying-org/media-session/api/mediacontrol"
)

func TestRegistryUnsubscribeByIdentity(t *testing.T) {
	reg := newRegistry[int]()

	var first, second []int
	removeFirst := reg.add(func(v int) { first = append(first, v) })
	removeSecond := reg.add(func(v int) { second = append(second, v) })

	reg.dispatch(zerolog.Nop(), 1)
	removeFirst()
	reg.dispatch(zerolog.Nop(), 2)

	assert.Equal(t, []int{1}, first, "an unsubscribed listener receives no further events")
	assert.Equal(t, []int{1, 2}, second, "other listeners keep receiving events")

	removeSecond()
	reg.dispatch(zerolog.Nop(), 3)
	assert.Equal(t, []int{1, 2}, second)
}

func TestRegistryDuplicateRegistrationsIndependent(t *testing.T) {
	reg := newRegistry[int]()

	count := 0
	fn := func(int) { count++ }

	removeFirst := reg.add(fn)
	removeSecond := reg.add(fn)

	reg.dispatch(zerolog.Nop(), 1)
	assert.Equal(t, 2, count)

	removeFirst()
	reg.dispatch(zerolog.Nop(), 2)
	assert.Equal(t, 3, count, "removing one registration leaves the other")

	removeSecond()
	reg.dispatch(zerolog.Nop(), 3)
	assert.Equal(t, 3, count)
}

func TestRegistryUnsubscribeIdempotent(t *testing.T) {
	reg := newRegistry[int]()

	calls := 0
	remove := reg.add(func(int) { calls++ })
	reg.add(func(int) {})

	remove()
	remove()

	assert.Equal(t, 1, reg.size())
	reg.dispatch(zerolog.Nop(), 1)
	assert.Zero(t, calls)
}

func TestRegistryDispatchOrder(t *testing.T) {
	reg := newRegistry[int]()

	var order []string
	reg.add(func(int) { order = append(order, "a") })
	reg.add(func(int) { order = append(order, "b") })
	reg.add(func(int) { order = append(order, "c") })

	reg.dispatch(zerolog.Nop(), 1)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRegistryPanicContained(t *testing.T) {
	reg := newRegistry[int]()

	var after []int
	reg.add(func(int) { panic("listener bug") })
	reg.add(func(v int) { after = append(after, v) })

	require.NotPanics(t, func() {
		reg.dispatch(zerolog.Nop(), 7)
	})

	assert.Equal(t, []int{7}, after, "a panicking listener does not stop the rest")
}

func TestRegistryRemovalDuringDispatch(t *testing.T) {
	reg := newRegistry[int]()

	var remove func()
	var got []string

	reg.add(func(int) {
		got = append(got, "first")
		remove()
	})
	remove = reg.add(func(int) { got = append(got, "second") })
	reg.add(func(int) { got = append(got, "third") })

	reg.dispatch(zerolog.Nop(), 1)

	// The snapshot taken at dispatch time still includes the removed
	// listener; unrelated listeners are neither skipped nor repeated.
	assert.Equal(t, []string{"first", "second", "third"}, got)

	got = nil
	reg.dispatch(zerolog.Nop(), 2)
	assert.Equal(t, []string{"first", "third"}, got)
}

func TestRemoveAllListenersClearsBothRegistries(t *testing.T) {
	s := New(&fakeAdapter{})

	commandCalls := 0
	volumeCalls := 0
	s.AddListener(func(mediacontrol.ControlEvent) { commandCalls++ })
	s.AddVolumeListener(func(mediacontrol.VolumeChange) { volumeCalls++ })

	s.RemoveAllListeners()

	s.commands.dispatch(zerolog.Nop(), mediacontrol.NewControlEvent(mediacontrol.CommandPlay))
	s.volume.dispatch(zerolog.Nop(), mediacontrol.VolumeChange{Volume: 0.5})

	assert.Zero(t, commandCalls)
	assert.Zero(t, volumeCalls)

	// A listener registered afterwards receives events normally.
	s.AddListener(func(mediacontrol.ControlEvent) { commandCalls++ })
	s.commands.dispatch(zerolog.Nop(), mediacontrol.NewControlEvent(mediacontrol.CommandPlay))
	assert.Equal(t, 1, commandCalls)
}
