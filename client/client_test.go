package wl_test

import (
	"errors"
	"testing"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/internal/wltest"
	"deedles.dev/paber/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func globalByInterface(globals map[uint32]wl.Global, inter string) (wl.Global, bool) {
	for _, g := range globals {
		if g.Interface == inter {
			return g, true
		}
	}
	return wl.Global{}, false
}

func TestGlobals(t *testing.T) {
	_, state := wltest.New(t, wltest.Options{
		Outputs: []wltest.Output{{Name: "DP-1", Width: 10, Height: 10}},
	})

	registry := state.Display().GetRegistry()
	assert.Same(t, registry, state.Display().GetRegistry())
	require.NoError(t, state.RoundTrip())

	globals := registry.Globals()
	compositor, ok := globalByInterface(globals, wl.CompositorInterface)
	require.True(t, ok)
	assert.EqualValues(t, 6, compositor.Version)

	_, ok = globalByInterface(globals, wl.OutputInterface)
	assert.True(t, ok)

	delete(globals, compositor.Name)
	_, ok = globalByInterface(registry.Globals(), wl.CompositorInterface)
	assert.True(t, ok, "Globals must return a copy")
}

func TestHandler(t *testing.T) {
	_, state := wltest.New(t, wltest.Options{})

	var formats []wl.ShmFormat
	state.Handler = func(obj wire.Object, ev any) {
		if ev, ok := ev.(wl.ShmFormatEvent); ok {
			assert.Equal(t, wl.ShmInterface, obj.Interface())
			formats = append(formats, ev.Format)
		}
	}

	registry := state.Display().GetRegistry()
	require.NoError(t, state.RoundTrip())
	g, ok := globalByInterface(registry.Globals(), wl.ShmInterface)
	require.True(t, ok)

	shm := wl.BindShm(state, g.Name, 1)
	require.NoError(t, state.RoundTrip())

	assert.Equal(t, []wl.ShmFormat{wl.ShmFormatArgb8888, wl.ShmFormatXrgb8888}, formats)
	assert.True(t, shm.Supports(wl.ShmFormatArgb8888))
	assert.False(t, shm.Supports(wl.ShmFormat(0x34325258)))
}

func TestOutput(t *testing.T) {
	_, state := wltest.New(t, wltest.Options{
		Outputs: []wltest.Output{{Name: "eDP-1", Description: "Built-in", Width: 1920, Height: 1080, Scale: 2}},
	})

	registry := state.Display().GetRegistry()
	require.NoError(t, state.RoundTrip())
	g, ok := globalByInterface(registry.Globals(), wl.OutputInterface)
	require.True(t, ok)

	var done int
	state.Handler = func(obj wire.Object, ev any) {
		if _, ok := ev.(wl.OutputDone); ok {
			done++
		}
	}

	output := wl.BindOutput(state, g.Name, 4)
	require.NoError(t, state.RoundTrip())

	assert.Equal(t, 1, done)
	assert.Equal(t, "eDP-1", output.Name)
	assert.Equal(t, "Built-in", output.Description)
	assert.EqualValues(t, 1920, output.Width)
	assert.EqualValues(t, 1080, output.Height)
	assert.EqualValues(t, 2, output.Scale)
	assert.Equal(t, "wltest", output.Model)
}

func TestCallbackDeleted(t *testing.T) {
	_, state := wltest.New(t, wltest.Options{})

	var data uint32
	cb := state.Display().Sync()
	cb.Then(func(v uint32) { data = v })
	require.NoError(t, state.RoundTrip())

	assert.NotZero(t, data)
	assert.True(t, cb.Deleted())
	assert.Nil(t, state.Get(cb.ID()))
}

func TestProtocolError(t *testing.T) {
	_, state := wltest.New(t, wltest.Options{})

	registry := state.Display().GetRegistry()
	require.NoError(t, state.RoundTrip())

	wl.BindCompositor(state, 1000, 1)
	err := state.RoundTrip()

	var perr wl.ProtocolError
	require.True(t, errors.As(err, &perr), "unexpected error: %v", err)
	assert.Equal(t, registry.ID(), perr.ObjectID)
	assert.Equal(t, wl.RegistryInterface, perr.Interface)
}

func TestShmFormatString(t *testing.T) {
	assert.Equal(t, "argb8888", wl.ShmFormatArgb8888.String())
	assert.Equal(t, "XR24", wl.ShmFormat(0x34325258).String())
}
