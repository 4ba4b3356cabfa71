package main

import (
	"errors"
	"fmt"
	"image/color"
	"testing"
	"time"

	"deedles.dev/paber/internal/config"
	"deedles.dev/paber/internal/paint"
	"deedles.dev/paber/internal/wallpaper"
	"deedles.dev/paber/shm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in  string
		out color.Color
		err bool
	}{
		{in: "#336699", out: color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xFF}},
		{in: "33669980", out: color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0x80}},
		{in: "Navy", out: color.RGBA{R: 0x00, G: 0x00, B: 0x80, A: 0xFF}},
		{in: "#12345", err: true},
		{in: "#gggggg", err: true},
		{in: "", err: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			c, err := parseColor(test.in)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.out, c)
		})
	}
}

func parse(t *testing.T, args ...string) *flags {
	t.Helper()

	var f flags
	cmd := &cobra.Command{Use: "paber"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return &f
}

func TestMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mode mode
		err  bool
	}{
		{"None", nil, mode{}, true},
		{"Plain", []string{"--plain"}, mode{kind: modePlain, arg: plainDefault}, false},
		{"PlainColor", []string{"--plain=#000000"}, mode{kind: modePlain, arg: "#000000"}, false},
		{"Image", []string{"--image", "a.png"}, mode{kind: modeImage, arg: "a.png"}, false},
		{"Cycle", []string{"--cycle", "pics"}, mode{kind: modeCycle, arg: "pics"}, false},
		{"Generated", []string{"--generated", "a lake"}, mode{kind: modeGenerated, arg: "a lake"}, false},
		{"Precedence", []string{"--generated", "a lake", "--cycle", "pics", "--image", "a.png"}, mode{kind: modeImage, arg: "a.png"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := parse(t, test.args...).mode()
			if test.err {
				assert.ErrorIs(t, err, errNoMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.mode, m)
		})
	}
}

func TestApply(t *testing.T) {
	cfg := config.Default()
	cfg.Monitors = []string{"DP-1"}
	parse(t).apply(&cfg)
	assert.Equal(t, config.Default().Interval, cfg.Interval)
	assert.Equal(t, []string{"DP-1"}, cfg.Monitors)
	assert.True(t, cfg.RedrawOnReconfigure)

	f := parse(t, "-m", "0,HDMI-A-1", "-i", "30s", "--scale", "fit", "--redraw=false", "--local", "--log-level", "debug")
	f.apply(&cfg)
	assert.Equal(t, []string{"0", "HDMI-A-1"}, cfg.Monitors)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, paint.Fit.String(), cfg.Scale)
	assert.False(t, cfg.RedrawOnReconfigure)
	assert.Equal(t, config.GeneratorLocal, cfg.Generator)
	assert.Equal(t, "debug", cfg.Env.LogLevel)
}

type fakeDrawer struct {
	err   error
	calls int
}

func (d *fakeDrawer) DrawAll(targets []int, src paint.Source) error {
	d.calls++
	return d.err
}

func TestShow(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "ok"},
		{name: "not configured", err: fmt.Errorf("draw on HDMI-A-1: %w", wallpaper.ErrNotConfigured)},
		{name: "closed", err: errors.Join(nil, fmt.Errorf("draw on DP-2: %w: closed by compositor", wallpaper.ErrNotConfigured))},
		{name: "zero size", err: fmt.Errorf("draw on DP-1: %w: 0x0", shm.ErrInvalidDimensions), fatal: true},
		{name: "no memory", err: errors.Join(errors.New("other"), shm.ErrResourceExhausted), fatal: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := fakeDrawer{err: test.err}
			err := show(&d, []int{0, 1}, paint.Solid{Color: color.White})
			assert.Equal(t, 1, d.calls)
			if test.fatal {
				assert.ErrorIs(t, err, test.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
