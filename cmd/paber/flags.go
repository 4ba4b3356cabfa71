package main

import (
	"errors"
	"time"

	"deedles.dev/paber/internal/config"
	"deedles.dev/paber/internal/paint"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// plainDefault is the value of --plain when it is given without a
// color.
const plainDefault = "default"

type flags struct {
	plain     string
	image     string
	generated string
	cycle     string

	monitors []string
	interval time.Duration
	scale    paint.Scale
	local    bool
	redraw   bool
	logLevel string

	changed func(name string) bool
}

func (f *flags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.plain, "plain", "", "show a solid color, given as #RRGGBB, #RRGGBBAA, or a name")
	fs.Lookup("plain").NoOptDefVal = plainDefault
	fs.StringVar(&f.image, "image", "", "show the image at the given path")
	fs.StringVar(&f.generated, "generated", "", "generate an image from the given prompt and show it")
	fs.StringVar(&f.cycle, "cycle", "", "cycle through the images in the given directory")

	fs.StringSliceVarP(&f.monitors, "monitors", "m", nil, "comma-separated output indices or names to draw on (default 0)")
	fs.DurationVarP(&f.interval, "interval", "i", time.Hour, "time between images in cycle mode")
	fs.Var(&f.scale, "scale", "how to fit images to outputs: stretch, fit, or fill")
	fs.BoolVar(&f.local, "local", false, "generate images locally with stable-diffusion instead of the Gemini API")
	fs.BoolVar(&f.redraw, "redraw", true, "redraw when the compositor resizes a surface")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	f.changed = func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return (flag != nil) && flag.Changed
	}
}

// apply overrides cfg with the flags that were given explicitly.
func (f *flags) apply(cfg *config.Config) {
	if f.changed("monitors") {
		cfg.Monitors = f.monitors
	}
	if f.changed("interval") {
		cfg.Interval = f.interval
	}
	if f.changed("scale") {
		cfg.Scale = f.scale.String()
	}
	if f.changed("redraw") {
		cfg.RedrawOnReconfigure = f.redraw
	}
	if f.local {
		cfg.Generator = config.GeneratorLocal
	}
	if f.logLevel != "" {
		cfg.Env.LogLevel = f.logLevel
	}
}

type modeKind int

const (
	modePlain modeKind = iota
	modeImage
	modeCycle
	modeGenerated
)

func (k modeKind) String() string {
	switch k {
	case modePlain:
		return "plain"
	case modeImage:
		return "image"
	case modeCycle:
		return "cycle"
	case modeGenerated:
		return "generated"
	}
	return "unknown"
}

type mode struct {
	kind modeKind
	arg  string
}

var errNoMode = errors.New("no mode given: use one of --plain, --image, --generated, or --cycle")

// mode determines what to show. If more than one mode is given, the
// first of plain, image, cycle, and generated wins.
func (f *flags) mode() (mode, error) {
	var modes []mode
	if f.changed("plain") {
		modes = append(modes, mode{kind: modePlain, arg: f.plain})
	}
	if f.image != "" {
		modes = append(modes, mode{kind: modeImage, arg: f.image})
	}
	if f.cycle != "" {
		modes = append(modes, mode{kind: modeCycle, arg: f.cycle})
	}
	if f.generated != "" {
		modes = append(modes, mode{kind: modeGenerated, arg: f.generated})
	}

	if len(modes) == 0 {
		return mode{}, errNoMode
	}
	if len(modes) > 1 {
		log.Warn().Stringer("using", modes[0].kind).Msg("more than one mode given")
	}
	return modes[0], nil
}
