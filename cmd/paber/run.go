package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"deedles.dev/paber/internal/config"
	"deedles.dev/paber/internal/cycle"
	"deedles.dev/paber/internal/images"
	"deedles.dev/paber/internal/paint"
	"deedles.dev/paber/internal/wallpaper"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func run(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f.apply(&cfg)
	setupLogging(cfg.Env.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := f.mode()
	if err != nil {
		return err
	}

	p, err := newPainter(cfg)
	if err != nil {
		return err
	}

	// Cycle mode checks its directory before connecting so that a bad
	// path fails fast.
	var sched *cycle.Scheduler
	if m.kind == modeCycle {
		paths, err := images.Scan(m.arg)
		if err != nil {
			return fmt.Errorf("scan %v: %w", m.arg, err)
		}
		sched, err = cycle.New(paths, cfg.Interval)
		if err != nil {
			return fmt.Errorf("cycle %v: %w", m.arg, err)
		}
		log.Info().Str("dir", m.arg).Int("images", sched.Len()).Dur("interval", cfg.Interval).Msg("cycling")
	}

	session, err := connect(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer session.Close()

	targets, err := session.Select(cfg.Monitors)
	if err != nil {
		return err
	}

	switch m.kind {
	case modePlain:
		c := p.background
		if m.arg != plainDefault {
			c, err = parseColor(m.arg)
			if err != nil {
				return err
			}
		}
		err := show(session, targets, paint.Solid{Color: c})
		if err != nil {
			return err
		}

	case modeImage:
		src, err := p.load(m.arg)
		if err != nil {
			return err
		}
		err = show(session, targets, src)
		if err != nil {
			return err
		}

	case modeGenerated:
		src, err := generate(ctx, cfg, f.local, m.arg, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("generate wallpaper")
			break
		}
		err = show(session, targets, src)
		if err != nil {
			return err
		}

	case modeCycle:
		log.Info().Msg("wallpaper cycle started, press Ctrl+C to exit")
		return session.RunCycle(ctx, sched, p.load, targets)
	}

	log.Info().Msg("wallpaper set, press Ctrl+C to exit")
	return session.Run(ctx)
}

// connect sets up a session with a configured surface on every output.
func connect(ctx context.Context, cfg config.Config) (*wallpaper.Session, error) {
	session, err := wallpaper.Dial(wallpaper.Options{
		Namespace:           cfg.Namespace,
		RedrawOnReconfigure: cfg.RedrawOnReconfigure,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to Wayland: %w", err)
	}

	err = session.NegotiateGlobals()
	if err != nil {
		session.Close()
		if errors.Is(err, wallpaper.ErrNoLayerShell) {
			return nil, fmt.Errorf("%w: the compositor can't show background surfaces", err)
		}
		return nil, err
	}

	err = session.CreateSurfaces()
	if err != nil {
		session.Close()
		return nil, err
	}

	log.Debug().Msg("waiting for surfaces to be configured")
	err = session.WaitConfigured(ctx)
	if err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

func generate(ctx context.Context, cfg config.Config, local bool, prompt string, p painter) (paint.Source, error) {
	err := os.MkdirAll(filepath.Dir(cfg.Output), 0755)
	if err != nil {
		return nil, err
	}

	err = cfg.NewGenerator(local).Generate(ctx, prompt, cfg.Output)
	if err != nil {
		return nil, err
	}

	return p.load(cfg.Output)
}

type drawer interface {
	DrawAll(targets []int, src paint.Source) error
}

// show draws src on the targets. Errors that leave a single output
// without a wallpaper are logged so that the others keep theirs. Only
// fatal errors are returned.
func show(d drawer, targets []int, src paint.Source) error {
	err := d.DrawAll(targets, src)
	if err == nil {
		return nil
	}
	if wallpaper.Fatal(err) {
		return err
	}
	log.Error().Err(err).Msg("draw wallpaper")
	return nil
}

// painter turns image paths into sources using the configured scaling
// settings.
type painter struct {
	scale      paint.Scale
	background color.Color
}

func newPainter(cfg config.Config) (painter, error) {
	scale, err := paint.ParseScale(cfg.Scale)
	if err != nil {
		return painter{}, err
	}

	bg, err := parseColor(cfg.Color)
	if err != nil {
		return painter{}, fmt.Errorf("config: %w", err)
	}

	return painter{scale: scale, background: bg}, nil
}

func (p painter) load(path string) (paint.Source, error) {
	img, err := images.Load(path)
	if err != nil {
		return nil, err
	}
	return paint.Picture{Image: img, Scale: p.scale, Background: p.background}, nil
}
