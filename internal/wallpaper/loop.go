package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deedles.dev/paber/internal/cycle"
	"deedles.dev/paber/internal/paint"
	"github.com/rs/zerolog/log"
)

// PollInterval is how long RunCycle sleeps between iterations.
const PollInterval = 100 * time.Millisecond

// Run dispatches events until ctx is canceled or the connection fails.
// It only returns nil if ctx was canceled.
func (session *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { session.state.Interrupt() })
	defer stop()

	for {
		err := session.state.Dispatch()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("dispatch: %w", err)
		}
	}
}

// Loader turns an image path into something drawable.
type Loader func(path string) (paint.Source, error)

// RunCycle shows the images chosen by sched on every target surface
// until ctx is canceled. Each iteration asks the scheduler whether a
// new image is due, draws it if so, handles whatever events have
// arrived without waiting for more, and then sleeps for PollInterval.
// Failures to load or draw an image are logged and the loop carries on.
func (session *Session) RunCycle(ctx context.Context, sched *cycle.Scheduler, load Loader, targets []int) error {
	if sched == nil {
		return cycle.ErrNoImages
	}

	for {
		if path, ok := sched.Tick(time.Now()); ok {
			err := session.show(path, load, targets, sched)
			if err != nil {
				return err
			}
		}

		err := session.state.DispatchPending()
		if err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(PollInterval):
		}
	}
}

// show draws the image at path on every target. It only returns an
// error if that error is fatal. Everything else is logged.
func (session *Session) show(path string, load Loader, targets []int, sched *cycle.Scheduler) error {
	logger := log.With().Str("path", path).Int("index", sched.Index()).Logger()

	src, err := load(path)
	if err != nil {
		logger.Error().Err(err).Msg("load image")
		return nil
	}

	err = session.DrawAll(targets, src)
	if err != nil {
		if Fatal(err) {
			return fmt.Errorf("show %v: %w", path, err)
		}
		logger.Error().Err(err).Msg("draw image")
		if errors.Is(err, ErrNotConfigured) {
			logger.Warn().Msg("some surfaces are not configured")
		}
		return nil
	}
	logger.Info().Time("next", sched.Next()).Int("switches", sched.Switches()).Msg("switched wallpaper")
	return nil
}
