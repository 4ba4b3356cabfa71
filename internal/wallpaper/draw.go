package wallpaper

import (
	"errors"
	"fmt"
	"math"

	"deedles.dev/paber/internal/paint"
	"deedles.dev/paber/shm"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// Fatal reports whether an error returned by Draw or DrawAll means that
// nothing can be shown at all, such as when a surface has no area or
// shared memory can't be allocated. Other draw errors only affect the
// surface that they happened on.
func Fatal(err error) bool {
	return errors.Is(err, shm.ErrInvalidDimensions) || errors.Is(err, shm.ErrResourceExhausted)
}

// Draw paints src into a new buffer and shows it on the i-th surface.
func (session *Session) Draw(i int, src paint.Source) error {
	if (i < 0) || (i >= len(session.surfaces)) {
		return fmt.Errorf("no surface %v", i)
	}
	return session.draw(session.surfaces[i], src)
}

// DrawAll draws src on each of the given surfaces. A failure on one
// surface doesn't stop the others from being drawn.
func (session *Session) DrawAll(targets []int, src paint.Source) error {
	errs := make([]error, 0, len(targets))
	for _, i := range targets {
		err := session.Draw(i, src)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (session *Session) draw(s *Surface, src paint.Source) error {
	if s.closed {
		return fmt.Errorf("draw on %v: %w: closed by compositor", s, ErrNotConfigured)
	}
	if !s.configured {
		return fmt.Errorf("draw on %v: %w", s, ErrNotConfigured)
	}
	if session.shm == nil {
		return fmt.Errorf("draw on %v: %w", s, ErrNoShm)
	}
	if (s.width > math.MaxInt32) || (s.height > math.MaxInt32) {
		return fmt.Errorf("draw on %v: %w: %vx%v", s, shm.ErrInvalidDimensions, s.width, s.height)
	}
	w, h := int32(s.width), int32(s.height)

	fb, err := shm.NewFrameBuffer(session.shm, w, h)
	if err != nil {
		return fmt.Errorf("draw on %v: %w", s, err)
	}
	size := fb.Len()

	err = src.Paint(fb.Image())
	if err != nil {
		fb.Destroy()
		return fmt.Errorf("paint %v: %w", s, err)
	}

	s.surface.Attach(fb.Buffer(), 0, 0)
	s.surface.Damage(0, 0, w, h)
	s.surface.Commit()
	session.buffers[fb.Buffer()] = fb
	s.source = src

	err = session.state.Flush()
	uerr := fb.Unmap()
	if err != nil {
		return fmt.Errorf("commit %v: %w", s, err)
	}
	if uerr != nil {
		log.Warn().Err(uerr).Str("output", s.String()).Msg("unmap buffer")
	}

	log.Info().
		Str("output", s.String()).
		Uint32("width", s.width).
		Uint32("height", s.height).
		Str("size", humanize.IBytes(uint64(size))).
		Msgf("drew %v", src)
	return nil
}
