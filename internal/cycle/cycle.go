// Package cycle decides when a rotating wallpaper should switch to its
// next image.
package cycle

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoImages is returned when there is nothing to cycle through.
var ErrNoImages = errors.New("no images to cycle through")

// Scheduler walks through a list of paths, moving on once per interval.
// It doesn't keep its own clock. Callers pass the current time to Tick.
type Scheduler struct {
	paths    []string
	interval time.Duration

	started  bool
	index    int
	next     time.Time
	switches int
}

func New(paths []string, interval time.Duration) (*Scheduler, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval %v", interval)
	}

	return &Scheduler{
		paths:    paths,
		interval: interval,
	}, nil
}

// Tick reports whether the image to show has changed as of now and, if
// so, which path to show. The first call always shows the first path.
// Later calls advance by one, wrapping around, once the interval since
// the last change has elapsed. Time between ticks that spans several
// intervals still only advances once.
func (s *Scheduler) Tick(now time.Time) (path string, changed bool) {
	if !s.started {
		s.started = true
		s.next = now.Add(s.interval)
		return s.paths[s.index], true
	}

	if now.Before(s.next) {
		return "", false
	}

	s.index = (s.index + 1) % len(s.paths)
	s.switches++
	s.next = now.Add(s.interval)
	return s.paths[s.index], true
}

// Current returns the path most recently returned by Tick.
func (s *Scheduler) Current() string {
	return s.paths[s.index]
}

// Index returns the index of the current path.
func (s *Scheduler) Index() int {
	return s.index
}

// Switches returns the number of times the path has changed after the
// first one was shown.
func (s *Scheduler) Switches() int {
	return s.switches
}

// Next returns the time at which the next switch is due. It is the zero
// time before the first tick.
func (s *Scheduler) Next() time.Time {
	return s.next
}

func (s *Scheduler) Len() int {
	return len(s.paths)
}
