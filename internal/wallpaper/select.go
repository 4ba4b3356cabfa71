package wallpaper

import (
	"errors"
	"fmt"
	"strconv"

	"deedles.dev/paber/internal/set"
)

// Select maps monitor selectors to surface indices. A selector is
// either a decimal index into Surfaces or the name of an output, such
// as "DP-1". No selectors selects the first surface. Duplicates are
// dropped, but order is otherwise preserved.
func (session *Session) Select(monitors []string) ([]int, error) {
	if len(session.surfaces) == 0 {
		return nil, errors.New("no surfaces to select from")
	}
	if len(monitors) == 0 {
		return []int{0}, nil
	}

	seen := set.New[int]()
	targets := make([]int, 0, len(monitors))
	for _, m := range monitors {
		i, err := session.lookup(m)
		if err != nil {
			return nil, err
		}
		if seen.Add(i) {
			targets = append(targets, i)
		}
	}
	return targets, nil
}

func (session *Session) lookup(monitor string) (int, error) {
	if i, err := strconv.Atoi(monitor); err == nil {
		if (i < 0) || (i >= len(session.surfaces)) {
			return 0, fmt.Errorf("monitor %v out of range: have %v", i, len(session.surfaces))
		}
		return i, nil
	}

	for i, s := range session.surfaces {
		if (s.output != nil) && (s.output.Name() == monitor) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown monitor %q", monitor)
}
