// Package debug prints protocol traces when $WAYLAND_DEBUG is set to a
// positive number, mirroring libwayland.
package debug

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

var enabled bool

func init() {
	debugLevel, err := strconv.ParseInt(os.Getenv("WAYLAND_DEBUG"), 10, 0)
	if err != nil {
		return
	}
	enabled = debugLevel > 0
}

// Enabled reports whether protocol tracing is on.
func Enabled() bool {
	return enabled
}

func Printf(str string, args ...any) {
	if !enabled {
		return
	}
	log.Log().Str("component", "wayland").Msgf(str, args...)
}
