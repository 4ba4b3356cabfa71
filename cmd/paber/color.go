package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor parses #RRGGBB, #RRGGBBAA, either without the #, or an SVG
// color name such as "navy".
func parseColor(str string) (color.Color, error) {
	if c, ok := colornames.Map[strings.ToLower(str)]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(str, "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return nil, fmt.Errorf("invalid color %q", str)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", str)
	}

	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
