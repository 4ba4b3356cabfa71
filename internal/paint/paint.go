// Package paint fills frame buffers with wallpaper content.
package paint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"deedles.dev/paber/shm/shmimage"
	"golang.org/x/image/draw"
)

// Source is something that can be drawn as a wallpaper. Paint must
// cover every pixel of dst.
type Source interface {
	Paint(dst *shmimage.ARGB8888) error
}

// Solid fills the whole buffer with a single color.
//
// Pixels are stored premultiplied, as wl_shm requires for ARGB8888, so
// a translucent color such as NRGBA{R: 0xFF, A: 0x80} is written as
// 0x80800000 rather than 0x80FF0000.
type Solid struct {
	Color color.Color
}

func (s Solid) Paint(dst *shmimage.ARGB8888) error {
	c := shmimage.ARGB8888Model.Convert(s.Color).(shmimage.ARGB8888Color)
	dst.Fill(c)
	return nil
}

func (s Solid) String() string {
	r, g, b, a := s.Color.RGBA()
	return fmt.Sprintf("solid(#%02x%02x%02x%02x)", r>>8, g>>8, b>>8, a>>8)
}

// Scale is the way that a Picture is fit to a buffer of a different
// size.
type Scale int

const (
	// Stretch resizes the image to exactly the buffer's size, ignoring
	// its aspect ratio.
	Stretch Scale = iota

	// Fit resizes the image to fit inside of the buffer, keeping its
	// aspect ratio, and fills the rest with the background color.
	Fit

	// Fill resizes the image to cover the buffer, keeping its aspect
	// ratio, and crops whatever sticks out evenly from both sides.
	Fill
)

func ParseScale(str string) (Scale, error) {
	switch strings.ToLower(str) {
	case "", "stretch":
		return Stretch, nil
	case "fit":
		return Fit, nil
	case "fill":
		return Fill, nil
	}
	return 0, fmt.Errorf("unknown scale mode %q", str)
}

func (s Scale) String() string {
	switch s {
	case Stretch:
		return "stretch"
	case Fit:
		return "fit"
	case Fill:
		return "fill"
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// Set implements pflag.Value.
func (s *Scale) Set(str string) error {
	v, err := ParseScale(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Type implements pflag.Value.
func (s *Scale) Type() string {
	return "scale"
}

func (s *Scale) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// Picture resamples an image to the buffer's size with a bilinear
// filter.
type Picture struct {
	Image image.Image
	Scale Scale

	// Background is used for the uncovered area in Fit mode and under
	// translucent pixels in Fit and Fill modes. A nil Background is
	// opaque black.
	Background color.Color
}

func (p Picture) Paint(dst *shmimage.ARGB8888) error {
	if p.Image == nil {
		return errors.New("no image")
	}
	sr := p.Image.Bounds()
	if sr.Empty() {
		return errors.New("empty image")
	}
	dr := dst.Bounds()
	if dr.Empty() {
		return errors.New("empty destination")
	}

	switch p.Scale {
	case Stretch:
		resample(dst, dr, p.Image, sr, draw.Src)

	case Fit:
		p.fillBackground(dst)
		resample(dst, fitRect(sr, dr), p.Image, sr, draw.Over)

	case Fill:
		p.fillBackground(dst)
		resample(dst, dr, p.Image, cropRect(sr, dr), draw.Over)

	default:
		return fmt.Errorf("unknown scale mode %v", p.Scale)
	}

	return nil
}

func (p Picture) String() string {
	if p.Image == nil {
		return "picture(nil)"
	}
	b := p.Image.Bounds()
	return fmt.Sprintf("picture(%vx%v, %v)", b.Dx(), b.Dy(), p.Scale)
}

func (p Picture) fillBackground(dst *shmimage.ARGB8888) {
	bg := p.Background
	if bg == nil {
		bg = color.Black
	}
	Solid{Color: bg}.Paint(dst)
}

// resample draws sr of src into dr of dst, skipping the filter when no
// scaling is necessary.
func resample(dst draw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle, op draw.Op) {
	if dr.Size() == sr.Size() {
		draw.Draw(dst, dr, src, sr.Min, op)
		return
	}
	draw.BiLinear.Scale(dst, dr, src, sr, op, nil)
}

// fitRect returns the largest rectangle with the aspect ratio of src
// that fits in dst, centered.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()

	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	w, h = max(w, 1), max(h, 1)

	pt := dst.Min.Add(image.Pt((dw-w)/2, (dh-h)/2))
	return image.Rectangle{Min: pt, Max: pt.Add(image.Pt(w, h))}
}

// cropRect returns the largest rectangle with the aspect ratio of dst
// that fits in src, centered.
func cropRect(src, dst image.Rectangle) image.Rectangle {
	return fitRect(dst, src)
}
