// Package shmimage provides image.Image implementations over the pixel
// layouts that wl_shm understands.
package shmimage

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

// ARGB8888 is an in-memory image whose At method returns ARGB8888Color
// values. Every pixel is a little-endian 32-bit word, so the bytes are
// in B, G, R, A order regardless of the host.
type ARGB8888 struct {
	// Pix holds the image's pixels. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*4].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewARGB8888 returns a new ARGB8888 image with the given bounds.
func NewARGB8888(r image.Rectangle) *ARGB8888 {
	return &ARGB8888{
		Pix:    make([]uint8, r.Dx()*r.Dy()*4),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *ARGB8888) Bounds() image.Rectangle { return p.Rect }

func (p *ARGB8888) ColorModel() color.Model { return ARGB8888Model }

func (p *ARGB8888) At(x, y int) color.Color {
	return p.ARGB8888At(x, y)
}

func (p *ARGB8888) ARGB8888At(x, y int) ARGB8888Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return ARGB8888Color(0)
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+4 : i+4] // Small cap improves performance, see https://golang.org/issue/27857
	return ARGB8888Color(binary.LittleEndian.Uint32(s))
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y).
func (p *ARGB8888) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*4
}

func (p *ARGB8888) Set(x, y int, c color.Color) {
	p.SetARGB8888(x, y, ARGB8888Model.Convert(c).(ARGB8888Color))
}

func (p *ARGB8888) SetARGB8888(x, y int, c ARGB8888Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+4 : i+4] // Small cap improves performance, see https://golang.org/issue/27857
	binary.LittleEndian.PutUint32(s, uint32(c))
}

// Fill sets every pixel in the image to c.
func (p *ARGB8888) Fill(c ARGB8888Color) {
	if p.Rect.Empty() {
		return
	}

	var px [4]byte
	binary.LittleEndian.PutUint32(px[:], uint32(c))

	w := p.Rect.Dx() * 4
	row := p.Pix[:w:w]
	for i := 0; i < w; i += 4 {
		copy(row[i:], px[:])
	}
	for y := 1; y < p.Rect.Dy(); y++ {
		copy(p.Pix[y*p.Stride:y*p.Stride+w], row)
	}
}

// SubImage returns an image representing the portion of the image p visible
// through r. The returned value shares pixels with the original image.
func (p *ARGB8888) SubImage(r image.Rectangle) draw.Image {
	r = r.Intersect(p.Rect)
	// If r1 and r2 are Rectangles, r1.Intersect(r2) is not guaranteed to be inside
	// either r1 or r2 if the intersection is empty. Without explicitly checking for
	// this, the Pix[i:] expression below can panic.
	if r.Empty() {
		return &ARGB8888{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &ARGB8888{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (p *ARGB8888) Opaque() bool {
	if p.Rect.Empty() {
		return true
	}
	w := p.Rect.Dx() * 4
	for y := 0; y < p.Rect.Dy(); y++ {
		row := p.Pix[y*p.Stride : y*p.Stride+w]
		for i := 3; i < w; i += 4 {
			if row[i] != 0xFF {
				return false
			}
		}
	}
	return true
}
