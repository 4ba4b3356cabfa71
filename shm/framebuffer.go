package shm

import (
	"fmt"
	"image"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/shm/shmimage"
)

// FrameBuffer is a single ARGB8888 wl_buffer backed by its own shared
// memory region. The pool it was carved from is destroyed immediately,
// as nothing else is ever allocated from it.
type FrameBuffer struct {
	w, h   int32
	region *Region
	buf    *wl.Buffer
}

func NewFrameBuffer(shm *wl.Shm, w, h int32) (*FrameBuffer, error) {
	region, err := Allocate(int(w), int(h))
	if err != nil {
		return nil, fmt.Errorf("allocate %vx%v: %w", w, h, err)
	}

	pool := shm.CreatePool(region.File, int32(region.Size()))
	buf := pool.CreateBuffer(0, w, h, int32(region.Stride()), wl.ShmFormatArgb8888)
	pool.Destroy()

	return &FrameBuffer{
		w:      w,
		h:      h,
		region: region,
		buf:    buf,
	}, nil
}

func (s *FrameBuffer) Buffer() *wl.Buffer {
	return s.buf
}

func (s *FrameBuffer) Len() int {
	return s.region.Size()
}

func (s *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(s.w), int(s.h))
}

// Image returns an image that writes directly into the shared memory.
// It must not be used after Unmap.
func (s *FrameBuffer) Image() *shmimage.ARGB8888 {
	return &shmimage.ARGB8888{
		Pix:    s.region.Mmap,
		Stride: s.region.Stride(),
		Rect:   s.Bounds(),
	}
}

// Unmap releases the client's side of the memory. It should be called
// after the requests that reference the buffer have been flushed, since
// those carry the file descriptor.
func (s *FrameBuffer) Unmap() error {
	if s.region == nil {
		return nil
	}

	err := s.region.Close()
	s.region = nil
	return err
}

// Destroy unmaps the memory if it is still mapped and destroys the
// wl_buffer.
func (s *FrameBuffer) Destroy() error {
	err := s.Unmap()
	s.buf.Destroy()
	return err
}
