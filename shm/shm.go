// Package shm allocates shared memory for wl_shm buffers.
package shm

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrInvalidDimensions is returned when a buffer would have no
	// pixels or too many to describe to the compositor.
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrResourceExhausted is returned when shared memory can't be
	// created, sized or mapped.
	ErrResourceExhausted = errors.New("shared memory exhausted")
)

// Create returns an anonymous file suitable for sharing with the
// compositor. It uses memfd_create when the kernel supports it and an
// unlinked file in /dev/shm otherwise.
func Create() (*os.File, error) {
	fd, err := unix.MemfdCreate("paber-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		return os.NewFile(uintptr(fd), "paber-shm"), nil
	}

	path := "/dev/shm/paber-" + strconv.Itoa(os.Getpid()) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	return file, os.Remove(path)
}

// Seal prevents file from shrinking below its current size and from
// having its seals changed. Files that don't support sealing, such as
// the /dev/shm fallback, are left alone.
func Seal(file *os.File) error {
	sc, err := file.SyscallConn()
	if err != nil {
		return err
	}

	var serr error
	err = sc.Control(func(fd uintptr) {
		_, serr = unix.FcntlInt(fd, unix.F_ADD_SEALS, unix.F_SEAL_SHRINK|unix.F_SEAL_SEAL)
	})
	if err != nil {
		return err
	}
	if errors.Is(serr, unix.EINVAL) {
		return nil
	}
	return serr
}

type Mmap []byte

func Map(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}

// Region is a mapped shared memory file holding exactly one ARGB8888
// frame.
type Region struct {
	File   *os.File
	Mmap   Mmap
	Width  int
	Height int
}

// Allocate creates a sealed shared memory region of width*height*4
// bytes and maps it for reading and writing.
func Allocate(width, height int) (r *Region, err error) {
	if (width <= 0) || (height <= 0) || (width > math.MaxInt32/4/height) {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidDimensions, width, height)
	}
	size := width * height * 4

	file, err := Create()
	if err != nil {
		return nil, fmt.Errorf("%w: create: %w", ErrResourceExhausted, err)
	}
	defer func() {
		if err != nil {
			file.Close()
		}
	}()

	err = file.Truncate(int64(size))
	if err != nil {
		return nil, fmt.Errorf("%w: truncate to %v bytes: %w", ErrResourceExhausted, size, err)
	}

	err = Seal(file)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	mmap, err := Map(file, size, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", ErrResourceExhausted, err)
	}

	return &Region{
		File:   file,
		Mmap:   mmap,
		Width:  width,
		Height: height,
	}, nil
}

func (r *Region) Stride() int {
	return r.Width * 4
}

func (r *Region) Size() int {
	return len(r.Mmap)
}

// Close unmaps the region and closes its file. Whatever has been shared
// with the compositor stays valid on its side.
func (r *Region) Close() error {
	return errors.Join(
		r.Mmap.Unmap(),
		r.File.Close(),
	)
}
