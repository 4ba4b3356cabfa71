package shm_test

import (
	"testing"

	"deedles.dev/paber/shm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestAllocate(t *testing.T) {
	r, err := shm.Allocate(3, 2)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 24, r.Size())
	assert.Equal(t, 12, r.Stride())

	info, err := r.File.Stat()
	require.NoError(t, err)
	assert.EqualValues(t, 24, info.Size())

	copy(r.Mmap, "shared")
	buf := make([]byte, 6)
	_, err = r.File.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(buf))
}

func TestAllocateSealed(t *testing.T) {
	r, err := shm.Allocate(1, 1)
	require.NoError(t, err)
	defer r.Close()

	seals, err := unix.FcntlInt(r.File.Fd(), unix.F_GET_SEALS, 0)
	if err != nil {
		t.Skip("file does not support sealing")
	}
	assert.NotZero(t, seals&unix.F_SEAL_SHRINK)
	assert.Error(t, r.File.Truncate(0))
}

func TestAllocateInvalid(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"ZeroWidth", 0, 10},
		{"ZeroHeight", 10, 0},
		{"Negative", -1, 10},
		{"Overflow", 1 << 16, 1 << 16},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := shm.Allocate(test.w, test.h)
			assert.ErrorIs(t, err, shm.ErrInvalidDimensions)
		})
	}
}
