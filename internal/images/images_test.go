package images_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"deedles.dev/paber/internal/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func write(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, encode(file))
}

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 0xFF, A: 0xFF})
	return img
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		encode func(*os.File) error
	}{
		{"image.png", func(f *os.File) error { return png.Encode(f, testImage()) }},
		{"image.jpg", func(f *os.File) error { return jpeg.Encode(f, testImage(), nil) }},
		{"image.bmp", func(f *os.File) error { return bmp.Encode(f, testImage()) }},
		{"misnamed.gif", func(f *os.File) error { return png.Encode(f, testImage()) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name)
			write(t, path, test.encode)

			img, err := images.Load(path)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := images.Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, err = images.Load(path)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "c.webp", "notes.txt", "d.jpeg", "e.gif", "f.bmp", "g.tiff", "noext"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	paths, err := images.Scan(dir)
	require.NoError(t, err)

	var names []string
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	assert.Equal(t, []string{"a.jpg", "b.PNG", "c.webp", "d.jpeg", "e.gif", "f.bmp"}, names)
}

func TestScanSymlinks(t *testing.T) {
	store := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(store, "real.png"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(store, "dir.png"), 0755))

	dir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(store, "real.png"), filepath.Join(dir, "linked.png")))
	require.NoError(t, os.Symlink(filepath.Join(store, "dir.png"), filepath.Join(dir, "linkeddir.png")))
	require.NoError(t, os.Symlink(filepath.Join(store, "missing.png"), filepath.Join(dir, "dangling.png")))

	paths, err := images.Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "linked.png")}, paths)
}

func TestScanEmpty(t *testing.T) {
	paths, err := images.Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = images.Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
