// Package images loads wallpaper images from disk.
package images

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extensions are the file extensions that Scan picks up, in lower case.
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp"}

// Load decodes the image at path. The format is detected from the
// file's contents, not its name.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decode %v: unsupported format", path)
		}
		return nil, fmt.Errorf("decode %v: %w", path, err)
	}
	return img, nil
}

// Scan returns the paths of the regular files in dir whose extensions
// are in Extensions, sorted by name. Subdirectories are not searched.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !slices.Contains(Extensions, ext) {
			continue
		}

		// Stat follows symlinks, so linked images are included and
		// dangling links are not.
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if (err != nil) || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}

	return paths, nil
}
