package clue

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/fogleman/gg"
)

// Backgrounds supplies the map drawn behind a clue digit. Maps are
// numbered from 1.
type Backgrounds interface {
	Background(n int) (image.Image, error)
	Name(n int) string
}

// DirBackgrounds loads map{n}.{ext} files from a directory.
type DirBackgrounds struct {
	Dir string
	Ext string
}

func NewDirBackgrounds(dir string) DirBackgrounds {
	return DirBackgrounds{Dir: dir, Ext: "png"}
}

func (d DirBackgrounds) Name(n int) string {
	ext := d.Ext
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("map%d.%s", n, ext)
}

func (d DirBackgrounds) Background(n int) (image.Image, error) {
	img, err := gg.LoadImage(filepath.Join(d.Dir, d.Name(n)))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d.Name(n), err)
	}
	return img, nil
}
