// Package resolvetest provides image fixtures for tests that exercise
// photo resolution.
package resolvetest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing/fstest"
)

// PNG returns the bytes of a small valid PNG image.
func PNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG returns the bytes of a small valid JPEG image.
func JPEG() []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sample(), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: 216, G: 181, B: 143, A: 255})
		}
	}
	return img
}

// Assets builds an in-memory site directory. Names ending in .png/.PNG get
// PNG bytes, every other name gets JPEG bytes.
func Assets(names ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, n := range names {
		data := JPEG()
		if len(n) > 4 && (n[len(n)-4:] == ".png" || n[len(n)-4:] == ".PNG") {
			data = PNG()
		}
		fsys[n] = &fstest.MapFile{Data: data}
	}
	return fsys
}
