package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// SideBySide places original and filtered next to each other in a new image
// as wide as both and as tall as the taller. The result is 16-bit grey when
// either input is, otherwise 8-bit grey.
func SideBySide(original, filtered image.Image) image.Image {
	ob, fb := original.Bounds(), filtered.Bounds()
	rect := image.Rect(0, 0, ob.Dx()+fb.Dx(), max(ob.Dy(), fb.Dy()))

	var dst draw.Image
	_, wide1 := original.(*image.Gray16)
	_, wide2 := filtered.(*image.Gray16)
	if wide1 || wide2 {
		dst = image.NewGray16(rect)
	} else {
		dst = image.NewGray(rect)
	}

	draw.Draw(dst, image.Rect(0, 0, ob.Dx(), ob.Dy()), original, ob.Min, draw.Src)
	draw.Draw(dst, image.Rect(ob.Dx(), 0, rect.Dx(), fb.Dy()), filtered, fb.Min, draw.Src)
	return dst
}
