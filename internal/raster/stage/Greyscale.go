package stage

import (
	"github.com/rm-hull/linear-filter/internal/raster"
)

type GreyscaleStage struct{}

// Process reduces the image to a single channel. 8 and 16-bit grey images
// pass through untouched; anything else is replaced by its 8-bit luminance.
func (s *GreyscaleStage) Process(r *raster.Raster) error {
	r.Img = raster.ToSingleChannel(r.Img)
	return nil
}
