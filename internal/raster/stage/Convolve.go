package stage

import (
	"fmt"

	"github.com/rm-hull/linear-filter/internal/convolve"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rm-hull/linear-filter/internal/raster"
)

type ConvolveStage struct {
	Kernel  *kernel.Kernel
	Options []convolve.Option
}

// Process replaces the image with its cross-correlation against Kernel.
// The image must already be single channel, see GreyscaleStage.
func (s *ConvolveStage) Process(r *raster.Raster) error {
	out, err := convolve.Filter(r.Img, s.Kernel, s.Options...)
	if err != nil {
		return fmt.Errorf("failed to apply kernel: %w", err)
	}
	r.Img = out
	return nil
}
