package raster

import (
	"image"
	"image/png"
	"io"
)

// Raster is an image moving through a pipeline of stages.
type Raster struct {
	Img    image.Image
	Bounds image.Rectangle
}

// PipelineStage transforms a raster in place by replacing its image.
type PipelineStage interface {
	Process(r *Raster) error
}

func New(img image.Image) *Raster {
	return &Raster{
		Img:    img,
		Bounds: img.Bounds(),
	}
}

// Write encodes the raster as PNG.
func (r *Raster) Write(w io.Writer) error {
	return png.Encode(w, r.Img)
}

// Pipeline runs the stages in order, stopping at the first failure.
func (r *Raster) Pipeline(stages ...PipelineStage) error {
	for _, stage := range stages {
		if err := stage.Process(r); err != nil {
			return err
		}
	}
	return nil
}
