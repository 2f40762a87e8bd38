package cmd

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rm-hull/linear-filter/internal/convolve"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rm-hull/linear-filter/internal/raster"
	"github.com/rm-hull/linear-filter/internal/raster/stage"
	"github.com/rs/zerolog/log"
)

const animationFrameDelay = 1.0

type FilterOptions struct {
	KernelPath string
	ImagePath  string
	OutputPath string
	Compare    string
	Animate    string
	Delta      float64
	Anchor     string
	Border     string
	Permissive bool
}

// DefaultOutputPath derives "<dir>/<name>-filtered.png" from the image path.
func DefaultOutputPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + "-filtered.png"
}

// Filter loads the kernel and image, filters the image and writes the
// requested outputs. Nothing is written unless the kernel and image are both
// valid.
func Filter(opts FilterOptions) error {
	var loadOpts []kernel.LoadOption
	if opts.Permissive {
		loadOpts = append(loadOpts, kernel.Permissive())
	}
	k, err := kernel.LoadFile(opts.KernelPath, loadOpts...)
	if err != nil {
		return err
	}
	log.Debug().Msgf("Loaded %dx%d kernel from %s", k.Size(), k.Size(), opts.KernelPath)

	convolveOpts, err := convolveOptions(k, opts.Delta, opts.Anchor, opts.Border)
	if err != nil {
		return err
	}

	img, err := raster.Open(opts.ImagePath)
	if err != nil {
		return err
	}

	if err := img.Pipeline(&stage.GreyscaleStage{}); err != nil {
		return err
	}
	original := img.Img

	if err := img.Pipeline(&stage.ConvolveStage{Kernel: k, Options: convolveOpts}); err != nil {
		return err
	}

	output := opts.OutputPath
	if output == "" {
		output = DefaultOutputPath(opts.ImagePath)
	}
	if err := raster.Save(output, img.Img); err != nil {
		return err
	}
	log.Info().Msgf("Wrote filtered image to %s", output)

	if opts.Compare != "" {
		if err := raster.Save(opts.Compare, raster.SideBySide(original, img.Img)); err != nil {
			return err
		}
		log.Info().Msgf("Wrote comparison to %s", opts.Compare)
	}

	if opts.Animate != "" {
		data, err := raster.Animate([]image.Image{original, img.Img}, animationFrameDelay)
		if err != nil {
			return fmt.Errorf("failed to animate: %w", err)
		}
		if err := os.WriteFile(opts.Animate, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.Animate, err)
		}
		log.Info().Msgf("Wrote animation to %s", opts.Animate)
	}

	return nil
}

func convolveOptions(k *kernel.Kernel, delta float64, anchor, border string) ([]convolve.Option, error) {
	pt, err := convolve.ParseAnchor(anchor, k.Size())
	if err != nil {
		return nil, err
	}
	mode, err := convolve.ParseBorderMode(border)
	if err != nil {
		return nil, err
	}
	return []convolve.Option{
		convolve.WithBias(delta),
		convolve.WithAnchor(pt),
		convolve.WithBorder(mode),
	}, nil
}
