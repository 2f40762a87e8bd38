package convolve

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Options controls a single Filter call.
type Options struct {
	Bias     float64     // added to every sum before clamping
	Anchor   image.Point // kernel cell aligned with the output pixel
	Border   BorderMode
	Parallel bool // split rows across goroutines
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Border:   BorderReflect101,
		Parallel: true,
	}
}

func WithBias(bias float64) Option {
	return func(o *Options) { o.Bias = bias }
}

// WithAnchor moves the kernel cell aligned with the output pixel away from
// the default top-left cell.
func WithAnchor(anchor image.Point) Option {
	return func(o *Options) { o.Anchor = anchor }
}

func WithBorder(mode BorderMode) Option {
	return func(o *Options) { o.Border = mode }
}

func WithParallel(parallel bool) Option {
	return func(o *Options) { o.Parallel = parallel }
}

// Center returns the geometric centre cell of a size×size kernel.
func Center(size int) image.Point {
	return image.Pt(size/2, size/2)
}

// ParseAnchor parses "x,y" or "center" for a kernel of the given size. The
// empty string selects the top-left cell.
func ParseAnchor(s string, size int) (image.Point, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return image.Point{}, nil
	case "center", "centre":
		return Center(size), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("%w: %q is not of the form x,y", ErrInvalidAnchor, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: failed to parse x from %q: %w", ErrInvalidAnchor, s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: failed to parse y from %q: %w", ErrInvalidAnchor, s, err)
	}

	anchor := image.Pt(x, y)
	if !anchor.In(image.Rect(0, 0, size, size)) {
		return image.Point{}, fmt.Errorf("%w: %v outside %dx%d kernel", ErrInvalidAnchor, anchor, size, size)
	}
	return anchor, nil
}
