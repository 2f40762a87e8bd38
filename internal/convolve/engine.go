package convolve

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rs/zerolog/log"
)

// MaxPixels caps the size of the raster the engine will allocate.
const MaxPixels = 1 << 28

var (
	ErrInvalidSource    = errors.New("invalid source raster")
	ErrInvalidKernel    = errors.New("invalid kernel")
	ErrInvalidAnchor    = errors.New("invalid anchor")
	ErrInvalidBias      = errors.New("invalid bias")
	ErrUnsupportedDepth = errors.New("unsupported raster depth")
	ErrAllocation       = errors.New("raster allocation failed")
)

// Filter cross-correlates a single channel raster with k and returns a new
// raster of the same type, bounds and depth. With the default anchor the
// kernel's top-left cell lands on the output pixel and the window extends
// right and down. src is never modified.
func Filter(src image.Image, k *kernel.Kernel, opts ...Option) (image.Image, error) {
	switch img := src.(type) {
	case *image.Gray:
		out, err := FilterGray(img, k, opts...)
		if err != nil {
			return nil, err
		}
		return out, nil
	case *image.Gray16:
		out, err := FilterGray16(img, k, opts...)
		if err != nil {
			return nil, err
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("%w: no image", ErrInvalidSource)
	default:
		return nil, fmt.Errorf("%w: %T is not a single channel raster", ErrUnsupportedDepth, src)
	}
}

// FilterGray filters an 8-bit raster, saturating results to [0,255].
func FilterGray(src *image.Gray, k *kernel.Kernel, opts ...Option) (*image.Gray, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidSource)
	}
	o, err := prepare(src.Rect, k, opts)
	if err != nil {
		return nil, err
	}

	dst := image.NewGray(src.Rect)
	run(src.Rect.Dx(), src.Rect.Dy(), k, o,
		func(x, y int) float64 {
			return float64(src.Pix[y*src.Stride+x])
		},
		func(x, y int, v float64) {
			dst.Pix[y*dst.Stride+x] = uint8(saturate(v, math.MaxUint8))
		},
	)
	return dst, nil
}

// FilterGray16 filters a 16-bit raster, saturating results to [0,65535].
func FilterGray16(src *image.Gray16, k *kernel.Kernel, opts ...Option) (*image.Gray16, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidSource)
	}
	o, err := prepare(src.Rect, k, opts)
	if err != nil {
		return nil, err
	}

	dst := image.NewGray16(src.Rect)
	run(src.Rect.Dx(), src.Rect.Dy(), k, o,
		func(x, y int) float64 {
			i := y*src.Stride + 2*x
			return float64(uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1]))
		},
		func(x, y int, v float64) {
			s := uint16(saturate(v, math.MaxUint16))
			i := y*dst.Stride + 2*x
			dst.Pix[i] = uint8(s >> 8)
			dst.Pix[i+1] = uint8(s)
		},
	)
	return dst, nil
}

func prepare(bounds image.Rectangle, k *kernel.Kernel, opts []Option) (Options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return o, fmt.Errorf("%w: empty %dx%d raster", ErrInvalidSource, w, h)
	}
	if w > MaxPixels/h {
		return o, fmt.Errorf("%w: %dx%d raster exceeds %d pixels", ErrAllocation, w, h, MaxPixels)
	}

	size := k.Size()
	if size == 0 {
		return o, ErrInvalidKernel
	}
	if !o.Anchor.In(image.Rect(0, 0, size, size)) {
		return o, fmt.Errorf("%w: %v outside %dx%d kernel", ErrInvalidAnchor, o.Anchor, size, size)
	}
	if math.IsNaN(o.Bias) || math.IsInf(o.Bias, 0) {
		return o, fmt.Errorf("%w: %v", ErrInvalidBias, o.Bias)
	}

	log.Debug().
		Int("width", w).
		Int("height", h).
		Int("kernel", size).
		Float64("bias", o.Bias).
		Stringer("anchor", o.Anchor).
		Stringer("border", o.Border).
		Msg("filtering raster")
	return o, nil
}

// run evaluates every output pixel. sample and store take coordinates
// relative to the raster's top-left corner; each output row is written by
// exactly one goroutine.
func run(w, h int, k *kernel.Kernel, o Options, sample func(x, y int) float64, store func(x, y int, v float64)) {
	n := k.Size()
	weights := k.Weights()

	// Column lookups depend only on x+i, so resolve them once.
	cols := make([]int, w+n)
	colOK := make([]bool, w+n)
	for p := range cols {
		cols[p], colOK[p] = o.Border.Index(p-o.Anchor.X, w)
	}

	rows := func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				sum := o.Bias
				for j := 0; j < n; j++ {
					sy, ok := o.Border.Index(y+j-o.Anchor.Y, h)
					if !ok {
						continue
					}
					row := weights[j]
					for i := 0; i < n; i++ {
						if !colOK[x+i] {
							continue
						}
						sum += row[i] * sample(cols[x+i], sy)
					}
				}
				store(x, y, sum)
			}
		}
	}

	if o.Parallel {
		parallel.Line(h, rows)
	} else {
		rows(0, h)
	}
}

// saturate rounds half to even and clamps to [0, limit]. NaN, which only
// arises from opposing infinite products, maps to 0.
func saturate(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.RoundToEven(v)
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
