package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/linear-filter/internal/convolve"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rm-hull/linear-filter/internal/raster"
	"github.com/rm-hull/linear-filter/internal/raster/stage"
	"github.com/rs/zerolog/log"
)

var maxUploadBytes int64 = 32 << 20

var errMissingField = errors.New("missing form field")

// Register mounts the filter endpoints under /v1.
func Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/filter", filterHandler)
	v1.POST("/kernel", kernelHandler)
}

type kernelResponse struct {
	Size    int         `json:"size"`
	Sum     float64     `json:"sum"`
	Weights [][]float64 `json:"weights"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// filterHandler expects multipart fields kernel (file or text) and image
// (file), plus optional delta, anchor, border and compare.
func filterHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	k, err := readKernel(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	opts, compare, err := readOptions(c, k.Size())
	if err != nil {
		badRequest(c, err)
		return
	}

	img, err := readImage(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := img.Pipeline(&stage.GreyscaleStage{}); err != nil {
		badRequest(c, err)
		return
	}
	original := img.Img

	if err := img.Pipeline(&stage.ConvolveStage{Kernel: k, Options: opts}); err != nil {
		badRequest(c, err)
		return
	}

	var out image.Image = img.Img
	if compare {
		out = raster.SideBySide(original, img.Img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		log.Error().Err(err).Msg("failed to encode filtered image")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to encode filtered image"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func kernelHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	k, err := readKernel(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, kernelResponse{
		Size:    k.Size(),
		Sum:     k.Sum(),
		Weights: k.Weights(),
	})
}

func readKernel(c *gin.Context) (*kernel.Kernel, error) {
	fh, err := c.FormFile("kernel")
	if err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	if fh != nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open kernel upload: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		return kernel.Load(f)
	}

	text := c.PostForm("kernel")
	if text == "" {
		return nil, fmt.Errorf("%w: kernel", errMissingField)
	}
	return kernel.Parse(text)
}

func readImage(c *gin.Context) (*raster.Raster, error) {
	fh, err := c.FormFile("image")
	if isMissingFile(err) {
		return nil, fmt.Errorf("%w: image", errMissingField)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image upload: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return raster.NewFromReader(f)
}

func readOptions(c *gin.Context, size int) ([]convolve.Option, bool, error) {
	delta, err := strconv.ParseFloat(c.DefaultPostForm("delta", "0"), 64)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse delta: %w", err)
	}

	anchor, err := convolve.ParseAnchor(c.PostForm("anchor"), size)
	if err != nil {
		return nil, false, err
	}

	border, err := convolve.ParseBorderMode(c.PostForm("border"))
	if err != nil {
		return nil, false, err
	}

	compare, err := strconv.ParseBool(c.DefaultPostForm("compare", "false"))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse compare: %w", err)
	}

	return []convolve.Option{
		convolve.WithBias(delta),
		convolve.WithAnchor(anchor),
		convolve.WithBorder(border),
	}, compare, nil
}

// isMissingFile reports a form that parsed but has no such file, including a
// body that is not multipart at all.
func isMissingFile(err error) bool {
	return errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)
}

func badRequest(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	log.Warn().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("rejected request")
	c.JSON(status, errorResponse{Error: err.Error()})
}
