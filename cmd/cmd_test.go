package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rm-hull/linear-filter/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGray(t *testing.T, dir, name string, w, h int, v uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	path := filepath.Join(dir, name)
	require.NoError(t, raster.Save(path, img))
	return path
}

func writeColour(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, raster.Save(path, img))
	return path
}

func readGray(t *testing.T, path string) *image.Gray {
	t.Helper()
	r, err := raster.Open(path)
	require.NoError(t, err)
	gray, ok := r.Img.(*image.Gray)
	require.True(t, ok, "expected *image.Gray, got %T", r.Img)
	return gray
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "photos/cat-filtered.png", DefaultOutputPath("photos/cat.jpg"))
	assert.Equal(t, "input-filtered.png", DefaultOutputPath("input.png"))
	assert.Equal(t, "noext-filtered.png", DefaultOutputPath("noext"))
}

func TestFilter_UniformBox(t *testing.T) {
	dir := t.TempDir()
	img := writeGray(t, dir, "in.png", 4, 3, 90)
	out := filepath.Join(dir, "out.png")

	err := Filter(FilterOptions{
		KernelPath: filepath.Join("..", "testdata", "box2x2.csv"),
		ImagePath:  img,
		OutputPath: out,
	})
	require.NoError(t, err)

	gray := readGray(t, out)
	assert.Equal(t, image.Rect(0, 0, 4, 3), gray.Bounds())
	for _, v := range gray.Pix {
		assert.Equal(t, uint8(90), v)
	}
}

func TestFilter_DefaultOutputAndExtras(t *testing.T) {
	dir := t.TempDir()
	img := writeGray(t, dir, "in.png", 3, 2, 40)
	kern := writeFile(t, dir, "identity.csv", "1\n")
	compare := filepath.Join(dir, "compare.png")
	animate := filepath.Join(dir, "flip.png")

	err := Filter(FilterOptions{
		KernelPath: kern,
		ImagePath:  img,
		Compare:    compare,
		Animate:    animate,
		Delta:      10,
		Border:     "replicate",
	})
	require.NoError(t, err)

	filtered := readGray(t, filepath.Join(dir, "in-filtered.png"))
	assert.Equal(t, color.Gray{Y: 50}, filtered.GrayAt(2, 1))

	side := readGray(t, compare)
	assert.Equal(t, image.Rect(0, 0, 6, 2), side.Bounds())
	assert.Equal(t, color.Gray{Y: 40}, side.GrayAt(0, 0))
	assert.Equal(t, color.Gray{Y: 50}, side.GrayAt(5, 1))

	data, err := os.ReadFile(animate)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestFilter_Failures(t *testing.T) {
	dir := t.TempDir()
	img := writeGray(t, dir, "in.png", 2, 2, 1)
	good := writeFile(t, dir, "good.csv", "1,0\n0,1\n")
	out := filepath.Join(dir, "out.png")

	tests := []struct {
		name    string
		opts    FilterOptions
		wantErr error
	}{
		{
			name:    "missing image",
			opts:    FilterOptions{KernelPath: good, ImagePath: filepath.Join(dir, "nope.png"), OutputPath: out},
			wantErr: raster.ErrImageRead,
		},
		{
			name:    "malformed kernel",
			opts:    FilterOptions{KernelPath: writeFile(t, dir, "bad.csv", "1,,2\n"), ImagePath: img, OutputPath: out},
			wantErr: kernel.ErrFormat,
		},
		{
			name:    "short kernel",
			opts:    FilterOptions{KernelPath: writeFile(t, dir, "short.csv", "1,2\n3\n"), ImagePath: img, OutputPath: out},
			wantErr: kernel.ErrSize,
		},
		{
			name:    "missing kernel",
			opts:    FilterOptions{KernelPath: filepath.Join(dir, "nope.csv"), ImagePath: img, OutputPath: out},
			wantErr: kernel.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Filter(tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, out)
		})
	}

	t.Run("bad border", func(t *testing.T) {
		err := Filter(FilterOptions{KernelPath: good, ImagePath: img, OutputPath: out, Border: "mirror"})
		assert.Error(t, err)
		assert.NoFileExists(t, out)
	})
}

func TestShowKernel(t *testing.T) {
	var buf bytes.Buffer
	err := ShowKernel(filepath.Join("..", "testdata", "sharpen.csv"), false, &buf)
	require.NoError(t, err)
	assert.Equal(t, "# 3x3 kernel, sum 1\n0,-1,0\n-1,5,-1\n0,-1,0\n", buf.String())

	dir := t.TempDir()
	buf.Reset()
	err = ShowKernel(writeFile(t, dir, "bad.csv", "x"), false, &buf)
	assert.ErrorIs(t, err, kernel.ErrFormat)
	assert.Empty(t, buf.String())
}

func TestBatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "filtered")
	writeGray(t, in, "a.png", 3, 3, 20)
	writeGray(t, in, "b.png", 3, 3, 30)

	err := Batch(BatchOptions{
		KernelPath: filepath.Join("..", "testdata", "box2x2.csv"),
		InputDir:   in,
		OutputDir:  out,
		Workers:    2,
		Delta:      1,
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(21), readGray(t, filepath.Join(out, "a.png")).GrayAt(1, 1).Y)
	assert.Equal(t, uint8(31), readGray(t, filepath.Join(out, "b.png")).GrayAt(1, 1).Y)
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := NewRouter(false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kernel", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilter_ColourInputs(t *testing.T) {
	grey := color.RGBA{R: 90, G: 90, B: 90, A: 255}

	for _, name := range []string{"in.png", "in.jpg", "in.bmp"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			img := writeColour(t, dir, name, 4, 3, grey)
			out := filepath.Join(dir, "out.png")

			err := Filter(FilterOptions{
				KernelPath: filepath.Join("..", "testdata", "box2x2.csv"),
				ImagePath:  img,
				OutputPath: out,
			})
			require.NoError(t, err)

			gray := readGray(t, out)
			assert.Equal(t, image.Rect(0, 0, 4, 3), gray.Bounds())
			assert.InDelta(t, 90, int(gray.GrayAt(1, 1).Y), 2)
		})
	}
}

func TestBatch_Permissive(t *testing.T) {
	in := t.TempDir()
	writeGray(t, in, "a.png", 3, 3, 20)
	kern := writeFile(t, t.TempDir(), "huge.csv", "1,"+strings.Repeat("9", 400)+"\n0,0\n")

	out := filepath.Join(t.TempDir(), "strict")
	err := Batch(BatchOptions{KernelPath: kern, InputDir: in, OutputDir: out, Workers: 1})
	assert.ErrorIs(t, err, kernel.ErrFormat)
	assert.NoDirExists(t, out)

	out = filepath.Join(t.TempDir(), "permissive")
	err = Batch(BatchOptions{KernelPath: kern, InputDir: in, OutputDir: out, Workers: 1, Permissive: true})
	require.NoError(t, err)
	assert.Equal(t, uint8(20), readGray(t, filepath.Join(out, "a.png")).GrayAt(1, 1).Y)
}
