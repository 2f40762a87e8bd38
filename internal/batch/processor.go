package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rm-hull/linear-filter/internal/convolve"
	"github.com/rm-hull/linear-filter/internal/kernel"
	"github.com/rm-hull/linear-filter/internal/raster"
	"github.com/rm-hull/linear-filter/internal/raster/stage"
	"github.com/rs/zerolog/log"
)

// ErrOutputCollision reports two inputs that differ only by extension.
var ErrOutputCollision = errors.New("output name collision")

type Processor struct {
	startTime time.Time
	endTime   time.Time
	inputDir  string
	outputDir string
	poolSize  int
	maxJobs   int
	overwrite bool
	jobs      chan string
	results   chan error
	files     []string
	pipeline  []raster.PipelineStage
}

// NewProcessor prepares a filter run over every image file directly inside
// inputDir, writing PNG results with the same base name into outputDir.
func NewProcessor(k *kernel.Kernel, inputDir, outputDir string, poolSize int, overwrite bool, opts ...convolve.Option) (*Processor, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	if k == nil {
		return nil, convolve.ErrInvalidKernel
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}

	files := make([]string, 0, len(entries))
	outputs := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !raster.IsImageFile(entry.Name()) {
			continue
		}
		name := outputName(entry.Name())
		if other, ok := outputs[name]; ok {
			return nil, fmt.Errorf("%w: %s and %s would both be written to %s", ErrOutputCollision, other, entry.Name(), name)
		}
		outputs[name] = entry.Name()
		files = append(files, filepath.Join(inputDir, entry.Name()))
	}

	log.Info().Msgf("Directory %s contains %d images", inputDir, len(files))
	if len(files) == 0 {
		return nil, errors.New("no images to filter")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outputDir, err)
	}

	return &Processor{
		startTime: time.Now(),
		inputDir:  inputDir,
		outputDir: outputDir,
		poolSize:  poolSize,
		maxJobs:   -1,
		overwrite: overwrite,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
		pipeline: []raster.PipelineStage{
			&stage.GreyscaleStage{},
			&stage.ConvolveStage{Kernel: k, Options: opts},
		},
	}, nil
}

// Limit caps the number of files processed; n <= 0 processes all of them.
func (p *Processor) Limit(n int) {
	if n <= 0 {
		n = -1
	}
	p.maxJobs = n
}

// DispatchJobs sends files to the jobs channel for processing by workers.
// When maxJobs is greater than zero, it limits the number of jobs dispatched,
// hence set to -1 to dispatch all jobs.
func (p *Processor) DispatchJobs() {
	go func() {
		for n, file := range p.files {
			if p.maxJobs > 0 && n >= p.maxJobs {
				break
			}
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers() {
	log.Info().Msgf("Starting filtering images with pool size: %d", p.poolSize)

	for i := 0; i < p.poolSize; i++ {
		go p.worker(i)
	}
}

func (p *Processor) worker(i int) {
	log.Debug().Msgf("Worker %d started", i)
	for file := range p.jobs {
		p.results <- p.processFile(file)
	}
	log.Debug().Msgf("Worker %d finished", i)
}

// Run starts the workers, dispatches every file and waits for completion.
func (p *Processor) Run() []error {
	p.StartWorkers()
	p.DispatchJobs()
	return p.Wait()
}

func (p *Processor) outputPath(file string) string {
	return filepath.Join(p.outputDir, outputName(file))
}

// outputName swaps the extension of file for .png.
func outputName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

func (p *Processor) processFile(file string) error {
	filename := p.outputPath(file)

	// if the output already exists, skip processing
	if !p.overwrite {
		if _, err := os.Stat(filename); err == nil {
			log.Debug().Msgf("Skipping %s, %s exists", file, filename)
			return nil
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	img, err := raster.Open(file)
	if err != nil {
		return err
	}

	if err := img.Pipeline(p.pipeline...); err != nil {
		return fmt.Errorf("failed to filter %s: %w", file, err)
	}

	tmpFile, err := os.CreateTemp(p.outputDir, "filter-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := img.Write(tmpFile); err != nil {
		return fmt.Errorf("failed to write filtered image to temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false // Successfully renamed, don't delete
	return nil
}

func (p *Processor) Wait() []error {
	waitFor := p.maxJobs
	if waitFor < 0 || waitFor > len(p.files) {
		waitFor = len(p.files)
	}
	log.Info().Msgf("Waiting for %d images to be filtered", waitFor)

	errs := make([]error, 0, 10)
	for i := 0; i < waitFor; i++ {
		err := <-p.results
		if err != nil {
			errs = append(errs, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Info().Msgf("All images filtered in %s (errors=%d)", elapsed, len(errs))
	return errs
}
