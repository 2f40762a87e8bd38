package cmd

import (
	"errors"
	"fmt"

	"github.com/rm-hull/linear-filter/internal"
	"github.com/rm-hull/linear-filter/internal/batch"
	"github.com/rm-hull/linear-filter/internal/kernel"
)

type BatchOptions struct {
	KernelPath string
	InputDir   string
	OutputDir  string
	Workers    int
	Limit      int
	Overwrite  bool
	Delta      float64
	Anchor     string
	Border     string
	Permissive bool
}

// Batch filters every image in InputDir into OutputDir.
func Batch(opts BatchOptions) error {
	internal.ShowVersion()
	internal.EnvironmentVars()

	var loadOpts []kernel.LoadOption
	if opts.Permissive {
		loadOpts = append(loadOpts, kernel.Permissive())
	}
	k, err := kernel.LoadFile(opts.KernelPath, loadOpts...)
	if err != nil {
		return err
	}

	convolveOpts, err := convolveOptions(k, opts.Delta, opts.Anchor, opts.Border)
	if err != nil {
		return err
	}

	processor, err := batch.NewProcessor(k, opts.InputDir, opts.OutputDir, opts.Workers, opts.Overwrite, convolveOpts...)
	if err != nil {
		return fmt.Errorf("failed to create batch processor: %w", err)
	}
	processor.Limit(opts.Limit)

	return errors.Join(processor.Run()...)
}
