package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rm-hull/linear-filter/cmd"
	"github.com/rm-hull/linear-filter/internal"
	"github.com/rm-hull/linear-filter/internal/config"
	"github.com/rm-hull/linear-filter/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var logLevel string
	var filterOpts cmd.FilterOptions
	var batchOpts cmd.BatchOptions
	var permissive bool
	var port int
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "linear-filter",
		Long:          `Apply a square linear filter kernel to a greyscale image`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Setup(os.Stderr, logLevel); err != nil {
				return err
			}
			if envErr != nil {
				log.Debug().Msg("No .env file found")
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")

	filterCmd := &cobra.Command{
		Use:   "filter --kernel <csv> [--image <path>] [--output <path>]",
		Short: "Filter a single image",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Filter(filterOpts)
		},
	}
	filterCmd.Flags().StringVar(&filterOpts.KernelPath, "kernel", "", "Path to kernel description file")
	filterCmd.Flags().StringVar(&filterOpts.ImagePath, "image", cfg.DefaultImage, "Path to source image")
	filterCmd.Flags().StringVar(&filterOpts.OutputPath, "output", "", "Path to write filtered image (default <image>-filtered.png)")
	filterCmd.Flags().StringVar(&filterOpts.Compare, "compare", "", "Also write original and filtered side by side to this path")
	filterCmd.Flags().StringVar(&filterOpts.Animate, "animate", "", "Also write an APNG flipping between original and filtered to this path")
	filterCmd.Flags().Float64Var(&filterOpts.Delta, "delta", 0, "Value added to every filtered pixel")
	filterCmd.Flags().StringVar(&filterOpts.Anchor, "anchor", "", "Kernel anchor as x,y or center (default 0,0)")
	filterCmd.Flags().StringVar(&filterOpts.Border, "border", cfg.Border, "Border mode: reflect101, reflect, replicate, wrap or constant")
	filterCmd.Flags().BoolVar(&filterOpts.Permissive, "permissive", false, "Treat unconvertible kernel values as zero")
	_ = filterCmd.MarkFlagRequired("kernel")

	kernelCmd := &cobra.Command{
		Use:   "kernel <csv>",
		Short: "Validate and print a kernel description",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.ShowKernel(args[0], permissive, os.Stdout)
		},
	}
	kernelCmd.Flags().BoolVar(&permissive, "permissive", false, "Treat unconvertible kernel values as zero")

	batchCmd := &cobra.Command{
		Use:   "batch --kernel <csv> --input <dir> --output <dir>",
		Short: "Filter every image in a directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Batch(batchOpts)
		},
	}
	batchCmd.Flags().StringVar(&batchOpts.KernelPath, "kernel", "", "Path to kernel description file")
	batchCmd.Flags().StringVar(&batchOpts.InputDir, "input", "", "Directory of source images")
	batchCmd.Flags().StringVar(&batchOpts.OutputDir, "output", "", "Directory for filtered images")
	batchCmd.Flags().IntVar(&batchOpts.Workers, "workers", cfg.Workers, "Number of concurrent workers")
	batchCmd.Flags().IntVar(&batchOpts.Limit, "limit", 0, "Maximum number of images to filter (0 for all)")
	batchCmd.Flags().BoolVar(&batchOpts.Overwrite, "overwrite", false, "Replace existing output files")
	batchCmd.Flags().Float64Var(&batchOpts.Delta, "delta", 0, "Value added to every filtered pixel")
	batchCmd.Flags().StringVar(&batchOpts.Anchor, "anchor", "", "Kernel anchor as x,y or center (default 0,0)")
	batchCmd.Flags().StringVar(&batchOpts.Border, "border", cfg.Border, "Border mode: reflect101, reflect, replicate, wrap or constant")
	batchCmd.Flags().BoolVar(&batchOpts.Permissive, "permissive", false, "Treat unconvertible kernel values as zero")
	_ = batchCmd.MarkFlagRequired("kernel")
	_ = batchCmd.MarkFlagRequired("input")
	_ = batchCmd.MarkFlagRequired("output")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.ApiServer(port, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", cfg.Port, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(internal.Version())
		},
	}

	rootCmd.AddCommand(filterCmd, kernelCmd, batchCmd, apiServerCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("linear-filter failed")
		os.Exit(1)
	}
}
