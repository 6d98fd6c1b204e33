package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fkolbe/jigsaw/pkg/pipeline"
)

// splitOpts holds the command-line flags for the split command.
type splitOpts struct {
	output   string // output directory for piece files
	rows     int    // number of piece rows
	cols     int    // number of piece columns
	seed     int64  // edge layout seed; negative draws a random one
	workers  int    // concurrent piece renders; 0 means one per CPU
	noCache  bool   // disable the piece cache
	refresh  bool   // bypass cached pieces and re-render
	manifest bool   // write manifest.json next to the pieces
}

// splitCommand creates the split command for cutting images into pieces.
//
// Default settings:
//   - grid: 3x3
//   - seed: random (printed so runs can be reproduced)
//   - output: the [output].dir config value, "pieces" by default
func (c *CLI) splitCommand() *cobra.Command {
	opts := splitOpts{
		seed:     pipeline.DefaultSeed,
		manifest: true,
	}

	cmd := &cobra.Command{
		Use:   "split [image]",
		Short: "Cut an image into interlocking puzzle pieces",
		Long: `Split cuts an image into a rows × cols grid of puzzle pieces with
interlocking bump-and-hole edges. Each piece is written as a transparent
PNG whose position in the source image is recorded in manifest.json.

When no image argument is given, an interactive picker lists the image
files in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := resolveInput(args)
			if err != nil {
				return err
			}
			return c.runSplit(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config, else ./pieces)")
	cmd.Flags().IntVarP(&opts.rows, "rows", "r", pipeline.DefaultRows, "number of piece rows")
	cmd.Flags().IntVarP(&opts.cols, "cols", "c", pipeline.DefaultCols, "number of piece columns")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "edge layout seed (negative picks one at random)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent piece renders (0 = one per CPU)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the piece cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render pieces even if cached")
	cmd.Flags().BoolVar(&opts.manifest, "manifest", opts.manifest, "write manifest.json next to the pieces")

	return cmd
}

// resolveInput returns the image path from args, or runs the
// interactive picker when none was given.
func resolveInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return pickImage(".")
}

// runSplit executes the pipeline and writes the results to disk.
func (c *CLI) runSplit(ctx context.Context, input string, opts *splitOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	outDir := opts.output
	if outDir == "" {
		outDir = c.Config.Output.Dir
	}

	workers := opts.workers
	if workers == 0 {
		workers = c.Config.Split.Workers
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Splitting %s into %dx%d pieces", input, opts.rows, opts.cols))
	spinner.Start()

	p := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   input,
		Rows:    opts.rows,
		Cols:    opts.cols,
		Seed:    opts.seed,
		Workers: workers,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(fmt.Sprintf("Split failed: %v", err))
		return err
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Rendered %d pieces", len(result.Pieces)))

	if err := writePieces(result, outDir); err != nil {
		return err
	}
	if opts.manifest {
		if err := pipeline.WriteManifest(pipeline.NewManifest(result, input), outDir); err != nil {
			return err
		}
	}

	printSuccess("Split %s into %d pieces", filepath.Base(input), len(result.Pieces))
	printKeyValue("seed", fmt.Sprintf("%d", result.Seed))
	printKeyValue("tab radius", fmt.Sprintf("%dpx", result.TabRadius))
	printStats(len(result.Pieces), result.CacheInfo.Hits)
	printFile(outDir)
	return nil
}

// writePieces writes each piece raster into dir, creating it if needed.
func writePieces(result *pipeline.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, piece := range result.Pieces {
		path := filepath.Join(dir, piece.Name)
		if err := os.WriteFile(path, piece.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
