package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tabscript/pkg/host"
	"tabscript/pkg/render"
)

type runOptions struct {
	clicks   []string
	dumpHTML bool
	strict   bool
	expect   string
}

func newRunCmd(c *cli) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <page>",
		Short: "Load a page, run its scripts and save its canvases",
		Long: `Load a page from a path, an http(s) URL or a data: URL, run its scripts
for the configured duration, optionally click elements, then write every
drawn-on canvas to the output directory as PNG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.Duration("duration", 0, "how long to let timers and frames run (default from config)")
	flags.String("out", "", "directory for canvas PNGs (default from config)")
	flags.StringArrayVar(&opts.clicks, "click", nil, "CSS selector to click after the page settles (repeatable)")
	flags.BoolVar(&opts.dumpHTML, "html", false, "print the final document")
	flags.BoolVar(&opts.strict, "strict", false, "fail when any script raised an error")
	flags.StringVar(&opts.expect, "expect", "", "directory of reference PNGs to compare the canvases against")
	_ = c.v.BindPFlag("run.duration", flags.Lookup("duration"))
	_ = c.v.BindPFlag("run.output_dir", flags.Lookup("out"))
	return cmd
}

func (c *cli) run(cmd *cobra.Command, page string, opts *runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	tab, err := host.Open(ctx, c.cfg.Host, page,
		host.WithLogger(c.logger),
		host.WithConsole(func(line string) { fmt.Fprintln(out, line) }))
	if err != nil {
		return err
	}
	defer tab.Close()
	stop := context.AfterFunc(ctx, tab.Close)
	defer stop()

	settle := func() error {
		err := tab.RunFor(ctx, c.cfg.Run.Duration)
		if errors.Is(err, host.ErrClosed) {
			return nil
		}
		return err
	}
	if err := settle(); err != nil {
		return err
	}
	if len(opts.clicks) > 0 {
		for _, sel := range opts.clicks {
			if err := tab.ClickSelector(sel); err != nil {
				return fmt.Errorf("click %s: %w", sel, err)
			}
		}
		if err := settle(); err != nil {
			return err
		}
	}

	written, err := writeCanvases(tab, c.cfg.Run.OutputDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		c.logger.Info("canvas written", zap.String("path", path))
	}
	for _, nav := range tab.Navigations() {
		fmt.Fprintf(cmd.ErrOrStderr(), "navigation requested: %s\n", nav)
	}
	if opts.dumpHTML {
		doc, err := tab.HTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc)
	}

	if opts.expect != "" {
		if err := c.compareCanvases(cmd, written, opts.expect); err != nil {
			return err
		}
	}

	scriptErrs := tab.Errors()
	for _, e := range scriptErrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "script error: %v\n", e)
	}
	if opts.strict && len(scriptErrs) > 0 {
		return fmt.Errorf("%d script error(s)", len(scriptErrs))
	}
	return nil
}

// writeCanvases saves each drawn-on canvas as <id>.png, or canvas-N.png
// when it has no id.
func writeCanvases(tab *host.Tab, dir string) ([]string, error) {
	canvases, err := tab.Canvases()
	if err != nil || len(canvases) == 0 {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var written []string
	for i, cv := range canvases {
		name := cv.ID
		if name == "" {
			name = "canvas-" + strconv.Itoa(i)
		}
		data, err := tab.CanvasPNG(cv.Handle)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// compareCanvases checks each written canvas against the file of the same
// name in dir. A diff image is saved next to every mismatching canvas.
func (c *cli) compareCanvases(cmd *cobra.Command, written []string, dir string) error {
	var failed []string
	for _, path := range written {
		name := filepath.Base(path)
		expected, err := render.LoadPNG(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: no reference: %v\n", name, err)
			failed = append(failed, name)
			continue
		}
		actual, err := render.LoadPNG(path)
		if err != nil {
			return err
		}
		res, err := render.Compare(actual, expected, render.DefaultCompareOptions())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
			failed = append(failed, name)
			continue
		}
		if res.Match {
			c.logger.Debug("canvas matches reference", zap.String("canvas", name))
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d of %d pixels differ (max channel difference %d)\n",
			name, res.DifferentPixels, res.TotalPixels, res.MaxDifference)
		failed = append(failed, name)
		diffPath := strings.TrimSuffix(path, ".png") + "-diff.png"
		if err := writeImage(diffPath, res.Diff); err != nil {
			c.logger.Warn("could not save diff", zap.String("path", diffPath), zap.Error(err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d canvas(es) differ from reference: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func writeImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
