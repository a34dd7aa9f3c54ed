package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "vecgfx",
		Short:        "Render vector drawings to SVG, fuse scripts and draw commands",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newRenderCmd(),
		newGlyphCmd(),
		newSampleCmd(),
		newTokenCmd(),
		newFormatsCmd(),
	)
	return root
}

// renderFlags are shared by commands that produce emitter output.
type renderFlags struct {
	format   string
	unit     string
	scaling  float32
	prologue string
	epilogue string
	output   string
}

func (f *renderFlags) register(cmd *cobra.Command, defaultFormat string) {
	cmd.Flags().StringVarP(&f.format, "format", "f", defaultFormat, "output format")
	cmd.Flags().StringVar(&f.unit, "unit", "", "size unit for the svg header (px or rem)")
	cmd.Flags().Float32Var(&f.scaling, "scaling", 0, "factor applied to the svg width and height")
	cmd.Flags().StringVar(&f.prologue, "prologue", "", "file replacing the built-in script prologue")
	cmd.Flags().StringVar(&f.epilogue, "epilogue", "", "file replacing the built-in script epilogue")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
}

func (f *renderFlags) registry() (*emit.Registry, error) {
	tmpl, err := script.LoadTemplate(f.prologue, f.epilogue)
	if err != nil {
		return nil, err
	}
	return engine.NewRegistry(tmpl), nil
}

// options layers the unit and scaling flags over base.
func (f *renderFlags) options(cmd *cobra.Command, base *emit.Options) (*emit.Options, error) {
	opts := base.Resolve()
	if cmd.Flags().Changed("unit") {
		unit, err := emit.ParseSizeUnit(f.unit)
		if err != nil {
			return nil, err
		}
		opts.Unit = unit
	}
	if cmd.Flags().Changed("scaling") {
		if f.scaling <= 0 {
			return nil, fmt.Errorf("scaling must be positive, got %v", f.scaling)
		}
		opts.Scaling = f.scaling
	}
	return &opts, nil
}

func (f *renderFlags) render(cmd *cobra.Command, doc *document.Drawing) error {
	reg, err := f.registry()
	if err != nil {
		return err
	}
	opts, err := f.options(cmd, doc.Options)
	if err != nil {
		return err
	}
	out, err := engine.RenderDrawing(reg, doc, f.format, opts)
	if err != nil {
		return err
	}
	slog.Debug("rendered drawing", "format", f.format, "items", len(doc.Items), "bytes", len(out))
	return writeOutput(cmd, f.output, []byte(out))
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeDrawing(cmd *cobra.Command, path string, doc *document.Drawing) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, path, append(data, '\n'))
}

// readInput reads a file, or stdin when name is empty or "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
