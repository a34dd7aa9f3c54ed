package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inamate/vecgfx/internal/auth"
	"github.com/inamate/vecgfx/internal/config"
	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/glyph"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
	"github.com/inamate/vecgfx/internal/typeid"
)

func newRenderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render [drawing.json]",
		Short: "Render a drawing document",
		Long:  "Render a drawing document read from a file, or from stdin when no file or \"-\" is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return fmt.Errorf("read drawing: %w", err)
			}
			doc, err := document.Parse(data)
			if err != nil {
				return err
			}
			return f.render(cmd, doc)
		},
	}
	f.register(cmd, "svg")
	return cmd
}

func newGlyphCmd() *cobra.Command {
	var (
		f        renderFlags
		fontPath string
		size     float32
		x, y     float32
		cached   bool
	)
	cmd := &cobra.Command{
		Use:   "glyph <text>",
		Short: "Outline text with a font",
		Long:  "Outline text with a TrueType or OpenType font. The json format prints the drawing document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("size must be positive, got %v", size)
			}

			var face *glyph.Face
			var err error
			if fontPath != "" {
				face, err = glyph.LoadFace(fontPath, size)
			} else {
				face, err = glyph.DefaultFace(size)
			}
			if err != nil {
				return err
			}

			fill := graphic.FillStyle(graphic.Black)
			var items graphic.Items
			if cached {
				items, err = face.Items(args[0], x, y, graphic.NoStroke, fill)
			} else {
				var segs path.Segments
				segs, err = face.Text(args[0], x, y)
				if len(segs) > 0 {
					items = graphic.Items{graphic.Path{Segments: segs, Fill: fill}}
				}
			}
			if err != nil {
				return err
			}

			doc := document.NewEmptyDrawing(typeid.NewDrawingID(), args[0])
			doc.Items = document.FromItems(items)
			if f.format == "json" {
				return writeDrawing(cmd, f.output, doc)
			}
			return f.render(cmd, doc)
		},
	}
	f.register(cmd, "json")
	cmd.Flags().StringVar(&fontPath, "font", "", "font file (default Go Regular)")
	cmd.Flags().Float32Var(&size, "size", 32, "font size in drawing units")
	cmd.Flags().Float32Var(&x, "x", 0, "baseline start x")
	cmd.Flags().Float32Var(&y, "y", 0, "baseline start y")
	cmd.Flags().BoolVar(&cached, "cached", false, "emit one cached path per glyph")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample drawing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDrawing(cmd, output, document.NewSampleDrawing(""))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := engine.NewRegistry(script.DefaultTemplate())
			for _, name := range reg.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, reg.ContentType(name))
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = typeid.NewUserID()
			}
			if ttl <= 0 {
				ttl = auth.DefaultTokenTTL
			}

			token, err := auth.NewService(cfg.JWTSecret).IssueToken(auth.User{ID: userID, DisplayName: name}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (default a new one)")
	cmd.Flags().StringVar(&name, "name", "CLI", "display name")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}
