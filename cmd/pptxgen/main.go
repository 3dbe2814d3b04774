// Package main provides the pptxgen CLI: it reads a JSON deck description
// and exports a .pptx package.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pptx "github.com/logicossoftware/go-pptx"
)

var (
	outputPath string
	creator    string
	store      bool
	quiet      bool
)

// deckFile is the on-disk JSON shape consumed by pptxgen.
type deckFile struct {
	Title  string `json:"title"`
	Slides []struct {
		Title  string `json:"title"`
		Body   string `json:"body"`
		Image  string `json:"image,omitempty"` // path to a PNG on disk
		Design struct {
			Layout     string `json:"layout"`
			Background string `json:"background"`
			Text       string `json:"text"`
			FontSize   string `json:"fontSize"`
			FontFamily string `json:"fontFamily"`
			ImagePos   string `json:"imagePosition"`
			Bullet     string `json:"bullet"`
		} `json:"design"`
	} `json:"slides"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pptxgen [deck.json]",
		Short: "Export a slide deck description to a .pptx package",
		Long: `pptxgen reads a JSON deck description (title, slides, per-slide design)
and writes a presentation package openable by PowerPoint, Keynote, and
Google Slides.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "deck.pptx", "Output .pptx path")
	rootCmd.Flags().StringVar(&creator, "creator", "", "Creator written to the package properties")
	rootCmd.Flags().BoolVar(&store, "store", false, "Store archive entries uncompressed")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read deck file: %w", err)
	}
	var df deckFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return fmt.Errorf("parse deck file: %w", err)
	}

	deck := &pptx.Deck{Title: df.Title}
	for i, s := range df.Slides {
		slide := pptx.Slide{
			Number: i + 1,
			Title:  s.Title,
			Body:   s.Body,
		}
		slide.Design, err = parseDesign(s.Design.Background, s.Design.Text, s.Design.FontSize, s.Design.FontFamily, s.Design.ImagePos, s.Design.Bullet, s.Design.Layout)
		if err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
		if s.Image != "" {
			b, err := os.ReadFile(s.Image)
			if err != nil {
				return fmt.Errorf("slide %d: read image: %w", i+1, err)
			}
			slide.Image = &pptx.SlideImage{Source: pptx.ImageBytes(b)}
		}
		deck.Slides = append(deck.Slides, slide)
	}

	opts := []pptx.ExportOption{pptx.WithCreator(creator)}
	if store {
		opts = append(opts, pptx.WithCompressionMethod(pptx.CompressionStore))
	}
	if !quiet {
		opts = append(opts, pptx.WithProgress(func(current, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d", current, total)
			if current == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	if err := pptx.Export(context.Background(), deck, outputPath, opts...); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("Wrote %s (%d slides)\n", outputPath, len(deck.Slides))
	}
	return nil
}

func parseDesign(bg, text, fontSize, family, imagePos, bullet, layout string) (pptx.DesignSpec, error) {
	d := pptx.DesignSpec{
		Layout:          layout,
		BackgroundColor: orDefault(bg, "FFFFFF"),
		TextColor:       orDefault(text, "000000"),
		FontFamily:      orDefault(family, "Calibri"),
	}
	switch strings.ToLower(fontSize) {
	case "", "medium":
		d.FontSize = pptx.TierMedium
	case "small":
		d.FontSize = pptx.TierSmall
	case "large":
		d.FontSize = pptx.TierLarge
	case "extralarge", "extra-large":
		d.FontSize = pptx.TierExtraLarge
	default:
		return d, fmt.Errorf("unknown font size %q", fontSize)
	}
	switch strings.ToLower(imagePos) {
	case "", "right":
		d.ImagePos = pptx.ImageRight
	case "left":
		d.ImagePos = pptx.ImageLeft
	case "top":
		d.ImagePos = pptx.ImageTop
	case "bottom":
		d.ImagePos = pptx.ImageBottom
	case "center":
		d.ImagePos = pptx.ImageCenter
	default:
		return d, fmt.Errorf("unknown image position %q", imagePos)
	}
	switch strings.ToLower(bullet) {
	case "", "disc":
		d.Bullet = pptx.BulletDisc
	case "circle":
		d.Bullet = pptx.BulletCircle
	case "square":
		d.Bullet = pptx.BulletSquare
	case "dash":
		d.Bullet = pptx.BulletDash
	case "arrow":
		d.Bullet = pptx.BulletArrow
	case "checkmark", "check":
		d.Bullet = pptx.BulletCheckmark
	case "none":
		d.Bullet = pptx.BulletNone
	default:
		return d, fmt.Errorf("unknown bullet style %q", bullet)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
