// Command gotypst is a thin demo driver for the typeset pipeline: it
// builds a document (either a small built-in demo, or one loaded from a
// YAML/TOML description) and writes it out as a PDF file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boergens/typeset/docmodel"
	gofont "github.com/boergens/typeset/font"
	"github.com/boergens/typeset/pdf"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gotypst", flag.ExitOnError)
	output := fs.String("o", "", "output PDF path")
	fs.StringVar(output, "output", "", "output PDF path (long form)")
	docPath := fs.String("doc", "", "YAML or TOML document description (default: built-in demo)")
	regularPath := fs.String("font", "", "regular font file (required)")
	boldPath := fs.String("font-bold", "", "bold font file (optional, demo mode only)")
	italicPath := fs.String("font-italic", "", "italic font file (optional, demo mode only)")
	fontDir := fs.String("font-dir", "", "directory to search for bold/italic variants of -font (demo mode only)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *regularPath == "" {
		return fmt.Errorf("missing required -font flag")
	}

	regular, err := loadFirstFont(*regularPath)
	if err != nil {
		return fmt.Errorf("loading regular font: %w", err)
	}

	fonts := map[string]*gofont.Font{}
	if err := registerFont(fonts, regular); err != nil {
		return err
	}

	var doc *docmodel.Document
	if *docPath != "" {
		if *boldPath != "" || *italicPath != "" || *fontDir != "" {
			return fmt.Errorf("-font-bold/-font-italic/-font-dir only apply to the built-in demo, not -doc")
		}
		doc, err = loadDocument(*docPath, fonts)
		if err != nil {
			return err
		}
	} else {
		var book *gofont.FontBook
		if *fontDir != "" {
			found, err := gofont.DiscoverFonts([]string{*fontDir})
			if err != nil {
				return fmt.Errorf("scanning %s: %w", *fontDir, err)
			}
			book = gofont.NewFontBook()
			book.Add(found...)
		}

		bold := regular
		if *boldPath != "" {
			bold, err = loadFirstFont(*boldPath)
			if err != nil {
				return fmt.Errorf("loading bold font: %w", err)
			}
			if err := registerFont(fonts, bold); err != nil {
				return err
			}
		} else if book != nil {
			if f := book.Select([]string{regular.Info.Family}, gofont.BoldVariant()); f != nil {
				bold = f
				if err := registerFont(fonts, bold); err != nil {
					return err
				}
			}
		}

		italic := regular
		if *italicPath != "" {
			italic, err = loadFirstFont(*italicPath)
			if err != nil {
				return fmt.Errorf("loading italic font: %w", err)
			}
			if err := registerFont(fonts, italic); err != nil {
				return err
			}
		} else if book != nil {
			if f := book.Select([]string{regular.Info.Family}, gofont.ItalicVariant()); f != nil {
				italic = f
				if err := registerFont(fonts, italic); err != nil {
					return err
				}
			}
		}

		var bodyText []string
		if fs.NArg() > 0 {
			data, err := os.ReadFile(fs.Arg(0))
			if err != nil {
				return fmt.Errorf("reading input text: %w", err)
			}
			bodyText = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		}
		doc = demoDocument(fonts, regular, bold, italic, bodyText)
	}

	outPath := *output
	if outPath == "" {
		if *docPath != "" {
			ext := filepath.Ext(*docPath)
			outPath = strings.TrimSuffix(*docPath, ext) + ".pdf"
		} else {
			outPath = "output.pdf"
		}
	}

	data, err := pdf.BuildPDF(doc)
	if err != nil {
		return fmt.Errorf("building PDF: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func loadFirstFont(path string) (*gofont.Font, error) {
	fonts, err := gofont.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(fonts) == 0 {
		return nil, fmt.Errorf("%s: no fonts found", path)
	}
	return fonts[0], nil
}

func registerFont(fonts map[string]*gofont.Font, f *gofont.Font) error {
	name, err := f.PostScriptName()
	if err != nil {
		return fmt.Errorf("reading PostScript name: %w", err)
	}
	fonts[name] = f
	return nil
}

func loadDocument(path string, fonts map[string]*gofont.Font) (*docmodel.Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return docmodel.LoadYAML(path, fonts)
	case ".toml":
		return docmodel.LoadTOML(path, fonts)
	default:
		return nil, fmt.Errorf("%s: unrecognized document format %q (want .yaml or .toml)", path, ext)
	}
}

// demoDocument reproduces the shape of the original command-line example:
// a doubled-size heading, a paragraph mixing regular/bold/italic runs, and
// one block per line of bodyText cycling through all four alignments.
func demoDocument(fonts map[string]*gofont.Font, regular, bold, italic *gofont.Font, bodyText []string) *docmodel.Document {
	const fontSize = 12.0

	style := docmodel.Style{Font: regular, FontSize: fontSize}

	blocks := []docmodel.Block{
		docmodel.NewTextBlock(docmodel.TextBlock{
			Align: docmodel.AlignLeft,
			Inlines: []docmodel.Inline{
				{Text: "Hello, World!", Style: docmodel.Style{Font: regular, FontSize: 2 * fontSize}},
			},
		}),
		docmodel.NewTextBlock(docmodel.TextBlock{
			Align: docmodel.AlignLeft,
			Inlines: []docmodel.Inline{
				{Text: "Regular, ", Style: style},
				{Text: "bold, ", Style: docmodel.Style{Font: bold, FontSize: fontSize}},
				{Text: "or italic?", Style: docmodel.Style{Font: italic, FontSize: fontSize}},
			},
		}),
	}

	aligns := []docmodel.TextAlign{
		docmodel.AlignRight,
		docmodel.AlignLeft,
		docmodel.AlignCenter,
		docmodel.AlignRight,
		docmodel.AlignJustify,
	}
	for i, line := range bodyText {
		blocks = append(blocks, docmodel.NewTextBlock(docmodel.TextBlock{
			Align:   aligns[i%len(aligns)],
			Inlines: []docmodel.Inline{{Text: line, Style: style}},
		}))
	}

	return &docmodel.Document{
		Blocks:       blocks,
		Fonts:        fonts,
		PageWidth:    pdf.A4Width,
		PageHeight:   pdf.A4Height,
		MarginTop:    72,
		MarginRight:  72,
		MarginBottom: 72,
		MarginLeft:   72,
	}
}
