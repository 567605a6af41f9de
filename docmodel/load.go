package docmodel

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/boergens/typeset/font"
	"gopkg.in/yaml.v3"
)

// fileDocument mirrors Document as a serializable shape: blocks reference
// fonts by name instead of holding a *font.Font directly, since neither
// YAML nor TOML can carry a parsed font face.
type fileDocument struct {
	PageWidth  float64 `yaml:"page_width" toml:"page_width"`
	PageHeight float64 `yaml:"page_height" toml:"page_height"`

	MarginTop    float64 `yaml:"margin_top" toml:"margin_top"`
	MarginRight  float64 `yaml:"margin_right" toml:"margin_right"`
	MarginBottom float64 `yaml:"margin_bottom" toml:"margin_bottom"`
	MarginLeft   float64 `yaml:"margin_left" toml:"margin_left"`

	ParagraphGap float64 `yaml:"paragraph_gap" toml:"paragraph_gap"`

	Blocks []fileBlock `yaml:"blocks" toml:"blocks"`
}

type fileBlock struct {
	Align   string       `yaml:"align" toml:"align"`
	Inlines []fileInline `yaml:"inlines" toml:"inlines"`
}

type fileInline struct {
	Text     string  `yaml:"text" toml:"text"`
	Font     string  `yaml:"font" toml:"font"`
	FontSize float64 `yaml:"font_size" toml:"font_size"`
}

// LoadYAML reads a document description from a YAML file, resolving each
// inline's font name against fonts. Every font a block references must be
// present in fonts; a missing one is reported with the offending name and
// the file path, the same failure mode layout itself raises for a block
// built in Go, just surfaced earlier.
func LoadYAML(path string, fonts map[string]*font.Font) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docmodel: load %s: %w", path, err)
	}
	var fd fileDocument
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("docmodel: load %s: %w", path, err)
	}
	return fd.toDocument(path, fonts)
}

// LoadTOML reads a document description from a TOML file; see LoadYAML.
func LoadTOML(path string, fonts map[string]*font.Font) (*Document, error) {
	var fd fileDocument
	if _, err := toml.DecodeFile(path, &fd); err != nil {
		return nil, fmt.Errorf("docmodel: load %s: %w", path, err)
	}
	return fd.toDocument(path, fonts)
}

func (fd fileDocument) toDocument(path string, fonts map[string]*font.Font) (*Document, error) {
	doc := &Document{
		Fonts:        fonts,
		PageWidth:    fd.PageWidth,
		PageHeight:   fd.PageHeight,
		MarginTop:    fd.MarginTop,
		MarginRight:  fd.MarginRight,
		MarginBottom: fd.MarginBottom,
		MarginLeft:   fd.MarginLeft,
		ParagraphGap: fd.ParagraphGap,
	}

	for bi, fb := range fd.Blocks {
		align, err := parseAlign(fb.Align)
		if err != nil {
			return nil, fmt.Errorf("docmodel: load %s: block %d: %w", path, bi, err)
		}

		tb := TextBlock{Align: align}
		for ii, fi := range fb.Inlines {
			f, ok := fonts[fi.Font]
			if !ok {
				return nil, fmt.Errorf("docmodel: load %s: block %d inline %d: font %q not found", path, bi, ii, fi.Font)
			}
			tb.Inlines = append(tb.Inlines, Inline{
				Text:  fi.Text,
				Style: Style{Font: f, FontSize: fi.FontSize},
			})
		}
		doc.Blocks = append(doc.Blocks, NewTextBlock(tb))
	}

	return doc, nil
}

func parseAlign(s string) (TextAlign, error) {
	switch s {
	case "", "left":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	case "justify":
		return AlignJustify, nil
	default:
		return 0, fmt.Errorf("unknown alignment %q", s)
	}
}
