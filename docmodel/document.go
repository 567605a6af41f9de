// Package docmodel is the input data model for the document-to-PDF
// pipeline: a small tree of styled text blocks, taken as given by the
// caller rather than parsed from markup.
package docmodel

import "github.com/boergens/typeset/font"

// TextAlign selects how a text block's lines are positioned within the
// page's content width.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// Style describes the font and size a run of text is set in.
type Style struct {
	Font     *font.Font
	FontSize float64
}

// Inline is a single run of text sharing one style.
type Inline struct {
	Text  string
	Style Style
}

// TextBlock is a paragraph: one or more styled runs, laid out together
// and broken into lines as a unit.
type TextBlock struct {
	Inlines []Inline
	Align   TextAlign
}

// Block is one element of a document's body. Text is its only variant;
// a Block with a nil Text is skipped by layout.
type Block struct {
	Text *TextBlock
}

// NewTextBlock wraps a TextBlock as a Block.
func NewTextBlock(tb TextBlock) Block {
	return Block{Text: &tb}
}

// Document is the complete input to the layout and PDF-export pipeline.
type Document struct {
	Blocks []Block

	// Fonts maps a font name to the loaded font. Populated by the
	// caller; the pipeline does not load fonts itself. Style.Font holds
	// the *font.Font directly, so layout does not look fonts up here.
	Fonts map[string]*font.Font

	PageWidth  float64
	PageHeight float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// ParagraphGap is carried from the document description but is not
	// read by layout: textlayout always inserts a fixed 12-point gap
	// before every block after the first.
	ParagraphGap float64
}

// ContentWidth returns the page width available for text, after margins.
func (d *Document) ContentWidth() float64 {
	return d.PageWidth - d.MarginLeft - d.MarginRight
}

// ContentHeight returns the page height available for text, after
// margins.
func (d *Document) ContentHeight() float64 {
	return d.PageHeight - d.MarginTop - d.MarginBottom
}
