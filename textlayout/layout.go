// Package textlayout turns a docmodel.Document into pages of positioned
// text lines, ready for PDF content-stream generation.
//
// Line breaking is a single greedy pass: each chunk is appended to the
// current line until it would overflow, at which point the line breaks
// at the last whitespace boundary seen. This is deliberately not an
// optimal (Knuth-Plass-style) breaker — it mirrors what a simple,
// predictable layout engine does, and is cheap enough to run on an
// entire document in one pass.
package textlayout

import (
	"fmt"
	"unicode"

	"github.com/boergens/typeset/docmodel"
	"github.com/boergens/typeset/font"
	"github.com/rivo/uniseg"
)

// Abs is an absolute length in PDF points.
type Abs float64

// paragraphGap is the extra vertical space inserted before every block
// after the first.
const paragraphGap Abs = 12.0

// MissingFontError reports a style with no font. Styles hold the font
// itself rather than a name, so the only case detected is a nil
// Style.Font, reported with Name "<nil>"; the document's font table is
// not consulted.
type MissingFontError struct{ Name string }

func (e *MissingFontError) Error() string { return fmt.Sprintf("missing font %q", e.Name) }

// MissingGlyphError reports that a font has no glyph for a rune used in
// the document text.
type MissingGlyphError struct {
	Rune rune
	Font string
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("missing glyph %q in font %q", e.Rune, e.Font)
}

// Chunk is a contiguous run of non-breaking text (a word, or a single
// run of whitespace), the smallest unit line breaking operates on.
type Chunk struct {
	Text         string
	Style        docmodel.Style
	Metrics      font.TextMetrics // already scaled to the run's font size
	Width        Abs
	IsWhitespace bool
	LeftAdjust   Abs
}

// Line is one laid-out line of chunks, with the metrics needed to
// position the next line and the offset from the previous line's
// origin to this line's origin.
type Line struct {
	Chunks     []Chunk
	Metrics    font.TextMetrics
	TotalWidth Abs
	DeltaX     Abs
	DeltaY     Abs
}

// Page is one page's worth of laid-out lines. The first line's delta is
// absolute, measured from the page's bottom-left corner (the PDF
// user-space origin); every subsequent line's delta is relative to the
// previous line's baseline.
type Page struct {
	Lines []Line
}

// LayoutDocument lays out every block of doc and paginates the result to
// doc's page size and margins.
func LayoutDocument(doc *docmodel.Document) ([]Page, error) {
	targetWidth := Abs(doc.ContentWidth())
	targetHeight := Abs(doc.ContentHeight())

	var lines []Line
	for _, block := range doc.Blocks {
		blockLines, err := layoutBlock(doc, targetWidth, block)
		if err != nil {
			return nil, err
		}
		lines = append(lines, blockLines...)
	}

	return layoutPages(lines, targetHeight, doc), nil
}

// layoutPages packs lines onto pages by vertical fit, subtracting the
// the first line's line-gap on each page (nothing above the first line
// needs gap space) and positioning the first line of every page from
// the page's top margin.
func layoutPages(lines []Line, targetHeight Abs, doc *docmodel.Document) []Page {
	var pages []Page
	current := Page{}
	var currentHeight Abs

	for _, line := range lines {
		lineHeight := Abs(line.Metrics.LineHeight())
		if len(current.Lines) == 0 {
			lineHeight -= Abs(line.Metrics.LineGap)
		}

		if currentHeight+lineHeight > targetHeight && len(current.Lines) > 0 {
			pages = append(pages, current)
			current = Page{}
			currentHeight = 0
			lineHeight -= Abs(line.Metrics.LineGap)
		}

		current.Lines = append(current.Lines, line)
		currentHeight += lineHeight
	}
	pages = append(pages, current)

	margin := Abs(doc.MarginLeft)
	topMargin := Abs(doc.MarginTop)
	pageHeight := Abs(doc.PageHeight)
	for i := range pages {
		if len(pages[i].Lines) == 0 {
			continue
		}
		first := &pages[i].Lines[0]
		first.DeltaX = margin
		first.DeltaY = pageHeight - topMargin - Abs(first.Metrics.Ascent)
	}

	return pages
}

// layoutBlock lays out one document block into lines, applying its
// alignment and the leading paragraph gap.
func layoutBlock(doc *docmodel.Document, targetWidth Abs, block docmodel.Block) ([]Line, error) {
	if block.Text == nil {
		return nil, nil
	}
	tb := block.Text

	var chunks []Chunk
	for _, inline := range tb.Inlines {
		c, err := chunkInline(inline.Style, inline.Text)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c...)
	}

	lines := layoutLines(targetWidth, chunks)
	AlignLines(tb, targetWidth, lines)

	if len(lines) > 0 {
		lines[0].DeltaY -= paragraphGap
		lines[0].Metrics.LineGap += float64(paragraphGap)
	}

	return lines, nil
}

// layoutLines performs the single-pass greedy line break: it walks the
// chunks accumulating width, remembers the most recent whitespace
// boundary as a possible break point, and cuts the line there whenever
// the next chunk would overflow target_width.
func layoutLines(targetWidth Abs, chunks []Chunk) []Line {
	var lines []Line
	lineStart := 0
	possibleBreak := 0
	var widthToBreak Abs
	var x Abs
	var currentMetrics font.TextMetrics

	for i, chunk := range chunks {
		prevIdx := i - 1
		if prevIdx < 0 {
			prevIdx = 0
		}
		if chunk.IsWhitespace && !chunks[prevIdx].IsWhitespace {
			widthToBreak = x
			possibleBreak = i
		}

		if possibleBreak > lineStart && x-chunk.LeftAdjust+chunk.Width > targetWidth {
			lineSpacing := Abs(currentMetrics.LineGap + currentMetrics.Ascent)
			if len(lines) > 0 {
				lineSpacing -= Abs(lines[len(lines)-1].Metrics.Descent)
			}

			lines = append(lines, Line{
				Chunks:     append([]Chunk(nil), chunks[lineStart:possibleBreak]...),
				Metrics:    currentMetrics,
				TotalWidth: widthToBreak,
				DeltaY:     -lineSpacing,
			})

			lineStart = possibleBreak
			x = chunk.Width
			currentMetrics = chunk.Metrics

			for lineStart < len(chunks) && chunks[lineStart].IsWhitespace {
				lineStart++
			}
		} else if i >= lineStart {
			if i == lineStart {
				x = 0
			}
			x += chunk.Width
			currentMetrics = currentMetrics.Max(chunk.Metrics)
		}
	}

	if lineStart < len(chunks) {
		lineSpacing := Abs(currentMetrics.LineGap + currentMetrics.Ascent)
		if len(lines) > 0 {
			lineSpacing -= Abs(lines[len(lines)-1].Metrics.Descent)
		}
		lines = append(lines, Line{
			Chunks:     append([]Chunk(nil), chunks[lineStart:]...),
			Metrics:    currentMetrics,
			TotalWidth: x,
			DeltaY:     -lineSpacing,
		})
	}

	return lines
}

// AlignLines applies block's alignment to lines in place, expressing
// each adjustment as a per-chunk left_adjust: a signed horizontal offset
// applied just before that chunk is drawn.
func AlignLines(block *docmodel.TextBlock, targetWidth Abs, lines []Line) {
	switch block.Align {
	case docmodel.AlignLeft:
		// nothing to do

	case docmodel.AlignCenter:
		for i := range lines {
			remaining := targetWidth - lines[i].TotalWidth
			if len(lines[i].Chunks) > 0 {
				lines[i].Chunks[0].LeftAdjust = -0.5 * remaining
			}
		}

	case docmodel.AlignRight:
		for i := range lines {
			remaining := targetWidth - lines[i].TotalWidth
			if len(lines[i].Chunks) > 0 {
				lines[i].Chunks[0].LeftAdjust = -remaining
			}
		}

	case docmodel.AlignJustify:
		if len(lines) == 0 {
			return
		}
		for i := 0; i < len(lines)-1; i++ {
			line := &lines[i]
			remaining := targetWidth - line.TotalWidth

			numGaps := 0
			for j := 1; j < len(line.Chunks); j++ {
				if line.Chunks[j-1].IsWhitespace || line.Chunks[j].IsWhitespace {
					numGaps++
				}
			}
			if numGaps == 0 {
				continue
			}
			gapWidth := remaining / Abs(numGaps)
			for j := 1; j < len(line.Chunks); j++ {
				if line.Chunks[j-1].IsWhitespace || line.Chunks[j].IsWhitespace {
					line.Chunks[j].LeftAdjust = -gapWidth
				}
			}
		}
	}
}

// chunkInline splits one styled run of text into chunks at whitespace
// boundaries, measuring each chunk's width in the run's font and size.
// Text is walked grapheme-cluster by grapheme-cluster so that combining
// marks and multi-rune clusters are never split across chunks.
func chunkInline(style docmodel.Style, text string) ([]Chunk, error) {
	if style.Font == nil {
		return nil, &MissingFontError{Name: "<nil>"}
	}

	upm, err := style.Font.UnitsPerEm()
	if err != nil {
		return nil, err
	}
	fontScale := style.FontSize / float64(upm)

	baseMetrics, err := style.Font.Metrics()
	if err != nil {
		return nil, err
	}
	metrics := baseMetrics.Scale(style.FontSize)

	var chunks []Chunk
	chunkStart := 0
	var chunkWidth Abs

	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		start, end := gr.Positions()
		cluster := text[start:end]
		runes := gr.Runes()

		var width Abs
		for _, r := range runes {
			gid, ok, err := style.Font.GlyphIndex(r)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &MissingGlyphError{Rune: r, Font: style.Font.Info.Family}
			}
			adv, err := style.Font.GlyphAdvance(gid)
			if err != nil {
				return nil, err
			}
			width += Abs(float64(adv) * fontScale)
		}

		isWhitespace := len(runes) == 1 && unicode.IsSpace(runes[0])

		if isWhitespace {
			if chunkStart < start {
				chunks = append(chunks, Chunk{
					Text:    text[chunkStart:start],
					Style:   style,
					Metrics: metrics,
					Width:   chunkWidth,
				})
			}
			chunks = append(chunks, Chunk{
				Text:         cluster,
				Style:        style,
				Metrics:      metrics,
				Width:        width,
				IsWhitespace: true,
			})
			chunkStart = end
			chunkWidth = 0
		} else {
			chunkWidth += width
		}
	}

	if chunkStart < len(text) {
		chunks = append(chunks, Chunk{
			Text:    text[chunkStart:],
			Style:   style,
			Metrics: metrics,
			Width:   chunkWidth,
		})
	}

	return chunks, nil
}
