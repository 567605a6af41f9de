package pdf

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/boergens/typeset/charmap"
	gofont "github.com/boergens/typeset/font"
	"github.com/boergens/typeset/textlayout"
)

// FontRef names a font as it is registered in a page's Resources
// dictionary (e.g. "F1") and the character map assigning it single-byte
// PDF codes.
type FontRef struct {
	Name    Name
	CharMap *charmap.CharMap
}

// WriteLine appends the operators to render one laid-out line to cs,
// inside a text object already opened by the caller (BeginText). It
// issues a single Td using line's DeltaX/DeltaY exactly as text layout
// produced them: the first line of a page carries an absolute offset
// from the page origin, every other line a relative offset from the
// previous line's start, and Td's own "offset from the start of the
// current line" semantics compose them automatically across lines
// within one text object. fontRefs maps each chunk's font to its
// resource name and character map.
//
// Every chunk that carries a nonzero LeftAdjust gets a leading TJ
// positioning number before its hex-encoded text, converting the
// point-space adjustment text layout computed into the thousandths-of-
// em units the TJ operator expects, rounded to an integer. Chunks are emitted as separate TJ
// calls rather than batched into one, so a font change mid-line (mixed
// styles in one paragraph) can freely interleave Tf operators without
// breaking the running text position.
func WriteLine(cs *ContentStream, line textlayout.Line, fontRefs map[*gofont.Font]FontRef) error {
	cs.MoveText(line.DeltaX, line.DeltaY)

	var currentFont *gofont.Font
	for _, chunk := range line.Chunks {
		ref, ok := fontRefs[chunk.Style.Font]
		if !ok {
			return fmt.Errorf("pdf: no resource entry for font %q", chunk.Style.Font.Info.Family)
		}
		if chunk.Style.Font != currentFont {
			cs.SetFont("/"+string(ref.Name), textlayout.Abs(chunk.Style.FontSize))
			currentFont = chunk.Style.Font
		}

		hexBytes := make([]byte, 0, len(chunk.Text))
		for _, r := range chunk.Text {
			code, ok := ref.CharMap.Get(r)
			if !ok {
				return fmt.Errorf("pdf: character %q not assigned a code in font %q", r, chunk.Style.Font.Info.Family)
			}
			hexBytes = append(hexBytes, code)
		}

		var items []TextPositionItem
		if chunk.LeftAdjust != 0 {
			tj := math.Round(float64(chunk.LeftAdjust * 1000 / textlayout.Abs(chunk.Style.FontSize)))
			items = append(items, TextPositionOffset(tj))
		}
		items = append(items, TextPositionString("<"+hex.EncodeToString(hexBytes)+">"))
		cs.ShowTextWithPositioning(items)
	}

	return nil
}
