package pdf

import (
	"strings"
	"testing"

	"github.com/boergens/typeset/charmap"
	"github.com/boergens/typeset/docmodel"
	gofont "github.com/boergens/typeset/font"
	"github.com/boergens/typeset/textlayout"
)

func TestWriteLineEmitsPositionedText(t *testing.T) {
	f := &gofont.Font{Info: gofont.FontInfo{Family: "Body"}}
	cm := charmap.New()
	if _, err := cm.Insert('H'); err != nil {
		t.Fatal(err)
	}
	if _, err := cm.Insert('i'); err != nil {
		t.Fatal(err)
	}

	line := textlayout.Line{
		DeltaX: 72,
		DeltaY: 700,
		Chunks: []textlayout.Chunk{
			{Text: "Hi", Style: docmodel.Style{Font: f, FontSize: 12}},
		},
	}

	cs := NewContentStream()
	refs := map[*gofont.Font]FontRef{f: {Name: "F1", CharMap: cm}}
	if err := WriteLine(cs, line, refs); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	out := cs.String()
	if !strings.Contains(out, "72 700 Td\n") {
		t.Errorf("missing Td operator, got:\n%s", out)
	}
	if !strings.Contains(out, "/F1 12 Tf\n") {
		t.Errorf("missing Tf operator, got:\n%s", out)
	}
	if !strings.Contains(out, "<0102>") {
		t.Errorf("missing hex-encoded text, got:\n%s", out)
	}
}

func TestWriteLineLeadingAdjustment(t *testing.T) {
	f := &gofont.Font{Info: gofont.FontInfo{Family: "Body"}}
	cm := charmap.New()
	cm.Insert('x')

	// A negative LeftAdjust (as AlignLines produces for center/right/
	// justify, to push text right) must scale to a negative TJ number,
	// per ISO 32000-1 9.4.3: positive TJ moves the next glyph left,
	// negative moves it right.
	line := textlayout.Line{
		Chunks: []textlayout.Chunk{
			{Text: "x", Style: docmodel.Style{Font: f, FontSize: 10}, LeftAdjust: -2},
		},
	}

	cs := NewContentStream()
	refs := map[*gofont.Font]FontRef{f: {Name: "F1", CharMap: cm}}
	if err := WriteLine(cs, line, refs); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	out := cs.String()
	if !strings.Contains(out, "[-200 <01>] TJ\n") {
		t.Errorf("expected a leading -200 offset before the text, got:\n%s", out)
	}
}

// TestWriteLineRightAlignProducesNegativeTJ drives a real line through
// AlignLines (right alignment) before WriteLine, to catch a sign error
// in the LeftAdjust-to-TJ scaling that a hand-built LeftAdjust value
// could miss.
func TestWriteLineRightAlignProducesNegativeTJ(t *testing.T) {
	f := &gofont.Font{Info: gofont.FontInfo{Family: "Body"}}
	cm := charmap.New()
	cm.Insert('x')

	lines := []textlayout.Line{
		{
			TotalWidth: 10,
			Chunks: []textlayout.Chunk{
				{Text: "x", Style: docmodel.Style{Font: f, FontSize: 10}, Width: 10},
			},
		},
	}
	block := &docmodel.TextBlock{Align: docmodel.AlignRight}
	textlayout.AlignLines(block, 100, lines)

	if lines[0].Chunks[0].LeftAdjust >= 0 {
		t.Fatalf("AlignLines produced a non-negative LeftAdjust for right alignment: %v", lines[0].Chunks[0].LeftAdjust)
	}

	cs := NewContentStream()
	refs := map[*gofont.Font]FontRef{f: {Name: "F1", CharMap: cm}}
	if err := WriteLine(cs, lines[0], refs); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	out := cs.String()
	if !strings.Contains(out, "[-9000 <01>] TJ\n") {
		t.Errorf("expected a negative TJ offset for right-aligned text, got:\n%s", out)
	}
}

func TestWriteLineMissingFontResource(t *testing.T) {
	f := &gofont.Font{Info: gofont.FontInfo{Family: "Body"}}
	line := textlayout.Line{
		Chunks: []textlayout.Chunk{{Text: "x", Style: docmodel.Style{Font: f, FontSize: 10}}},
	}

	cs := NewContentStream()
	if err := WriteLine(cs, line, map[*gofont.Font]FontRef{}); err == nil {
		t.Fatal("expected an error when a chunk's font has no resource entry")
	}
}

func TestWriteLineMissingCharacterCode(t *testing.T) {
	f := &gofont.Font{Info: gofont.FontInfo{Family: "Body"}}
	cm := charmap.New()
	line := textlayout.Line{
		Chunks: []textlayout.Chunk{{Text: "z", Style: docmodel.Style{Font: f, FontSize: 10}}},
	}

	cs := NewContentStream()
	refs := map[*gofont.Font]FontRef{f: {Name: "F1", CharMap: cm}}
	if err := WriteLine(cs, line, refs); err == nil {
		t.Fatal("expected an error for a rune with no assigned character code")
	}
}
