package pdf

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/boergens/typeset/charmap"
	gofont "github.com/boergens/typeset/font"
	"golang.org/x/text/encoding/unicode"
)

// EmbedFont writes rewrittenData (the output of font.Rewrite, already
// trimmed to the glyphs cm references) into w as a simple (non-CID)
// TrueType font: an embedded FontFile2 stream, a FontDescriptor, a
// Widths array keyed by PDF character code, and a ToUnicode CMap so
// copy-paste and accessibility tools can recover the original text.
// It returns the reference to the font dictionary, suitable for a page
// Resources /Font entry.
func EmbedFont(w *Writer, f *gofont.Font, rewrittenData []byte, cm *charmap.CharMap) (Ref, error) {
	fontFile2 := NewStream(rewrittenData)
	fontFile2.Dict()[Name("Length1")] = Int(len(rewrittenData))
	fontFile2Ref := w.WriteNew(fontFile2)

	psName, err := f.PostScriptName()
	if err != nil {
		return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
	}

	upm, err := f.UnitsPerEm()
	if err != nil {
		return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
	}
	xMin, yMin, xMax, yMax, err := f.GlobalBoundingBox()
	if err != nil {
		return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
	}
	metrics, err := f.Metrics()
	if err != nil {
		return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
	}
	italicAngle, err := f.ItalicAngle()
	if err != nil {
		return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
	}

	ascent := int(metrics.Ascent * 1000)
	descent := int(metrics.Descent * 1000)
	capHeight := ascent - descent

	descriptor := Dict{
		Name("Type"):        Name("FontDescriptor"),
		Name("FontName"):    Name(psName),
		Name("Flags"):       Int(6),
		Name("FontBBox"):    Array{Real(gofont.ToMilliEm(xMin, upm)), Real(gofont.ToMilliEm(yMin, upm)), Real(gofont.ToMilliEm(xMax, upm)), Real(gofont.ToMilliEm(yMax, upm))},
		Name("ItalicAngle"): Real(italicAngle),
		Name("Ascent"):      Real(ascent),
		Name("Descent"):     Real(descent),
		Name("CapHeight"):   Real(capHeight),
		Name("StemV"):       Int(100),
		Name("FontFile2"):   fontFile2Ref,
	}
	descriptorRef := w.WriteNew(descriptor)

	codes := cm.Runes()
	widths := make(Array, 0, len(codes))
	for _, r := range codes {
		gid, ok, err := f.GlyphIndex(r)
		if err != nil {
			return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
		}
		if !ok {
			widths = append(widths, Int(0))
			continue
		}
		adv, err := f.GlyphAdvance(gid)
		if err != nil {
			return Ref{}, fmt.Errorf("pdf: embed font: %w", err)
		}
		widths = append(widths, Int(gofont.ToMilliEm(adv, upm)))
	}

	toUnicodeRef := w.WriteNew(toUnicodeStream(codes))

	fontDict := Dict{
		Name("Type"):           Name("Font"),
		Name("Subtype"):        Name("TrueType"),
		Name("BaseFont"):       Name(psName),
		Name("FirstChar"):      Int(0),
		Name("LastChar"):       Int(len(codes) - 1),
		Name("Widths"):         widths,
		Name("FontDescriptor"): descriptorRef,
		Name("ToUnicode"):      toUnicodeRef,
	}
	if len(codes) == 0 {
		fontDict[Name("LastChar")] = Int(0)
	}
	return w.WriteNew(fontDict), nil
}

// toUnicodeStream builds a ToUnicode CMap stream mapping each PDF
// character code directly to the Unicode codepoint it represents, so
// that text extraction recovers the original characters.
func toUnicodeStream(codes []rune) *Stream {
	var s strings.Builder
	s.WriteString("/CIDInit /ProcSet findresource begin\n")
	s.WriteString("12 dict begin\n")
	s.WriteString("begincmap\n")
	s.WriteString("/CIDSystemInfo<<\n")
	s.WriteString("/Registry (Adobe)\n")
	s.WriteString("/Ordering (UCS)\n")
	s.WriteString("/Supplement 0\n")
	s.WriteString(">> def\n")
	s.WriteString("/CMapName /Adobe-Identity-UCS def\n")
	s.WriteString("/CMapType 2 def\n")
	s.WriteString("1 begincodespacerange\n")
	s.WriteString("<00> <FF>\n")
	s.WriteString("endcodespacerange\n")

	fmt.Fprintf(&s, "%d beginbfchar\n", len(codes))
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	for i, r := range codes {
		utf16Bytes, err := enc.Bytes([]byte(string(r)))
		if err != nil {
			continue
		}
		fmt.Fprintf(&s, "<%02x> <%s>\n", i, hex.EncodeToString(utf16Bytes))
	}
	s.WriteString("endbfchar\n")

	s.WriteString("endcmap\n")
	s.WriteString("CMapName currentdict /CMap defineresource pop\n")
	s.WriteString("end\n")
	s.WriteString("end")

	return NewStream([]byte(s.String()))
}
