// Package pdf provides PDF export functionality.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/boergens/typeset/textlayout"
)

// ContentStream writes PDF content stream operators.
type ContentStream struct {
	buf strings.Builder
}

// NewContentStream creates a new content stream writer.
func NewContentStream() *ContentStream {
	return &ContentStream{}
}

// Bytes returns the content stream as bytes.
func (cs *ContentStream) Bytes() []byte {
	return []byte(cs.buf.String())
}

// String returns the content stream as a string.
func (cs *ContentStream) String() string {
	return cs.buf.String()
}

// WriteTo writes the content stream to a writer.
func (cs *ContentStream) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte(cs.buf.String()))
	return int64(n), err
}

// writeOp writes an operator with arguments.
func (cs *ContentStream) writeOp(op string, args ...interface{}) {
	for _, arg := range args {
		cs.writeArg(arg)
		cs.buf.WriteByte(' ')
	}
	cs.buf.WriteString(op)
	cs.buf.WriteByte('\n')
}

// writeArg writes a single argument value.
func (cs *ContentStream) writeArg(arg interface{}) {
	switch v := arg.(type) {
	case float64:
		cs.buf.WriteString(formatFloat(v))
	case textlayout.Abs:
		cs.buf.WriteString(formatFloat(float64(v)))
	case int:
		fmt.Fprintf(&cs.buf, "%d", v)
	case string:
		cs.buf.WriteString(v)
	default:
		fmt.Fprintf(&cs.buf, "%v", v)
	}
}

// formatFloat formats a float rounded to at most four decimal places,
// trimming trailing zeros.
func formatFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// Text Operators

// BeginText begins a text object (BT operator).
func (cs *ContentStream) BeginText() {
	cs.writeOp("BT")
}

// EndText ends a text object (ET operator).
func (cs *ContentStream) EndText() {
	cs.writeOp("ET")
}

// MoveText moves to the start of the next line, offset from the start of
// the current line (Td operator).
func (cs *ContentStream) MoveText(tx, ty textlayout.Abs) {
	cs.writeOp("Td", tx, ty)
}

// SetFont sets the font and size (Tf operator). fontName should already
// include the leading slash, e.g. "/F1".
func (cs *ContentStream) SetFont(fontName string, size textlayout.Abs) {
	cs.writeOp("Tf", fontName, size)
}

// ShowText shows a text string (Tj operator).
func (cs *ContentStream) ShowText(s string) {
	cs.buf.WriteString(s)
	cs.buf.WriteString(" Tj\n")
}

// ShowTextWithPositioning shows text with per-chunk positioning
// adjustments (TJ operator). Each item is either a hex-encoded string or
// a signed positioning offset expressed in thousandths of the current
// font size.
func (cs *ContentStream) ShowTextWithPositioning(items []TextPositionItem) {
	cs.buf.WriteByte('[')
	for _, item := range items {
		switch v := item.(type) {
		case TextPositionString:
			cs.buf.WriteString(string(v))
		case TextPositionOffset:
			cs.buf.WriteString(formatFloat(float64(v)))
		}
	}
	cs.buf.WriteString("] TJ\n")
}

// TextPositionItem is an item in a TJ array.
type TextPositionItem interface {
	isTextPositionItem()
}

// TextPositionString is a raw (already delimited) string operand in a TJ
// array, e.g. a hex literal "<0041>".
type TextPositionString string

func (TextPositionString) isTextPositionItem() {}

// TextPositionOffset is a positioning adjustment in a TJ array, expressed
// in thousandths of an em. Positive values move the next glyph to the
// left (per PDF convention).
type TextPositionOffset float64

func (TextPositionOffset) isTextPositionItem() {}
