package pdf

import (
	"strings"
	"testing"
)

func TestContentStream_Text(t *testing.T) {
	cs := NewContentStream()

	cs.BeginText()
	cs.SetFont("/F1", 12)
	cs.MoveText(100, 200)
	cs.ShowText("(Hello)")
	cs.EndText()

	output := cs.String()

	if !strings.Contains(output, "BT") {
		t.Error("missing BT operator")
	}
	if !strings.Contains(output, "/F1 12 Tf") {
		t.Error("missing font setting")
	}
	if !strings.Contains(output, "100 200 Td") {
		t.Error("missing text move")
	}
	if !strings.Contains(output, "(Hello) Tj") {
		t.Error("missing text show")
	}
	if !strings.Contains(output, "ET") {
		t.Error("missing ET operator")
	}
}

func TestContentStream_TextPositioning(t *testing.T) {
	cs := NewContentStream()

	cs.BeginText()
	cs.ShowTextWithPositioning([]TextPositionItem{
		TextPositionString("<41>"),
		TextPositionOffset(-50),
		TextPositionString("<42>"),
	})
	cs.EndText()

	output := cs.String()

	if !strings.Contains(output, "[<41>-50<42>] TJ") {
		t.Errorf("expected TJ array, got: %s", output)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{1.0, "1"},
		{1.5, "1.5"},
		{1.25, "1.25"},
		{1.2500, "1.25"},
		{0.0, "0"},
		{100.0, "100"},
		{0.1234, "0.1234"},
	}

	for _, tt := range tests {
		got := formatFloat(tt.input)
		if got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
