package font

import (
	"encoding/binary"
	"testing"
)

func TestBuildCmapFormat4SegmentCount(t *testing.T) {
	codeToGID := map[uint8]uint16{0: 5, 1: 9, 2: 20}
	table := buildCmapFormat4(codeToGID)

	cm, err := parseCmapFormat4(table[12:])
	if err != nil {
		t.Fatalf("parseCmapFormat4: %v", err)
	}
	if len(cm) != 3 {
		t.Fatalf("decoded %d mappings, want 3", len(cm))
	}
	if cm[0] != 5 || cm[1] != 9 || cm[2] != 20 {
		t.Errorf("unexpected mapping: %+v", cm)
	}
}

func TestBuildCmapFormat4Header(t *testing.T) {
	codeToGID := map[uint8]uint16{0: 5, 1: 9, 2: 20}
	table := buildCmapFormat4(codeToGID)

	platformID := binary.BigEndian.Uint16(table[4:6])
	encodingID := binary.BigEndian.Uint16(table[6:8])
	if platformID != 0 || encodingID != 3 {
		t.Errorf("platform/encoding = %d/%d, want 0/3 (Unicode/BMP)", platformID, encodingID)
	}

	sub := table[12:]
	segCountX2 := binary.BigEndian.Uint16(sub[6:8])
	segCount := int(segCountX2 / 2)
	// idDelta array starts after endCode, reservedPad, and startCode,
	// each segCountX2 bytes, plus the 14-byte subtable header.
	idDeltaOffset := 14 + segCountX2 + 2 + segCountX2
	lastIDDelta := int16(binary.BigEndian.Uint16(sub[int(idDeltaOffset)+2*(segCount-1):]))
	if lastIDDelta != 0 {
		t.Errorf("terminal segment idDelta = %d, want 0", lastIDDelta)
	}
}

func TestRepackGlyfDropsUnreferenced(t *testing.T) {
	glyf := []byte{
		0xAA, 0xAA, // glyph 0
		0xBB, 0xBB, 0xBB, 0xBB, // glyph 1
		0xCC, 0xCC, // glyph 2
	}
	loca := []uint32{0, 2, 6, 8}
	referenced := map[uint16]bool{1: true}

	newGlyf, newLoca := repackGlyf(glyf, loca, referenced)

	if len(newLoca) != len(loca) {
		t.Fatalf("loca length changed: got %d, want %d (glyph IDs must not be renumbered)", len(newLoca), len(loca))
	}
	if newLoca[0] != newLoca[1] {
		t.Errorf("glyph 0 should be empty after repack, loca[0]=%d loca[1]=%d", newLoca[0], newLoca[1])
	}
	if newLoca[2]-newLoca[1] != 4 {
		t.Errorf("glyph 1 bytes not preserved: got %d bytes, want 4", newLoca[2]-newLoca[1])
	}
	if newLoca[3] != newLoca[2] {
		t.Errorf("glyph 2 should be empty after repack")
	}
	if len(newGlyf) != 4 {
		t.Errorf("repacked glyf length = %d, want 4", len(newGlyf))
	}
}

func TestBuildLocaChoosesShortFormat(t *testing.T) {
	offsets := []uint32{0, 10, 20}
	buf, format := buildLoca(offsets)
	if format != 0 {
		t.Fatalf("expected short loca format for small offsets, got %d", format)
	}
	if len(buf) != len(offsets)*2 {
		t.Errorf("short loca length = %d, want %d", len(buf), len(offsets)*2)
	}
}

func TestBuildLocaChoosesLongFormat(t *testing.T) {
	offsets := []uint32{0, 200000}
	buf, format := buildLoca(offsets)
	if format != 1 {
		t.Fatalf("expected long loca format for large offsets, got %d", format)
	}
	if len(buf) != len(offsets)*4 {
		t.Errorf("long loca length = %d, want %d", len(buf), len(offsets)*4)
	}
}
