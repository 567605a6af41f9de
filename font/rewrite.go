package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// glyph-component flag bits, from the composite glyph description in glyf.
const (
	flagArgsAreWords    = 0x0001
	flagHaveScale       = 0x0008
	flagMoreComponents  = 0x0020
	flagHaveXYScale     = 0x0040
	flagHaveTwoByTwo    = 0x0080
)

// Rewrite produces a standalone sfnt font file containing only the glyph
// data needed to render codes, a PDF-subset font embeddable as a simple
// (non-CID) TrueType font.
//
// codes[i] is the rune assigned to single-byte PDF character code i.
// Code 0 is the NUL sentinel and maps to glyph 0; a zero rune at any
// other position marks an unused code. Unlike a conventional subsetter,
// Rewrite never renumbers glyph IDs: glyf/loca keep the source font's
// full glyph-ID address space (so composite glyphs referenced only
// internally still resolve correctly), and only the physical bytes of
// unreferenced glyphs are dropped. The new cmap maps each PDF code
// directly to its original glyph ID.
func Rewrite(f *Font, codes []rune) ([]byte, error) {
	if len(codes) > 256 {
		return nil, errors.New("font: rewrite supports at most 256 character codes")
	}

	dir, err := f.directory()
	if err != nil {
		return nil, err
	}

	fullCmap, err := parseCmap(dir)
	if err != nil {
		return nil, fmt.Errorf("font: rewrite: %w", err)
	}

	codeToGID := make(map[uint8]uint16)
	for i, r := range codes {
		if r == 0 {
			if i == 0 {
				codeToGID[0] = 0 // NUL sentinel: missing-glyph marker
			}
			continue
		}
		gid, ok := fullCmap[r]
		if !ok {
			return nil, fmt.Errorf("font: rewrite: no glyph for rune %U in %s", r, f.Info.Family)
		}
		codeToGID[uint8(i)] = gid
	}

	ng, err := numGlyphs(dir)
	if err != nil {
		return nil, err
	}
	locFormat, err := indexToLocFormat(dir)
	if err != nil {
		return nil, err
	}
	loca, err := parseLoca(dir, ng, locFormat)
	if err != nil {
		return nil, err
	}
	glyf := dir.table("glyf")
	if glyf == nil {
		return nil, errors.New("font: rewrite: missing glyf table")
	}

	referenced := make(map[uint16]bool, len(codeToGID))
	queue := make([]uint16, 0, len(codeToGID))
	for _, gid := range codeToGID {
		if !referenced[gid] {
			referenced[gid] = true
			queue = append(queue, gid)
		}
	}
	for len(queue) > 0 {
		gid := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		deps, err := compositeComponents(glyf, loca, int(gid))
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if !referenced[dep] {
				referenced[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	newGlyf, newLoca := repackGlyf(glyf, loca, referenced)
	newLocaBytes, newLocFormat := buildLoca(newLoca)

	newHead, err := patchHead(dir.table("head"), newLocFormat)
	if err != nil {
		return nil, err
	}

	newCmap := buildCmapFormat4(codeToGID)

	tables := make([]struct {
		tag  string
		data []byte
	}, 0, len(dir.order))
	for _, tag := range dir.order {
		var data []byte
		switch tag {
		case "glyf":
			data = newGlyf
		case "loca":
			data = newLocaBytes
		case "head":
			data = newHead
		case "cmap":
			data = newCmap
		default:
			data = dir.table(tag)
		}
		tables = append(tables, struct {
			tag  string
			data []byte
		}{tag: tag, data: data})
	}

	return buildFont(tables), nil
}

// parseLoca reads the loca table into absolute glyf byte offsets, one
// more entry than numGlyphs.
func parseLoca(dir *sfntDirectory, numGlyphs int, format int) ([]uint32, error) {
	loca := dir.table("loca")
	offsets := make([]uint32, numGlyphs+1)
	if format == 0 {
		if len(loca) < (numGlyphs+1)*2 {
			return nil, errors.New("font: truncated short loca table")
		}
		for i := range offsets {
			offsets[i] = uint32(binary.BigEndian.Uint16(loca[i*2:])) * 2
		}
	} else {
		if len(loca) < (numGlyphs+1)*4 {
			return nil, errors.New("font: truncated long loca table")
		}
		for i := range offsets {
			offsets[i] = binary.BigEndian.Uint32(loca[i*4:])
		}
	}
	return offsets, nil
}

// compositeComponents returns the glyph IDs a composite glyph references.
// Simple glyphs (or empty glyphs) return nil.
func compositeComponents(glyf []byte, loca []uint32, gid int) ([]uint16, error) {
	if gid+1 >= len(loca) {
		return nil, fmt.Errorf("font: glyph index %d out of range", gid)
	}
	start, end := loca[gid], loca[gid+1]
	if start >= end {
		return nil, nil // empty glyph, e.g. space
	}
	if int(end) > len(glyf) {
		return nil, errors.New("font: glyf entry out of range")
	}
	data := glyf[start:end]
	if len(data) < 10 {
		return nil, nil
	}
	numberOfContours := int16(binary.BigEndian.Uint16(data[0:2]))
	if numberOfContours >= 0 {
		return nil, nil // simple glyph
	}

	var deps []uint16
	pos := 10
	for {
		if pos+4 > len(data) {
			break
		}
		flags := binary.BigEndian.Uint16(data[pos : pos+2])
		glyphIndex := binary.BigEndian.Uint16(data[pos+2 : pos+4])
		deps = append(deps, glyphIndex)
		pos += 4

		if flags&flagArgsAreWords != 0 {
			pos += 4
		} else {
			pos += 2
		}
		switch {
		case flags&flagHaveTwoByTwo != 0:
			pos += 8
		case flags&flagHaveXYScale != 0:
			pos += 4
		case flags&flagHaveScale != 0:
			pos += 2
		}

		if flags&flagMoreComponents == 0 {
			break
		}
	}
	return deps, nil
}

// repackGlyf drops the outline bytes of every glyph ID not in referenced,
// preserving the glyph-ID address space: the returned loca table still
// has the same length as the source (one entry per original glyph ID),
// it simply maps unreferenced glyphs to a zero-length entry.
func repackGlyf(glyf []byte, loca []uint32, referenced map[uint16]bool) ([]byte, []uint32) {
	newLoca := make([]uint32, len(loca))
	var out []byte
	for gid := 0; gid+1 < len(loca); gid++ {
		newLoca[gid] = uint32(len(out))
		start, end := loca[gid], loca[gid+1]
		if end <= start || !referenced[uint16(gid)] {
			continue
		}
		out = append(out, glyf[start:end]...)
		for len(out)%2 != 0 {
			out = append(out, 0)
		}
	}
	newLoca[len(loca)-1] = uint32(len(out))
	return out, newLoca
}

// buildLoca encodes offsets as a loca table, choosing the short (uint16
// half-offset) format when every offset fits, or the long (uint32)
// format otherwise.
func buildLoca(offsets []uint32) ([]byte, int) {
	maxOffset := offsets[len(offsets)-1]
	if maxOffset/2 <= 0xFFFF && maxOffset%2 == 0 {
		buf := make([]byte, len(offsets)*2)
		for i, off := range offsets {
			binary.BigEndian.PutUint16(buf[i*2:], uint16(off/2))
		}
		return buf, 0
	}
	buf := make([]byte, len(offsets)*4)
	for i, off := range offsets {
		binary.BigEndian.PutUint32(buf[i*4:], off)
	}
	return buf, 1
}

// patchHead copies head and overwrites indexToLocFormat (offset 50).
func patchHead(head []byte, locFormat int) ([]byte, error) {
	if len(head) < 52 {
		return nil, errors.New("font: truncated head table")
	}
	out := make([]byte, len(head))
	copy(out, head)
	binary.BigEndian.PutUint16(out[50:52], uint16(locFormat))
	return out, nil
}

// buildCmapFormat4 builds a single-subtable cmap with a format-4
// subtable mapping each assigned PDF character code directly to its
// original glyph ID, one segment per code plus the mandatory terminal
// 0xFFFF segment.
func buildCmapFormat4(codeToGID map[uint8]uint16) []byte {
	codes := make([]uint8, 0, len(codeToGID))
	for c := range codeToGID {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	segCount := len(codes) + 1
	segCountX2 := segCount * 2

	searchRange, entrySelector := 1, 0
	for searchRange*2 <= segCount {
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 2
	rangeShift := segCountX2 - searchRange

	endCode := make([]uint16, segCount)
	startCode := make([]uint16, segCount)
	idDelta := make([]int16, segCount)
	idRangeOffset := make([]uint16, segCount)

	for i, c := range codes {
		startCode[i] = uint16(c)
		endCode[i] = uint16(c)
		idDelta[i] = int16(int32(codeToGID[c]) - int32(c))
	}
	last := segCount - 1
	startCode[last] = 0xFFFF
	endCode[last] = 0xFFFF
	idDelta[last] = 0

	subLen := 16 + segCountX2*4 // header, four arrays, reservedPad
	sub := make([]byte, subLen)
	binary.BigEndian.PutUint16(sub[0:2], 4) // format
	binary.BigEndian.PutUint16(sub[2:4], uint16(subLen))
	binary.BigEndian.PutUint16(sub[4:6], 0) // language
	binary.BigEndian.PutUint16(sub[6:8], uint16(segCountX2))
	binary.BigEndian.PutUint16(sub[8:10], uint16(searchRange))
	binary.BigEndian.PutUint16(sub[10:12], uint16(entrySelector))
	binary.BigEndian.PutUint16(sub[12:14], uint16(rangeShift))

	pos := 14
	for _, v := range endCode {
		binary.BigEndian.PutUint16(sub[pos:], v)
		pos += 2
	}
	pos += 2 // reservedPad
	for _, v := range startCode {
		binary.BigEndian.PutUint16(sub[pos:], v)
		pos += 2
	}
	for _, v := range idDelta {
		binary.BigEndian.PutUint16(sub[pos:], uint16(v))
		pos += 2
	}
	for _, v := range idRangeOffset {
		binary.BigEndian.PutUint16(sub[pos:], v)
		pos += 2
	}

	const tableHeaderLen = 4 + 8 // version+numTables, one encoding record
	table := make([]byte, tableHeaderLen+len(sub))
	binary.BigEndian.PutUint16(table[0:2], 0) // version
	binary.BigEndian.PutUint16(table[2:4], 1) // numTables
	binary.BigEndian.PutUint16(table[4:6], 0) // platformID: Unicode
	binary.BigEndian.PutUint16(table[6:8], 3) // encodingID: Unicode BMP
	binary.BigEndian.PutUint32(table[8:12], uint32(tableHeaderLen))
	copy(table[tableHeaderLen:], sub)
	return table
}
