package font

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// unitsPerEm reads head.unitsPerEm (offset 18, uint16).
func unitsPerEm(dir *sfntDirectory) (int, error) {
	head := dir.table("head")
	if len(head) < 20 {
		return 0, errors.New("font: missing or truncated head table")
	}
	return int(binary.BigEndian.Uint16(head[18:20])), nil
}

// globalBoundingBox reads head.xMin/yMin/xMax/yMax (offsets 36,38,40,42,
// each int16).
func globalBoundingBox(dir *sfntDirectory) (xMin, yMin, xMax, yMax int, err error) {
	head := dir.table("head")
	if len(head) < 44 {
		return 0, 0, 0, 0, errors.New("font: missing or truncated head table")
	}
	xMin = int(int16(binary.BigEndian.Uint16(head[36:38])))
	yMin = int(int16(binary.BigEndian.Uint16(head[38:40])))
	xMax = int(int16(binary.BigEndian.Uint16(head[40:42])))
	yMax = int(int16(binary.BigEndian.Uint16(head[42:44])))
	return xMin, yMin, xMax, yMax, nil
}

// indexToLocFormat reads head.indexToLocFormat (offset 50, int16): 0 for
// short (uint16, half-offsets) loca, 1 for long (uint32) loca.
func indexToLocFormat(dir *sfntDirectory) (int, error) {
	head := dir.table("head")
	if len(head) < 52 {
		return 0, errors.New("font: missing or truncated head table")
	}
	return int(int16(binary.BigEndian.Uint16(head[50:52]))), nil
}

// hheaMetrics reads hhea.Ascender/Descender/LineGap (offsets 4,6,8, each
// int16 in design units) and expresses them as a fraction of one em.
func hheaMetrics(dir *sfntDirectory) (TextMetrics, error) {
	hhea := dir.table("hhea")
	if len(hhea) < 10 {
		return TextMetrics{}, errors.New("font: missing or truncated hhea table")
	}
	upm, err := unitsPerEm(dir)
	if err != nil || upm == 0 {
		return TextMetrics{}, fmt.Errorf("font: cannot scale hhea metrics: %w", err)
	}
	ascent := int(int16(binary.BigEndian.Uint16(hhea[4:6])))
	descent := int(int16(binary.BigEndian.Uint16(hhea[6:8])))
	lineGap := int(int16(binary.BigEndian.Uint16(hhea[8:10])))
	f := float64(upm)
	return TextMetrics{
		Ascent:  float64(ascent) / f,
		Descent: float64(descent) / f,
		LineGap: float64(lineGap) / f,
	}, nil
}

// numberOfHMetrics reads hhea.numberOfHMetrics (offset 34, uint16).
func numberOfHMetrics(dir *sfntDirectory) (int, error) {
	hhea := dir.table("hhea")
	if len(hhea) < 36 {
		return 0, errors.New("font: missing or truncated hhea table")
	}
	return int(binary.BigEndian.Uint16(hhea[34:36])), nil
}

// numGlyphs reads maxp.numGlyphs (offset 4, uint16).
func numGlyphs(dir *sfntDirectory) (int, error) {
	maxp := dir.table("maxp")
	if len(maxp) < 6 {
		return 0, errors.New("font: missing or truncated maxp table")
	}
	return int(binary.BigEndian.Uint16(maxp[4:6])), nil
}

// glyphAdvance reads hmtx's advanceWidth for gid, in design units. Glyph
// IDs at or past numberOfHMetrics reuse the last full entry's advance, per
// the hmtx table's trailing-lsb-only-entries format.
func glyphAdvance(dir *sfntDirectory, gid uint16) (int, error) {
	hmtx := dir.table("hmtx")
	n, err := numberOfHMetrics(dir)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("font: hmtx has no metrics")
	}
	idx := int(gid)
	if idx >= n {
		idx = n - 1
	}
	off := idx * 4
	if len(hmtx) < off+2 {
		return 0, errors.New("font: hmtx truncated")
	}
	return int(binary.BigEndian.Uint16(hmtx[off : off+2])), nil
}

// italicAngle reads post.italicAngle (offset 4, Fixed 16.16) if a post
// table is present.
func italicAngle(dir *sfntDirectory) (float64, error) {
	post := dir.table("post")
	if len(post) < 8 {
		return 0, nil
	}
	raw := int32(binary.BigEndian.Uint32(post[4:8]))
	return float64(raw) / 65536.0, nil
}

// postScriptName reads the name table and returns nameID 6 (PostScript
// name), preferring a Windows/Unicode BMP record.
func postScriptName(dir *sfntDirectory) (string, bool) {
	name := dir.table("name")
	if len(name) < 6 {
		return "", false
	}
	count := int(binary.BigEndian.Uint16(name[2:4]))
	stringOffset := int(binary.BigEndian.Uint16(name[4:6]))
	const recordSize = 12
	var best string
	for i := 0; i < count; i++ {
		rec := 6 + i*recordSize
		if rec+recordSize > len(name) {
			break
		}
		platformID := binary.BigEndian.Uint16(name[rec : rec+2])
		nameID := binary.BigEndian.Uint16(name[rec+6 : rec+8])
		length := int(binary.BigEndian.Uint16(name[rec+8 : rec+10]))
		offset := int(binary.BigEndian.Uint16(name[rec+10 : rec+12]))
		if nameID != 6 {
			continue
		}
		start := stringOffset + offset
		if start < 0 || start+length > len(name) {
			continue
		}
		raw := name[start : start+length]
		s := decodeNameString(platformID, raw)
		if s == "" {
			continue
		}
		best = s
		if platformID == 3 || platformID == 0 {
			// Windows or Unicode platform records are preferred and
			// typically listed first; take the first match either way.
			break
		}
	}
	return best, best != ""
}

// decodeNameString decodes a name-table string record. Platforms 0
// (Unicode) and 3 (Windows) use UTF-16BE; platform 1 (Macintosh) is
// treated as ASCII, which is sufficient for PostScript names.
func decodeNameString(platformID uint16, raw []byte) string {
	if platformID == 1 {
		return string(raw)
	}
	if len(raw)%2 != 0 {
		return ""
	}
	runes := make([]rune, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		runes = append(runes, rune(binary.BigEndian.Uint16(raw[i:i+2])))
	}
	return string(runes)
}

// parseCmap parses a format-4 cmap subtable (the standard BMP segment
// mapping) and returns a rune-to-glyph-ID map. If the font carries a
// format-12 subtable (full Unicode repertoire) that table is preferred.
func parseCmap(dir *sfntDirectory) (map[rune]uint16, error) {
	cmap := dir.table("cmap")
	if len(cmap) < 4 {
		return nil, errors.New("font: missing or truncated cmap table")
	}
	numTables := int(binary.BigEndian.Uint16(cmap[2:4]))

	var best []byte
	var bestFormat uint16
	for i := 0; i < numTables; i++ {
		rec := 4 + i*8
		if rec+8 > len(cmap) {
			break
		}
		offset := binary.BigEndian.Uint32(cmap[rec+4 : rec+8])
		if int(offset) >= len(cmap) {
			continue
		}
		sub := cmap[offset:]
		if len(sub) < 2 {
			continue
		}
		format := binary.BigEndian.Uint16(sub[0:2])
		if format == 12 {
			best, bestFormat = sub, 12
			break
		}
		if format == 4 && bestFormat != 12 {
			best, bestFormat = sub, 4
		}
	}
	if best == nil {
		return nil, errors.New("font: no supported cmap subtable (format 4 or 12)")
	}
	if bestFormat == 12 {
		return parseCmapFormat12(best)
	}
	return parseCmapFormat4(best)
}

// parseCmapFormat4 parses the classic BMP segment-mapping cmap subtable:
// a binary-search header (segCountX2/searchRange/entrySelector/
// rangeShift) followed by four parallel arrays (endCode, startCode,
// idDelta, idRangeOffset).
func parseCmapFormat4(sub []byte) (map[rune]uint16, error) {
	if len(sub) < 14 {
		return nil, errors.New("font: truncated cmap format 4 header")
	}
	segCountX2 := int(binary.BigEndian.Uint16(sub[6:8]))
	segCount := segCountX2 / 2

	endCodes := 14
	startCodes := endCodes + segCountX2 + 2 // +2 for reservedPad
	idDeltas := startCodes + segCountX2
	idRangeOffsets := idDeltas + segCountX2
	if idRangeOffsets+segCountX2 > len(sub) {
		return nil, errors.New("font: truncated cmap format 4 arrays")
	}

	result := make(map[rune]uint16)
	for i := 0; i < segCount; i++ {
		endCode := binary.BigEndian.Uint16(sub[endCodes+i*2:])
		startCode := binary.BigEndian.Uint16(sub[startCodes+i*2:])
		idDelta := int16(binary.BigEndian.Uint16(sub[idDeltas+i*2:]))
		idRangeOffset := binary.BigEndian.Uint16(sub[idRangeOffsets+i*2:])

		if startCode == 0xFFFF && endCode == 0xFFFF {
			continue
		}
		for c := uint32(startCode); c <= uint32(endCode); c++ {
			var gid uint16
			if idRangeOffset == 0 {
				gid = uint16(int32(c) + int32(idDelta))
			} else {
				glyphIndexOffset := idRangeOffsets + i*2 + int(idRangeOffset) + int(c-uint32(startCode))*2
				if glyphIndexOffset+2 > len(sub) {
					continue
				}
				g := binary.BigEndian.Uint16(sub[glyphIndexOffset:])
				if g == 0 {
					continue
				}
				gid = uint16(int32(g) + int32(idDelta))
			}
			if gid != 0 {
				result[rune(c)] = gid
			}
			if c == 0xFFFF {
				break
			}
		}
	}
	return result, nil
}

// parseCmapFormat12 parses a format-12 segmented coverage cmap subtable,
// used for mappings outside the basic multilingual plane.
func parseCmapFormat12(sub []byte) (map[rune]uint16, error) {
	if len(sub) < 16 {
		return nil, errors.New("font: truncated cmap format 12 header")
	}
	numGroups := binary.BigEndian.Uint32(sub[12:16])
	result := make(map[rune]uint16)
	for i := uint32(0); i < numGroups; i++ {
		off := 16 + i*12
		if int(off+12) > len(sub) {
			break
		}
		startChar := binary.BigEndian.Uint32(sub[off : off+4])
		endChar := binary.BigEndian.Uint32(sub[off+4 : off+8])
		startGlyph := binary.BigEndian.Uint32(sub[off+8 : off+12])
		for c := startChar; c <= endChar; c++ {
			result[rune(c)] = uint16(startGlyph + (c - startChar))
		}
	}
	return result, nil
}
