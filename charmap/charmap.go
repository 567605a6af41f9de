// Package charmap assigns single-byte PDF character codes to the runes
// that actually appear in a document, per font.
package charmap

import "fmt"

// maxEntries is the largest character map a simple (non-CID) PDF font
// can address: one byte per character code.
const maxEntries = 256

// CharMap is an insertion-ordered set of runes, capped at 256 entries.
// Its position in insertion order is the PDF character code assigned to
// that rune; code 0 is always the NUL sentinel.
type CharMap struct {
	runes []rune
	index map[rune]uint8
}

// New returns a CharMap with code 0 already reserved for the NUL sentinel.
func New() *CharMap {
	m := &CharMap{index: make(map[rune]uint8)}
	m.runes = append(m.runes, '\x00')
	m.index['\x00'] = 0
	return m
}

// Insert assigns r a character code if it doesn't already have one,
// returning its code. It returns an error once 256 distinct runes have
// been inserted.
func (m *CharMap) Insert(r rune) (uint8, error) {
	if code, ok := m.index[r]; ok {
		return code, nil
	}
	if len(m.runes) >= maxEntries {
		return 0, fmt.Errorf("charmap: cannot map more than %d distinct characters in one font", maxEntries)
	}
	code := uint8(len(m.runes))
	m.runes = append(m.runes, r)
	m.index[r] = code
	return code, nil
}

// Get returns the character code assigned to r, if any.
func (m *CharMap) Get(r rune) (uint8, bool) {
	code, ok := m.index[r]
	return code, ok
}

// Rune returns the rune assigned to code, or 0 if the code is unused.
func (m *CharMap) Rune(code uint8) rune {
	if int(code) >= len(m.runes) {
		return 0
	}
	return m.runes[code]
}

// Len returns the number of distinct runes inserted so far.
func (m *CharMap) Len() int {
	return len(m.runes)
}

// Runes returns the runes in code order; Runes()[i] is the rune mapped
// to code i.
func (m *CharMap) Runes() []rune {
	out := make([]rune, len(m.runes))
	copy(out, m.runes)
	return out
}

// Table returns a 256-entry rune slice suitable for font.Rewrite, with
// unused codes left as 0.
func (m *CharMap) Table() []rune {
	out := make([]rune, maxEntries)
	copy(out, m.runes)
	return out
}
