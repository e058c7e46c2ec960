// Package layout maps absolute touchpad coordinates to the logical keys
// painted on the numpad overlay.
//
// The layout is a fixed grid of axis-aligned rectangles arranged in
// horizontal bands. Lookup walks the bands top to bottom and, within the
// matching band, the cells left to right; the first cell containing the
// point wins. Points in the margins between cells resolve to nothing and
// are treated as ordinary touchpad surface.
package layout

import (
	evdev "github.com/holoplot/go-evdev"
)

// Key identifies one symbol on the numpad overlay. It is backed by the
// evdev key code that the virtual keyboard emits for it.
type Key evdev.EvCode

// Toggle is the key that switches numpad emulation on and off and drives
// the backlight instead of emitting its own code.
const Toggle = Key(evdev.KEY_NUMLOCK)

func (k Key) String() string {
	return evdev.CodeName(evdev.EV_KEY, evdev.EvCode(k))
}

// Code returns the underlying evdev key code.
func (k Key) Code() evdev.EvCode {
	return evdev.EvCode(k)
}

type cell struct {
	left  int32
	right int32
	key   Key
}

type row struct {
	minY  int32
	maxY  int32
	cells []cell
}

// Layout is an ordered set of key regions. It is immutable after
// construction and safe for concurrent lookups.
type Layout struct {
	rows []row
}

// Resolve returns the key whose region contains (x, y), or false when the
// point lies outside every region. Region edges are inclusive on all sides.
func (l *Layout) Resolve(x, y int32) (Key, bool) {
	for _, r := range l.rows {
		if y < r.minY || y > r.maxY {
			continue
		}
		for _, c := range r.cells {
			if x >= c.left && x <= c.right {
				return c.key, true
			}
		}
	}
	return 0, false
}

// Keys returns every distinct key in the layout, in region order. The
// virtual keyboard uses this as its capability set.
func (l *Layout) Keys() []Key {
	var keys []Key
	seen := make(map[Key]bool)
	for _, r := range l.rows {
		for _, c := range r.cells {
			if !seen[c.key] {
				seen[c.key] = true
				keys = append(keys, c.key)
			}
		}
	}
	return keys
}

// Geometry constants for the default layout, in raw touchpad units.
// Rows are 480 units tall with a 100 unit gap; cells are separated by a
// 50 unit horizontal margin.
const (
	rowHeight = 480
	rowGap    = 100
	cellGap   = 50
)

// Default returns the numpad geometry for the supported touchpad: four
// rows of five (or four) keys, with the toggle key in the top right
// corner.
func Default() *Layout {
	rows := []row{
		makeRow(200, 330, []int32{860, 1600, 2260, 3030, 3750},
			Key(evdev.KEY_7), Key(evdev.KEY_8), Key(evdev.KEY_9), Key(evdev.KEY_SLASH), Toggle),
		makeRow(780, 330, []int32{860, 1600, 2260, 3030, 3750},
			Key(evdev.KEY_4), Key(evdev.KEY_5), Key(evdev.KEY_6), Key(evdev.KEY_KPASTERISK), Key(evdev.KEY_BACKSPACE)),
		makeRow(1360, 330, []int32{860, 1600, 2260, 3030, 3750},
			Key(evdev.KEY_1), Key(evdev.KEY_2), Key(evdev.KEY_3), Key(evdev.KEY_MINUS), Key(evdev.KEY_ENTER)),
		makeRow(1940, 860, []int32{1600, 2260, 3030, 3750},
			Key(evdev.KEY_0), Key(evdev.KEY_DOT), Key(evdev.KEY_KPPLUS), Key(evdev.KEY_ENTER)),
	}
	return &Layout{rows: rows}
}

// makeRow lays cells out left to right: each cell starts cellGap units
// past the previous cell's right edge and ends at its own entry in rights.
func makeRow(minY, firstLeft int32, rights []int32, keys ...Key) row {
	if len(rights) != len(keys) {
		panic("layout: rights and keys length mismatch")
	}
	cells := make([]cell, 0, len(keys))
	left := firstLeft
	for i, k := range keys {
		cells = append(cells, cell{left: left, right: rights[i], key: k})
		left = rights[i] + cellGap
	}
	return row{minY: minY, maxY: minY + rowHeight, cells: cells}
}
