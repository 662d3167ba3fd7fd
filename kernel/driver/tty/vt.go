// Package tty implements a stream terminal on top of a console device.
package tty

import "minikern/kernel/driver/video/console"

const (
	defaultFg = console.LightGrey
	defaultBg = console.Black
	tabWidth  = 4
)

// Vt implements a simple terminal that can process LF, CR, TAB and BS
// characters. The terminal uses a console device for its output; text that
// reaches the right edge wraps to the next line and the console is scrolled
// up once the last line is filled.
type Vt struct {
	cons console.Device

	width  uint32
	height uint32

	curX    uint32
	curY    uint32
	curAttr console.Attr
}

// AttachTo links the terminal with the specified console device, resets the
// cursor to the top-left corner and selects the default text attribute.
func (t *Vt) AttachTo(cons console.Device) {
	t.cons = cons
	t.width, t.height = cons.Dimensions()
	t.curX = 0
	t.curY = 0
	t.curAttr = console.MakeAttr(defaultFg, defaultBg)
}

// Dimensions returns the terminal width and height in characters.
func (t *Vt) Dimensions() (uint32, uint32) {
	return t.width, t.height
}

// Clear clears the terminal and moves the cursor to the top-left corner.
func (t *Vt) Clear() {
	if t.cons == nil {
		return
	}

	t.cons.Clear(0, 0, t.width, t.height)
	t.curX, t.curY = 0, 0
}

// Position returns the current cursor position (x, y).
func (t *Vt) Position() (uint32, uint32) {
	return t.curX, t.curY
}

// SetPosition sets the current cursor position to (x,y). Coordinates
// outside the terminal are clamped to its edges.
func (t *Vt) SetPosition(x, y uint32) {
	if x >= t.width {
		x = t.width - 1
	}

	if y >= t.height {
		y = t.height - 1
	}

	t.curX, t.curY = x, y
}

// SetAttr sets the attribute used for subsequent writes.
func (t *Vt) SetAttr(attr console.Attr) {
	t.curAttr = attr
}

// Write implements io.Writer. Writing to a terminal that is not attached to
// a console is a no-op.
func (t *Vt) Write(data []byte) (int, error) {
	if t.cons == nil {
		return len(data), nil
	}

	for _, b := range data {
		t.WriteByte(b)
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *Vt) WriteByte(b byte) error {
	if t.cons == nil {
		return nil
	}

	switch b {
	case '\r':
		t.cr()
	case '\n':
		t.cr()
		t.lf()
	case '\b':
		if t.curX > 0 {
			t.curX--
			t.cons.Write(' ', t.curAttr, t.curX, t.curY)
		}
	case '\t':
		for spaces := tabWidth - t.curX%tabWidth; spaces > 0; spaces-- {
			t.putChar(' ')
		}
	default:
		t.putChar(b)
	}

	return nil
}

func (t *Vt) putChar(b byte) {
	t.cons.Write(b, t.curAttr, t.curX, t.curY)
	t.curX++
	if t.curX == t.width {
		t.cr()
		t.lf()
	}
}

// cr resets the x coordinate of the terminal cursor to 0.
func (t *Vt) cr() {
	t.curX = 0
}

// lf advances the y coordinate of the terminal cursor by one line scrolling
// the terminal contents if the end of the last terminal line is reached.
func (t *Vt) lf() {
	if t.curY+1 < t.height {
		t.curY++
		return
	}

	t.cons.Scroll(console.Up, 1)
	t.cons.Clear(0, t.height-1, t.width, 1)
}
