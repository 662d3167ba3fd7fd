// Package console provides the text-mode framebuffer used as the kernel's
// diagnostic output sink.
package console

// Attr is a text attribute byte: the low nibble selects the foreground color
// and the high nibble the background color.
type Attr uint8

// The 16 colors supported by EGA-compatible text consoles.
const (
	Black Attr = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGrey
	Grey
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	LightBrown
	White
)

// MakeAttr combines a foreground and a background color into an Attr.
func MakeAttr(fg, bg Attr) Attr {
	return (bg&0xf)<<4 | fg&0xf
}

// ScrollDir defines a scroll direction.
type ScrollDir uint8

// The supported list of scroll directions for the console Scroll() calls.
const (
	Up ScrollDir = iota
	Down
)

// The Device interface is implemented by objects that can function as
// physical consoles. All coordinates are 0-based with (0, 0) referring to the
// top-left corner.
type Device interface {
	// Dimensions returns the width and height of the console in characters.
	Dimensions() (uint32, uint32)

	// Clear fills the specified rectangular region with blanks.
	Clear(x, y, width, height uint32)

	// Scroll a particular number of lines to the specified direction. The
	// caller is responsible for clearing the lines that were scrolled in.
	Scroll(dir ScrollDir, lines uint32)

	// Write a char to the specified location.
	Write(ch byte, attr Attr, x, y uint32)
}
