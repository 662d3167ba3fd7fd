package console

import (
	"reflect"
	"unsafe"
)

const (
	// DefaultFramebufferAddr is the physical address of the VGA text-mode
	// framebuffer on PC-compatible machines.
	DefaultFramebufferAddr uintptr = 0xb8000

	// DefaultWidth and DefaultHeight describe the dimensions of VGA mode 3.
	DefaultWidth  uint32 = 80
	DefaultHeight uint32 = 25

	clearAttr = Black<<4 | Black
	clearChar = byte(' ')
)

// VgaText implements an EGA-compatible text console. Each cell of the
// framebuffer is a uint16 holding the character in the low byte and its
// attribute in the high byte. Writes go straight to the framebuffer and are
// visible immediately.
type VgaText struct {
	width  uint32
	height uint32

	fb []uint16
}

// Init binds the console to a width*height cell framebuffer located at
// fbPhysAddr. The caller must ensure that the framebuffer is mapped.
func (cons *VgaText) Init(width, height uint32, fbPhysAddr uintptr) {
	cons.width = width
	cons.height = height

	cons.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(width * height),
		Cap:  int(width * height),
		Data: fbPhysAddr,
	}))
}

// Dimensions returns the console width and height in characters.
func (cons *VgaText) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// Clear fills the specified rectangular region with blanks. The rectangle is
// clipped to the console area.
func (cons *VgaText) Clear(x, y, width, height uint32) {
	if x >= cons.width || y >= cons.height {
		return
	}

	if width > cons.width-x {
		width = cons.width - x
	}
	if height > cons.height-y {
		height = cons.height - y
	}

	clr := uint16(clearAttr)<<8 | uint16(clearChar)
	for row := y; row < y+height; row++ {
		offset := row*cons.width + x
		for col := offset; col < offset+width; col++ {
			cons.fb[col] = clr
		}
	}
}

// Scroll a particular number of lines to the specified direction.
func (cons *VgaText) Scroll(dir ScrollDir, lines uint32) {
	if lines == 0 || lines > cons.height {
		return
	}

	shift := lines * cons.width
	switch dir {
	case Up:
		copy(cons.fb, cons.fb[shift:])
	case Down:
		copy(cons.fb[shift:], cons.fb[:uint32(len(cons.fb))-shift])
	}
}

// Write a char to the specified location. Writes outside the console area
// are ignored.
func (cons *VgaText) Write(ch byte, attr Attr, x, y uint32) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[y*cons.width+x] = uint16(attr)<<8 | uint16(ch)
}

// WriteText writes text starting at the given row and column using attr for
// every character. The text does not wrap: characters that would fall past
// the last column of the row are dropped, and a start position outside the
// console writes nothing. WriteText returns the number of characters written.
func (cons *VgaText) WriteText(row, col uint32, text string, attr Attr) uint32 {
	if row >= cons.height || col >= cons.width {
		return 0
	}

	count := uint32(len(text))
	if room := cons.width - col; count > room {
		count = room
	}

	offset := row*cons.width + col
	for i := uint32(0); i < count; i++ {
		cons.fb[offset+i] = uint16(attr)<<8 | uint16(text[i])
	}

	return count
}
