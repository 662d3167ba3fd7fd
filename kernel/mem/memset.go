package mem

import (
	"reflect"
	"unsafe"
)

// Memset fills size bytes starting at addr with value. The first byte is set
// directly and the filled prefix is then doubled with copy() until the whole
// block is covered, which needs log2(size) copies instead of a byte loop.
func Memset(addr uintptr, value byte, size Size) {
	if size == 0 {
		return
	}

	block := Overlay(addr, size)
	block[0] = value
	for filled := 1; filled < len(block); filled *= 2 {
		copy(block[filled:], block[:filled])
	}
}

// Overlay returns a byte slice backed by the size bytes starting at addr. The
// caller is responsible for ensuring that the range is mapped and remains
// valid for as long as the slice is in use.
func Overlay(addr uintptr, size Size) []byte {
	return *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(size),
		Cap:  int(size),
		Data: addr,
	}))
}
