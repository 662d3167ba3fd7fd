package allocator

import "minikern/kernel/mem"

// Handle describes a range of physical memory granted by a BumpAllocator.
// Handles remain valid for the lifetime of the kernel.
type Handle struct {
	addr uintptr
	size mem.Size
}

// Address returns the physical address of the first byte in the range.
func (h Handle) Address() uintptr { return h.addr }

// Size returns the length of the range.
func (h Handle) Size() mem.Size { return h.size }

// End returns the address of the first byte after the range.
func (h Handle) End() uintptr { return h.addr + uintptr(h.size) }

// Overlaps returns true if h and other share at least one byte.
func (h Handle) Overlaps(other Handle) bool {
	return h.size != 0 && other.size != 0 &&
		h.addr < other.End() && other.addr < h.End()
}

// Bytes returns a slice over the granted range. The range must be mapped.
func (h Handle) Bytes() []byte {
	return mem.Overlay(h.addr, h.size)
}

// Zero clears the granted range. The range must be mapped.
func (h Handle) Zero() {
	mem.Memset(h.addr, 0, h.size)
}
