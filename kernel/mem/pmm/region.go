package pmm

import "minikern/kernel/mem"

// Region describes a contiguous range of physical memory. The zero Region is
// empty and invalid.
type Region struct {
	// Base is the physical address of the first byte in the region. It is
	// always page-aligned for regions obtained from the loader memory map.
	Base uintptr

	// Size is the length of the region in bytes.
	Size mem.Size
}

// End returns the address of the first byte after the region.
func (r Region) End() uintptr {
	return r.Base + uintptr(r.Size)
}

// Contains returns true if addr falls inside the region.
func (r Region) Contains(addr uintptr) bool {
	return addr >= r.Base && addr-r.Base < uintptr(r.Size)
}

// Valid returns true if the region is non-empty, starts on a page boundary
// and does not wrap around the end of the address space.
func (r Region) Valid() bool {
	return r.Size != 0 &&
		mem.IsAligned(r.Base, mem.PageSize) &&
		r.End() > r.Base
}
