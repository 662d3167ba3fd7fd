package mem

// IsPowerOfTwo returns true if v is a non-zero power of two.
func IsPowerOfTwo(v Size) bool {
	return v != 0 && v&(v-1) == 0
}

// AlignUp rounds addr up to the nearest multiple of align which must be a
// power of two. The second return value is false if rounding wraps around the
// end of the address space.
func AlignUp(addr uintptr, align Size) (uintptr, bool) {
	mask := uintptr(align - 1)
	aligned := (addr + mask) &^ mask
	return aligned, aligned >= addr
}

// AlignDown rounds addr down to the nearest multiple of align which must be
// a power of two.
func AlignDown(addr uintptr, align Size) uintptr {
	return addr &^ uintptr(align-1)
}

// IsAligned returns true if addr is a multiple of align.
func IsAligned(addr uintptr, align Size) bool {
	return addr&uintptr(align-1) == 0
}
