// Package allocator implements the kernel's early physical memory allocator.
package allocator

import (
	"minikern/kernel"
	"minikern/kernel/mem"
	"minikern/kernel/mem/pmm"
)

var (
	// ErrReinitialized is returned when Init is called on an allocator
	// that is already active.
	ErrReinitialized = &kernel.Error{Module: "bump_alloc", Message: "allocator already initialized"}

	// ErrNotInitialized is returned when allocating from an allocator
	// that has not been initialized.
	ErrNotInitialized = &kernel.Error{Module: "bump_alloc", Message: "allocator not initialized"}

	// ErrOutOfMemory is returned when the region cannot fit a request.
	ErrOutOfMemory = &kernel.Error{Module: "bump_alloc", Message: "out of memory"}

	// ErrInvalidArgument is returned for zero-sized requests, alignments
	// that are not a power of two and invalid regions.
	ErrInvalidArgument = &kernel.Error{Module: "bump_alloc", Message: "invalid argument"}
)

// BumpAllocator implements a rudimentary physical memory allocator which is
// used to bootstrap the kernel.
//
// The allocator hands out contiguous ranges from a single region by
// advancing a cursor. Allocated ranges are never released; once the kernel
// is properly initialized the remainder of the region can be handed over to
// a more advanced allocator that does support freeing.
//
// The zero value is an uninitialized allocator. BumpAllocator is not safe
// for concurrent use.
type BumpAllocator struct {
	region pmm.Region

	// cursor is the offset from region.Base of the first unreserved byte.
	// It never decreases and never exceeds region.Size.
	cursor mem.Size

	active bool
}

// Init binds the allocator to region and resets its cursor. Init may only
// succeed once; subsequent calls return ErrReinitialized and leave the
// allocator untouched. An invalid region is rejected with ErrInvalidArgument.
func (alloc *BumpAllocator) Init(region pmm.Region) *kernel.Error {
	if alloc.active {
		return ErrReinitialized
	}

	if !region.Valid() {
		return ErrInvalidArgument
	}

	alloc.region = region
	alloc.cursor = 0
	alloc.active = true
	return nil
}

// Alloc reserves size bytes whose start address is a multiple of align.
//
// The cursor is first advanced to the next multiple of align (relative to
// physical address zero) and the range is reserved from there. If the
// request does not fit in the remaining space Alloc returns ErrOutOfMemory.
// Failed calls never modify the allocator state.
func (alloc *BumpAllocator) Alloc(size, align mem.Size) (Handle, *kernel.Error) {
	if !alloc.active {
		return Handle{}, ErrNotInitialized
	}

	if size == 0 || !mem.IsPowerOfTwo(align) {
		return Handle{}, ErrInvalidArgument
	}

	base, ok := mem.AlignUp(alloc.region.Base+uintptr(alloc.cursor), align)
	if !ok || base >= alloc.region.End() {
		return Handle{}, ErrOutOfMemory
	}

	// base lies inside the region so offset <= region.Size and the
	// subtraction below cannot underflow.
	offset := mem.Size(base - alloc.region.Base)
	if size > alloc.region.Size-offset {
		return Handle{}, ErrOutOfMemory
	}

	alloc.cursor = offset + size
	return Handle{addr: base, size: size}, nil
}

// AllocFrame reserves a single page-aligned physical frame.
func (alloc *BumpAllocator) AllocFrame() (pmm.Frame, *kernel.Error) {
	h, err := alloc.Alloc(mem.PageSize, mem.PageSize)
	if err != nil {
		return pmm.InvalidFrame, err
	}

	return pmm.FrameFromAddress(h.Address()), nil
}

// Initialized returns true once Init has succeeded.
func (alloc *BumpAllocator) Initialized() bool {
	return alloc.active
}

// Region returns the region managed by the allocator.
func (alloc *BumpAllocator) Region() pmm.Region {
	return alloc.region
}

// Used returns the number of bytes reserved so far, including any padding
// inserted to satisfy alignment requests.
func (alloc *BumpAllocator) Used() mem.Size {
	return alloc.cursor
}

// Available returns the number of bytes left in the region.
func (alloc *BumpAllocator) Available() mem.Size {
	return alloc.region.Size - alloc.cursor
}
