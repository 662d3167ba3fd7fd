package allocator

import (
	"minikern/kernel"
	"minikern/kernel/hal/multiboot"
	"minikern/kernel/kfmt"
	"minikern/kernel/mem"
	"minikern/kernel/mem/pmm"
)

// ErrNoUsableMemory is returned by UsableRegion when the memory map does not
// contain at least one free page outside the kernel image.
var ErrNoUsableMemory = &kernel.Error{Module: "bump_alloc", Message: "no usable memory region"}

// UsableRegion scans the memory map reported by the bootloader and returns
// the largest page-aligned range of available memory that does not overlap
// the kernel image loaded at [kernelStart, kernelEnd).
func UsableRegion(kernelStart, kernelEnd uintptr) (pmm.Region, *kernel.Error) {
	var best pmm.Region

	// The kernel image extents are rounded outwards so that no page
	// partially occupied by the image is ever handed out.
	kernelStart = mem.AlignDown(kernelStart, mem.PageSize)
	if alignedEnd, ok := mem.AlignUp(kernelEnd, mem.PageSize); ok {
		kernelEnd = alignedEnd
	} else {
		// The image reaches into the last page of the address space.
		kernelEnd = ^uintptr(0)
	}

	multiboot.VisitMemRegions(func(entry *multiboot.MemoryMapEntry) bool {
		if entry.Type != multiboot.MemAvailable || entry.Length < uint64(mem.PageSize) {
			return true
		}

		// Reported addresses may not be page-aligned; round up the start
		// and round down the end.
		start, ok := mem.AlignUp(uintptr(entry.PhysAddress), mem.PageSize)
		end := mem.AlignDown(uintptr(entry.PhysAddress+entry.Length), mem.PageSize)
		if !ok || end <= start {
			return true
		}

		if kernelStart < end && start < kernelEnd {
			// Keep the larger of the pieces on either side of the image.
			var below, above mem.Size
			if kernelStart > start {
				below = mem.Size(kernelStart - start)
			}
			if kernelEnd < end {
				above = mem.Size(end - kernelEnd)
			}

			switch {
			case below == 0 && above == 0:
				return true
			case below >= above:
				end = kernelStart
			default:
				start = kernelEnd
			}
		}

		if size := mem.Size(end - start); size > best.Size {
			best = pmm.Region{Base: start, Size: size}
		}
		return true
	})

	if best.Size < mem.PageSize {
		return pmm.Region{}, ErrNoUsableMemory
	}

	return best, nil
}

// PrintMemoryMap scans the memory region information provided by the
// bootloader and prints out the system's memory map.
func PrintMemoryMap() {
	kfmt.Printf("[bump_alloc] system memory map:\n")
	var totalFree mem.Size
	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		kfmt.Printf("\t[0x%10x - 0x%10x], size: %10d, type: %s\n", region.PhysAddress, region.PhysAddress+region.Length, region.Length, region.Type.String())

		if region.Type == multiboot.MemAvailable {
			totalFree += mem.Size(region.Length)
		}
		return true
	})
	kfmt.Printf("[bump_alloc] available memory: %dKb\n", uint64(totalFree/mem.Kb))
}
