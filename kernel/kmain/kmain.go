// Package kmain contains the kernel's logical entry point.
package kmain

import (
	"minikern/kernel"
	"minikern/kernel/driver/video/console"
	"minikern/kernel/hal"
	"minikern/kernel/hal/multiboot"
	"minikern/kernel/kfmt"
	"minikern/kernel/mem"
	"minikern/kernel/mem/pmm/allocator"
)

// diagBufferSize is the size of the ring buffer that keeps a copy of the
// boot log. It must be a power of two.
const diagBufferSize = 4 * mem.Kb

var (
	errBadBootMagic       = &kernel.Error{Module: "kmain", Message: "invalid multiboot2 magic value"}
	errMissingKernelImage = &kernel.Error{Module: "kmain", Message: "bootloader did not report the kernel ELF sections"}
	errKmainReturned      = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// bootLog holds a copy of all kfmt output once the allocator is up.
	bootLog kfmt.RingBuffer

	statusMsg  = "minikern: early boot complete"
	statusAttr = console.MakeAttr(console.Black, console.LightGreen)

	// panicFn is mocked by tests.
	panicFn = kfmt.Panic

	// StackUsageFn reports the kernel stack high watermark. It is installed
	// by the boot trampoline before Kmain runs; while nil the watermark is
	// not reported.
	StackUsageFn func() mem.Size
)

// Kmain is invoked by the boot trampoline with the values that the loader
// passed in EAX and RBX. It sets up the diagnostic terminal, validates the
// loader handoff and brings up the early physical memory allocator.
//
// Kmain is not expected to return. If it does, the trampoline will halt the
// CPU.
//
//go:noinline
func Kmain(magic uint32, bootInfoPtr uintptr) {
	multiboot.SetInfoPtr(bootInfoPtr)
	hal.InitTerminal()

	if magic != multiboot.BootloaderMagic {
		kfmt.Printf("[kmain] got magic 0x%x; expected 0x%x\n", magic, uint32(multiboot.BootloaderMagic))
		panicFn(errBadBootMagic)
		return
	}

	kfmt.Printf("[kmain] minikern starting; boot info at 0x%x\n", bootInfoPtr)
	allocator.PrintMemoryMap()

	kernelStart, kernelEnd := kernelExtents()
	if kernelEnd == 0 {
		panicFn(errMissingKernelImage)
		return
	}
	kfmt.Printf("[kmain] kernel image: [0x%x - 0x%x]\n", kernelStart, kernelEnd)

	region, err := allocator.UsableRegion(kernelStart, kernelEnd)
	if err != nil {
		panicFn(err)
		return
	}

	var alloc allocator.BumpAllocator
	if err = alloc.Init(region); err != nil {
		panicFn(err)
		return
	}
	kfmt.Printf("[kmain] allocator region: [0x%x - 0x%x], size: %dKb\n", region.Base, region.End(), uint64(region.Size/mem.Kb))

	diag, err := alloc.Alloc(diagBufferSize, mem.PageSize)
	if err != nil {
		panicFn(err)
		return
	}
	diag.Zero()
	if err = bootLog.Init(diag.Bytes()); err != nil {
		panicFn(err)
		return
	}
	kfmt.SetLogBuffer(&bootLog)
	kfmt.Printf("[kmain] boot log at 0x%x; allocator used: %d, available: %d\n", diag.Address(), uint64(alloc.Used()), uint64(alloc.Available()))

	if StackUsageFn != nil {
		kfmt.Printf("[kmain] stack usage: %d bytes\n", uint64(StackUsageFn()))
	}

	_, height := hal.Console.Dimensions()
	hal.Console.WriteText(height-1, 0, statusMsg, statusAttr)

	// Use panicFn instead of returning so the trampoline never has to
	// deal with an unexpected return.
	panicFn(errKmainReturned)
}

// kernelExtents returns the range of physical memory occupied by the
// allocated sections of the kernel image. It returns (0, 0) if the loader
// did not supply the ELF section headers.
func kernelExtents() (uintptr, uintptr) {
	var (
		start, end uintptr
		found      bool
	)

	multiboot.VisitElfSections(func(_ string, flags multiboot.ElfSectionFlag, address uintptr, size uint64) {
		if flags&multiboot.ElfSectionAllocated == 0 {
			return
		}

		if !found || address < start {
			start = address
		}
		if secEnd := address + uintptr(size); !found || secEnd > end {
			end = secEnd
		}
		found = true
	})

	return start, end
}
