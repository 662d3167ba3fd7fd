// Package boot contains the kernel entry point. Control arrives at rt0 from a
// Multiboot2 loader using the 64-bit entry convention: the CPU is in long mode
// with low memory identity-mapped, EAX holds the loader magic and RBX the
// physical address of the boot information block. The stack set up by the
// loader is not used.
package boot

import (
	"minikern/kernel/cpu"
	"minikern/kernel/kmain"
	"minikern/kernel/mem"
)

const (
	// StackSize is the size of the kernel stack that rt0 switches to
	// before calling into Go code.
	StackSize = 16384

	// stackGuard mirrors the number of bytes that the Go toolchain
	// reserves at the bottom of each goroutine stack on amd64.
	stackGuard = 928

	// stackPaint is the value written to every stack byte by rt0.
	stackPaint = 0xaa
)

// bootG mirrors the leading fields of the runtime's goroutine descriptor.
// Compiled function prologues read stackGuard0 through the FS segment to
// detect stack overflows.
type bootG struct {
	stackLo     uintptr
	stackHi     uintptr
	stackGuard0 uintptr
	stackGuard1 uintptr
}

var (
	stack [StackSize]byte
	g0    bootG

	// tlsBlock backs the FS segment. rt0 stores &g0 in the second slot and
	// points FS at the third so that -8(FS) yields the current g.
	tlsBlock [3]uintptr

	// kmainFn and haltFn are mocked by tests.
	kmainFn = kmain.Kmain
	haltFn  = cpu.Halt
)

// rt0 is the ELF entry point of the kernel image. It is implemented in
// assembly and never returns.
func rt0()

// Enter is invoked by rt0 with the loader-supplied magic value and boot
// information address once a valid stack and goroutine descriptor are in
// place. It passes control to the kernel main function and halts the CPU if
// that ever returns.
//
//go:noinline
func Enter(magic uint32, bootInfoPtr uintptr) {
	kmain.StackUsageFn = StackUsage
	kmainFn(magic, bootInfoPtr)
	haltFn()
}

// StackUsage returns the maximum number of kernel stack bytes that have been
// used since rt0 painted the stack.
func StackUsage() mem.Size {
	// The stack grows downwards so the first modified byte from the bottom
	// marks the deepest point reached.
	for i := 0; i < len(stack); i++ {
		if stack[i] != stackPaint {
			return mem.Size(len(stack) - i)
		}
	}

	return 0
}
