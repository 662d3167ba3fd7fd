package main

import "minikern/kernel/boot"

var (
	bootMagic   uint32
	bootInfoPtr uintptr
)

// main makes a dummy call to the Go side of the boot trampoline. It is
// intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code; the image entry point is boot.rt0 which the assembly
// code jumps into directly.
//
// Global variables are passed as arguments to prevent the compiler from
// inlining the call and removing the kernel code from the generated object.
func main() {
	boot.Enter(bootMagic, bootInfoPtr)
}
