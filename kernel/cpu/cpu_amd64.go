// Package cpu exposes the privileged instructions used by the bootstrap path.
package cpu

// Halt disables interrupts and stops instruction execution. On real hardware
// Halt never returns: the halt is re-entered if the CPU is woken up by a
// non-maskable interrupt.
func Halt()
