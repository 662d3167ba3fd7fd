// Package hal sets up the hardware needed for early kernel diagnostics.
package hal

import (
	"minikern/kernel/driver/tty"
	"minikern/kernel/driver/video/console"
	"minikern/kernel/hal/multiboot"
	"minikern/kernel/kfmt"
)

var (
	// Console is the text-mode console used for diagnostics.
	Console = &console.VgaText{}

	// ActiveTerminal points to the currently active terminal.
	ActiveTerminal = &tty.Vt{}

	// fallbackFbAddr is used when the loader did not report an EGA text
	// framebuffer.
	fallbackFbAddr = console.DefaultFramebufferAddr
)

// InitTerminal provides a basic terminal to allow the kernel to emit some output
// till everything is properly setup. The console is bound to the framebuffer
// reported by the loader if it is in EGA text mode; otherwise the standard
// 80x25 text buffer is used. Once the terminal is attached, all kfmt output
// is routed to it.
func InitTerminal() {
	width, height, fbAddr := console.DefaultWidth, console.DefaultHeight, fallbackFbAddr

	if fbInfo := multiboot.GetFramebufferInfo(); fbInfo != nil && fbInfo.Type == multiboot.FramebufferTypeEGA && fbInfo.Width != 0 && fbInfo.Height != 0 {
		width, height, fbAddr = fbInfo.Width, fbInfo.Height, uintptr(fbInfo.PhysAddr)
	}

	Console.Init(width, height, fbAddr)
	ActiveTerminal.AttachTo(Console)
	ActiveTerminal.Clear()

	kfmt.SetOutputSink(ActiveTerminal)
}
