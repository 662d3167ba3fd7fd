// Package kfmt implements the diagnostic output path used while the kernel
// bootstraps: an allocation-free Printf, a byte ring buffer for keeping a
// copy of the boot log and the kernel panic routine.
package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("%!(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errBadVerb      = []byte("%!(BADVERB)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// numFmtBuf holds the digits of the number being formatted. Digits
	// are emitted right-to-left starting at the end of the buffer.
	numFmtBuf [maxBufSize]byte

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// outputSink receives the output of Printf. While it is nil, Printf
	// output is only recorded in the log buffer (if one is set).
	outputSink io.Writer

	// logBuffer, if set, receives a copy of everything written by Printf.
	logBuffer *RingBuffer

	printfTarget printfWriter
)

// printfWriter forwards Printf output to the output sink and the log buffer.
type printfWriter struct{}

func (printfWriter) Write(p []byte) (int, error) {
	if outputSink != nil {
		outputSink.Write(p)
	}

	if logBuffer != nil {
		logBuffer.Write(p)
	}

	return len(p), nil
}

// SetOutputSink sets the target for calls to Printf.
func SetOutputSink(w io.Writer) {
	outputSink = w
}

// GetOutputSink returns the current target for calls to Printf.
func GetOutputSink() io.Writer {
	return outputSink
}

// SetLogBuffer installs rb as the boot log. Passing nil stops recording.
func SetLogBuffer(rb *RingBuffer) {
	logBuffer = rb
}

// Printf formats according to a format specifier and writes to the active
// output sink. See Fprintf for the supported formatting verbs.
func Printf(format string, args ...interface{}) {
	Fprintf(&printfTarget, format, args...)
}

// Fprintf provides a minimal Fprintf implementation that can be safely used
// before the Go runtime has been initialized. It never allocates memory.
//
// The following subset of formatting verbs is supported:
//
//	%s the uninterpreted bytes of a string or byte slice
//	%d base 10 integer
//	%o base 8 integer
//	%x base 16 integer, with lower-case letters for a-f
//	%t "true" or "false"
//	%% a literal percent sign
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces while base-8 and base-16 integers are
// left-padded with zeroes.
//
// Only the built-in string, bool and integer types are recognized; named
// types must be converted by the caller as the interface conversion check
// needed to handle them would require itables that are not initialized at
// boot.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var argIndex, width int

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		width = 0
		for i++; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == len(format) {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			writeByte(w, '%')
			continue
		}

		if argIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		switch verb {
		case 'd':
			fmtInt(w, args[argIndex], 10, width)
		case 'o':
			fmtInt(w, args[argIndex], 8, width)
		case 'x':
			fmtInt(w, args[argIndex], 16, width)
		case 's':
			fmtString(w, args[argIndex], width)
		case 't':
			fmtBool(w, args[argIndex])
		default:
			doWrite(w, errBadVerb)
		}
		argIndex++
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case b:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		fmtRepeat(w, ' ', width-len(s))
		// converting s to a byte slice would allocate.
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		fmtRepeat(w, ' ', width-len(s))
		doWrite(w, s)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt formats an integer value in the requested base. Numbers are padded
// to width using spaces for base 10 and zeroes for the other bases.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		neg bool
		val uint64
	)

	switch n := v.(type) {
	case uint8:
		val = uint64(n)
	case uint16:
		val = uint64(n)
	case uint32:
		val = uint64(n)
	case uint64:
		val = n
	case uint:
		val = uint64(n)
	case uintptr:
		val = uint64(n)
	case int8:
		neg, val = signedToUint(int64(n))
	case int16:
		neg, val = signedToUint(int64(n))
	case int32:
		neg, val = signedToUint(int64(n))
	case int64:
		neg, val = signedToUint(n)
	case int:
		neg, val = signedToUint(int64(n))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if width > maxBufSize-1 {
		width = maxBufSize - 1
	}

	start := maxBufSize
	for {
		start--
		digit := byte(val % base)
		if digit < 10 {
			numFmtBuf[start] = '0' + digit
		} else {
			numFmtBuf[start] = 'a' + digit - 10
		}

		if val /= base; val == 0 {
			break
		}
	}

	signLen := 0
	if neg {
		signLen = 1
	}

	if base == 10 {
		if neg {
			start--
			numFmtBuf[start] = '-'
		}
		for ; maxBufSize-start < width; start-- {
			numFmtBuf[start-1] = ' '
		}
	} else {
		for ; maxBufSize-start+signLen < width; start-- {
			numFmtBuf[start-1] = '0'
		}
		if neg {
			start--
			numFmtBuf[start] = '-'
		}
	}

	doWrite(w, numFmtBuf[start:])
}

// signedToUint returns the sign and magnitude of v.
func signedToUint(v int64) (bool, uint64) {
	if v < 0 {
		return true, uint64(-v)
	}
	return false, uint64(v)
}

func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite hides p from the compiler's escape analysis. Without this, passing
// p to the io.Writer interface flags it as escaping, which in turn makes every
// Printf call box its arguments on the heap and crash the kernel before an
// allocator exists.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	if w != nil {
		w.Write(*(*[]byte)(bufPtr))
	}
}

// noEscape hides a pointer from escape analysis. It mirrors the helper of the
// same name in runtime/stubs.go.
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
