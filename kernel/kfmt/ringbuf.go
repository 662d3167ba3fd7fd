package kfmt

import (
	"io"

	"minikern/kernel"
)

var errRingBufferSize = &kernel.Error{Module: "kfmt", Message: "ring buffer size must be a power of 2"}

// RingBuffer is a byte ring buffer over caller-supplied storage. When the
// buffer is full, new writes overwrite the oldest unread bytes so the buffer
// always holds the most recent output.
//
// One byte of the storage is kept free to tell a full buffer apart from an
// empty one; a RingBuffer initialized with n bytes holds at most n-1 bytes.
type RingBuffer struct {
	buffer         []byte
	mask           int
	rIndex, wIndex int
}

// Init attaches the ring buffer to buf whose length must be a power of 2 and
// at least 2. Any previously buffered data is discarded.
func (rb *RingBuffer) Init(buf []byte) *kernel.Error {
	if n := len(buf); n < 2 || n&(n-1) != 0 {
		return errRingBufferSize
	}

	rb.buffer = buf
	rb.mask = len(buf) - 1
	rb.rIndex, rb.wIndex = 0, 0
	return nil
}

// Len returns the number of unread bytes.
func (rb *RingBuffer) Len() int {
	return (rb.wIndex - rb.rIndex) & rb.mask
}

// Write appends p to the buffer, discarding the oldest bytes if needed. A
// RingBuffer that has not been initialized silently drops all writes.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	if rb.buffer == nil {
		return len(p), nil
	}

	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & rb.mask
		if rb.wIndex == rb.rIndex {
			rb.rIndex = (rb.rIndex + 1) & rb.mask
		}
	}

	return len(p), nil
}

// Read reads up to len(p) unread bytes into p. It returns io.EOF when the
// buffer is empty.
func (rb *RingBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	// Copy the contiguous chunk that starts at rIndex; a wrapped buffer is
	// drained by the next call.
	end := rb.wIndex
	if rb.rIndex > rb.wIndex {
		end = len(rb.buffer)
	}

	n := copy(p, rb.buffer[rb.rIndex:end])
	rb.rIndex = (rb.rIndex + n) & rb.mask
	return n, nil
}
