package kernel

// Error describes a kernel error. The bootstrap code runs before any heap is
// available, so errors cannot be created with errors.New or fmt.Errorf.
// Instead, each package declares its errors as global pointers to an Error
// value; the compiler lays these out statically and callers can compare them
// by identity.
type Error struct {
	// Module is the name of the subsystem that raised the error.
	Module string

	// Message is a short, human-readable description.
	Message string
}

// Error implements the error interface. The module name is intentionally not
// included as building a composite string would require an allocation; use
// kfmt to render both fields.
func (e *Error) Error() string {
	return e.Message
}
