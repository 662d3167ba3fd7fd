package mem

const (
	// PageShift is equal to log2(PageSize). Shifting a physical address
	// right by PageShift yields its page (frame) number.
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = Size(1 << PageShift)
)
