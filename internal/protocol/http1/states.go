package http1

// RequestState represents the outcome of feeding the parser with a chunk of data.
type RequestState uint8

const (
	// Pending means the head isn't complete yet, so more data must be read.
	Pending RequestState = iota + 1
	// HeadersCompleted means the whole head was parsed.
	HeadersCompleted
	// Error means the head is malformed. The parser is reset and the connection must be closed.
	Error
)
