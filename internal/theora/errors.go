package theora

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFormat indicates the packet does not belong to a Theora stream.
	ErrNotFormat = errors.New("theora: not a theora packet")

	// ErrBadHeader indicates a malformed, truncated, or out-of-order header.
	ErrBadHeader = errors.New("theora: bad header")

	// ErrVersion indicates a bitstream version this decoder does not support.
	ErrVersion = fmt.Errorf("%w: unsupported bitstream version", ErrBadHeader)

	// ErrIncomplete is returned when a decoder is requested before all three
	// headers have been decoded.
	ErrIncomplete = errors.New("theora: header negotiation incomplete")

	errShortPacket = errors.New("theora: packet too short")
)

func badHeader(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadHeader, fmt.Sprintf(format, args...))
}
