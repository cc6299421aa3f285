package ogg

import (
	"errors"

	container "github.com/thesyncim/gopus/container/ogg"
)

var (
	// ErrBadCRC indicates the page CRC checksum does not match the computed value.
	ErrBadCRC = container.ErrBadCRC

	// ErrInvalidPage indicates the page structure is malformed, such as a
	// missing capture pattern or an unsupported stream structure version.
	ErrInvalidPage = container.ErrInvalidPage

	// ErrSerialMismatch is returned when a page is fed to a Stream that owns a
	// different serial number.
	ErrSerialMismatch = errors.New("ogg: page serial does not match stream")
)
