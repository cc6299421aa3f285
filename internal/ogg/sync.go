package ogg

import (
	"bytes"
	"errors"

	container "github.com/thesyncim/gopus/container/ogg"
)

var captureMark = []byte("OggS")

// Sync assembles raw container bytes into pages. Bytes that do not belong to
// a valid page are skipped, so a Sync recovers from leading garbage and from
// pages with a bad checksum.
type Sync struct {
	buf     []byte
	skipped int64
	badCRC  int
}

// NewSync returns an empty page assembler.
func NewSync() *Sync {
	return &Sync{}
}

// Write buffers p for page assembly. It never fails.
func (s *Sync) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// PageOut returns the next complete page, or false when more bytes are needed.
func (s *Sync) PageOut() (*Page, bool) {
	for len(s.buf) > 0 {
		idx := bytes.Index(s.buf, captureMark)
		if idx < 0 {
			// Keep a tail that may hold the start of a split capture pattern.
			keep := len(captureMark) - 1
			if keep > len(s.buf) {
				keep = len(s.buf)
			}
			s.skip(len(s.buf) - keep)
			return nil, false
		}
		if idx > 0 {
			s.skip(idx)
		}

		n, ok := pageLength(s.buf)
		if !ok {
			return nil, false
		}
		page, _, err := container.ParsePage(s.buf[:n])
		if err == nil {
			s.consume(n)
			return page, true
		}
		if errors.Is(err, ErrBadCRC) {
			s.badCRC++
		}
		s.skip(1)
	}
	return nil, false
}

// Buffered returns the number of bytes waiting for a complete page.
func (s *Sync) Buffered() int {
	return len(s.buf)
}

// Skipped returns the number of bytes discarded while searching for pages.
func (s *Sync) Skipped() int64 {
	return s.skipped
}

// CRCFailures returns the number of candidate pages rejected by checksum.
func (s *Sync) CRCFailures() int {
	return s.badCRC
}

// Reset drops all buffered bytes.
func (s *Sync) Reset() {
	s.buf = nil
	s.skipped = 0
	s.badCRC = 0
}

func (s *Sync) skip(n int) {
	s.skipped += int64(n)
	s.consume(n)
}

func (s *Sync) consume(n int) {
	remaining := copy(s.buf, s.buf[n:])
	s.buf = s.buf[:remaining]
}
