package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"theoraprobe/internal/ogg"
)

// Container builds an Ogg bitstream page by page. Sequence numbers are
// tracked per serial.
type Container struct {
	pages []*ogg.Page
	seq   map[uint32]uint32
}

// NewContainer returns an empty builder.
func NewContainer() *Container {
	return &Container{seq: make(map[uint32]uint32)}
}

// AddPage appends a page for serial holding packets, each ending on this page.
func (c *Container) AddPage(serial uint32, flags byte, packets ...[]byte) *Container {
	segments, payload := ogg.Lace(packets...)
	seq := c.seq[serial]
	c.seq[serial] = seq + 1
	c.pages = append(c.pages, &ogg.Page{
		HeaderType:   flags,
		SerialNumber: serial,
		PageSequence: seq,
		Segments:     segments,
		Payload:      payload,
	})
	return c
}

// AddBOS is AddPage with the BOS flag set.
func (c *Container) AddBOS(serial uint32, packets ...[]byte) *Container {
	return c.AddPage(serial, ogg.FlagBOS, packets...)
}

// Pages returns the number of pages added so far.
func (c *Container) Pages() int {
	return len(c.pages)
}

// Bytes encodes every page in order.
func (c *Container) Bytes() []byte {
	var out []byte
	for _, p := range c.pages {
		out = append(out, p.Encode()...)
	}
	return out
}

// WriteFile writes the container to name inside a fresh temp directory and
// returns the path.
func (c *Container) WriteFile(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, c.Bytes(), 0o644); err != nil {
		t.Fatalf("write container %s: %v", path, err)
	}
	return path
}
