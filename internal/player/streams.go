package player

import (
	"slices"

	"theoraprobe/internal/ogg"
)

// streamTable maps serial numbers to their logical streams.
type streamTable struct {
	entries map[uint32]*ogg.Stream
}

func newStreamTable() *streamTable {
	return &streamTable{entries: make(map[uint32]*ogg.Stream)}
}

func (t *streamTable) get(serial uint32) *ogg.Stream {
	return t.entries[serial]
}

func (t *streamTable) insert(s *ogg.Stream) {
	t.entries[s.Serial()] = s
}

// remove drops the entry for serial and releases its buffered packets.
func (t *streamTable) remove(serial uint32) {
	if s, ok := t.entries[serial]; ok {
		s.Clear()
		delete(t.entries, serial)
	}
}

func (t *streamTable) clear() {
	for serial := range t.entries {
		t.remove(serial)
	}
}

func (t *streamTable) len() int {
	return len(t.entries)
}

// serials returns the registered serial numbers in ascending order.
func (t *streamTable) serials() []uint32 {
	out := make([]uint32, 0, len(t.entries))
	for serial := range t.entries {
		out = append(out, serial)
	}
	slices.Sort(out)
	return out
}
