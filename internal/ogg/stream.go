package ogg

// Packet is one codec packet rebuilt from the pages of a logical stream.
type Packet struct {
	Data []byte
	// BOS is set on the first packet of the stream.
	BOS bool
	// EOS is set on the last packet of the stream.
	EOS bool
	// GranulePos is only set on the last packet completed on a page; other
	// packets carry -1.
	GranulePos int64
	// Number counts packets from the start of the stream, including packets
	// lost to sequence gaps.
	Number int64
}

// Stream rebuilds packets for one serial number. Packets come out in the
// order they were completed.
type Stream struct {
	serial uint32

	queue       []Packet
	partial     []byte
	havePartial bool

	seqValid bool
	nextSeq  uint32
	packetNo int64
	holes    int
	eos      bool
}

// NewStream returns an empty stream for serial.
func NewStream(serial uint32) *Stream {
	return &Stream{serial: serial}
}

// Serial returns the serial number the stream accepts.
func (s *Stream) Serial() uint32 {
	return s.serial
}

// PageIn adds the packets carried by p to the stream.
func (s *Stream) PageIn(p *Page) error {
	if p.SerialNumber != s.serial {
		return ErrSerialMismatch
	}
	if p.Version != 0 {
		return ErrInvalidPage
	}

	if s.seqValid && p.PageSequence != s.nextSeq {
		s.dropPartial()
		s.holes++
		s.packetNo++
	}
	s.seqValid = true
	s.nextSeq = p.PageSequence + 1

	segs := p.Segments
	data := p.Payload
	off := 0
	i := 0

	switch {
	case p.IsContinuation() && !s.havePartial:
		// Tail of a packet whose start was never seen.
		for i < len(segs) {
			n := int(segs[i])
			off += n
			i++
			if n < 255 {
				break
			}
		}
	case !p.IsContinuation() && s.havePartial:
		s.dropPartial()
		s.holes++
	}

	bos := p.IsBOS()
	last := -1
	cur := s.partial
	for ; i < len(segs); i++ {
		n := int(segs[i])
		if off+n > len(data) {
			n = len(data) - off
		}
		cur = append(cur, data[off:off+n]...)
		off += n
		s.havePartial = true
		if segs[i] < 255 {
			s.queue = append(s.queue, Packet{
				Data:       cur,
				BOS:        bos,
				GranulePos: -1,
				Number:     s.packetNo,
			})
			bos = false
			s.packetNo++
			last = len(s.queue) - 1
			cur = nil
			s.havePartial = false
		}
	}
	if s.havePartial {
		s.partial = cur
	} else {
		s.partial = nil
	}

	if last >= 0 {
		s.queue[last].GranulePos = int64(p.GranulePos)
		if p.IsEOS() && !s.havePartial {
			s.queue[last].EOS = true
		}
	}
	if p.IsEOS() {
		s.eos = true
	}
	return nil
}

// PacketOut removes and returns the oldest complete packet.
func (s *Stream) PacketOut() (Packet, bool) {
	if len(s.queue) == 0 {
		return Packet{}, false
	}
	pkt := s.queue[0]
	s.queue[0] = Packet{}
	s.queue = s.queue[1:]
	return pkt, true
}

// Pending returns the number of complete packets waiting in the stream.
func (s *Stream) Pending() int {
	return len(s.queue)
}

// Holes returns how many times a partial packet was lost to a gap.
func (s *Stream) Holes() int {
	return s.holes
}

// EOS reports whether an end-of-stream page has been seen.
func (s *Stream) EOS() bool {
	return s.eos
}

// Clear releases every buffered packet and resets sequence tracking.
func (s *Stream) Clear() {
	s.queue = nil
	s.partial = nil
	s.havePartial = false
	s.seqValid = false
	s.nextSeq = 0
	s.packetNo = 0
	s.holes = 0
	s.eos = false
}

func (s *Stream) dropPartial() {
	s.partial = nil
	s.havePartial = false
}
