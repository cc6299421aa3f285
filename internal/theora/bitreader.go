package theora

// bitReader reads MSB-first bit fields, the packing used by every Theora
// header.
type bitReader struct {
	data []byte
	pos  uint
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) readBit() (uint32, error) {
	byteIdx := r.pos >> 3
	if int(byteIdx) >= len(r.data) {
		return 0, errShortPacket
	}
	bit := uint32(r.data[byteIdx]>>(7-r.pos&7)) & 1
	r.pos++
	return bit, nil
}

// readBits reads n <= 32 bits. Reading zero bits always succeeds.
func (r *bitReader) readBits(n uint) (uint32, error) {
	if r.remaining() < n {
		r.pos = uint(len(r.data)) * 8
		return 0, errShortPacket
	}
	var v uint32
	for i := uint(0); i < n; i++ {
		bit, _ := r.readBit()
		v = v<<1 | bit
	}
	return v, nil
}

// readBytes reads n whole octets. The reader must be byte aligned.
func (r *bitReader) readBytes(n int) ([]byte, error) {
	start := int(r.pos >> 3)
	if n < 0 || start+n > len(r.data) {
		r.pos = uint(len(r.data)) * 8
		return nil, errShortPacket
	}
	r.pos += uint(n) * 8
	return r.data[start : start+n], nil
}

// readLength reads the 32-bit little-endian lengths used by the comment header.
func (r *bitReader) readLength() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r *bitReader) remaining() uint {
	total := uint(len(r.data)) * 8
	if r.pos >= total {
		return 0
	}
	return total - r.pos
}
