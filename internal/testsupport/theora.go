package testsupport

import (
	"encoding/binary"
)

// TheoraParams describes the identification header written by TheoraHeaders.
type TheoraParams struct {
	Width  uint32
	Height uint32
	// PicWidth and PicHeight override the picture region, which otherwise
	// covers the whole frame.
	PicWidth    uint32
	PicHeight   uint32
	PicX        uint8
	PicY        uint8
	FPSNum      uint32
	FPSDen      uint32
	PixelFormat uint8
	VersionMin  uint8
	Vendor      string
	Comments    []string
}

// DefaultTheoraParams returns a small 4:2:0 stream description.
func DefaultTheoraParams() TheoraParams {
	return TheoraParams{
		Width:      64,
		Height:     48,
		FPSNum:     30000,
		FPSDen:     1001,
		VersionMin: 2,
		Vendor:     "Xiph.Org libtheora 1.1 20090822 (Thusnelda)",
		Comments:   []string{"TITLE=fixture", "ENCODER=testsupport"},
	}
}

// TheoraHeaders returns the identification, comment, and setup packets for a
// stream described by p.
func TheoraHeaders(p TheoraParams) [][]byte {
	return [][]byte{TheoraIdentification(p), TheoraComment(p), TheoraSetup()}
}

// TheoraIdentification builds a 0x80 identification header packet.
func TheoraIdentification(p TheoraParams) []byte {
	var w bitWriter
	w.header(0x80)
	w.write(3, 8)
	w.write(uint32(p.VersionMin), 8)
	w.write(1, 8)
	w.write((p.Width+15)/16, 16)
	w.write((p.Height+15)/16, 16)
	picW, picH := p.Width, p.Height
	if p.PicWidth != 0 {
		picW = p.PicWidth
	}
	if p.PicHeight != 0 {
		picH = p.PicHeight
	}
	w.write(picW, 24)
	w.write(picH, 24)
	w.write(uint32(p.PicX), 8)
	w.write(uint32(p.PicY), 8)
	w.write(p.FPSNum, 32)
	w.write(p.FPSDen, 32)
	w.write(1, 24)
	w.write(1, 24)
	w.write(0, 8)
	w.write(0, 24)
	w.write(48, 6)
	w.write(6, 5)
	w.write(uint32(p.PixelFormat), 2)
	w.write(0, 3)
	return w.bytes()
}

// TheoraComment builds a 0x81 comment header packet.
func TheoraComment(p TheoraParams) []byte {
	out := append([]byte{0x81}, "theora"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Vendor)))
	out = append(out, p.Vendor...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.Comments)))
	for _, c := range p.Comments {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c)))
		out = append(out, c...)
	}
	return out
}

// TheoraSetup builds a minimal valid 0x82 setup header: one base matrix, a
// single quant range shared by every plane, and two-token Huffman tables.
func TheoraSetup() []byte {
	var w bitWriter
	w.header(0x82)

	// Loop filter limits: 3-bit width, 64 values.
	w.write(3, 3)
	for qi := 0; qi < 64; qi++ {
		w.write(uint32(7-qi/10), 3)
	}
	// AC and DC scale: 4-bit width minus one, 64 values each.
	for table := 0; table < 2; table++ {
		w.write(9, 4)
		for qi := 0; qi < 64; qi++ {
			w.write(uint32(500-qi*7), 10)
		}
	}
	// One base matrix.
	w.write(0, 9)
	for ci := 0; ci < 64; ci++ {
		w.write(uint32(16+ci), 8)
	}
	// Quant ranges. The index width is ilog(0) = 0 bits.
	w.write(62, 6)
	for pli := 1; pli < 3; pli++ {
		w.write(0, 1)
	}
	for pli := 0; pli < 3; pli++ {
		w.write(0, 1)
		w.write(1, 1)
	}
	// Huffman tables: a root with two leaves.
	for hti := 0; hti < 80; hti++ {
		w.write(0, 1)
		w.write(1, 1)
		w.write(0, 5)
		w.write(1, 1)
		w.write(1, 5)
	}
	return w.bytes()
}

// VorbisIdentification returns a packet that probes as a non-Theora stream.
func VorbisIdentification() []byte {
	out := append([]byte{0x01}, "vorbis"...)
	out = append(out, 0, 0, 0, 0, 2, 0x44, 0xAC, 0, 0)
	return append(out, make([]byte, 14)...)
}

type bitWriter struct {
	buf   []byte
	nbits uint
}

func (w *bitWriter) header(kind byte) {
	w.buf = append([]byte{kind}, "theora"...)
	w.nbits = uint(len(w.buf)) * 8
}

func (w *bitWriter) write(v uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		if w.nbits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (7 - w.nbits%8)
		}
		w.nbits++
	}
}

func (w *bitWriter) bytes() []byte {
	return append([]byte(nil), w.buf...)
}
