package theora

// Reference frames carry a border so motion vectors may point outside the
// picture.
const lumaBorder = 16

const (
	// FrameGolden is the most recent intra frame.
	FrameGolden = iota
	// FramePrevious is the previously decoded frame.
	FramePrevious
	// FrameCurrent is the frame being reconstructed.
	FrameCurrent
)

// Plane is one Y, Cb, or Cr image plane including its border.
type Plane struct {
	Width  int
	Height int
	Stride int
	Border int
	Data   []byte
}

// Decoder is the frame decode context allocated once header negotiation
// completes. It owns the reference frame buffers and the dequantization
// tables derived from the setup header.
type Decoder struct {
	info    Info
	setup   *Setup
	frames  [3][3]Plane
	dequant [2][3][64][64]uint16
	closed  bool
}

func newDecoder(info Info, setup *Setup) *Decoder {
	d := &Decoder{info: info, setup: setup}

	for ref := range d.frames {
		for pli := 0; pli < 3; pli++ {
			w, h := d.PlaneSize(pli)
			border := lumaBorder
			if pli > 0 {
				cw, ch := chromaShift(info.PixelFormat)
				border >>= max(cw, ch)
			}
			stride := w + 2*border
			d.frames[ref][pli] = Plane{
				Width:  w,
				Height: h,
				Stride: stride,
				Border: border,
				Data:   make([]byte, stride*(h+2*border)),
			}
		}
	}

	for qti := 0; qti < 2; qti++ {
		for pli := 0; pli < 3; pli++ {
			for qi := 0; qi < 64; qi++ {
				d.dequant[qti][pli][qi] = setup.matrix(qti, pli, qi)
			}
		}
	}
	return d
}

func chromaShift(pf PixelFormat) (x, y int) {
	switch pf {
	case PF420:
		return 1, 1
	case PF422:
		return 1, 0
	default:
		return 0, 0
	}
}

// Info returns the identification header the decoder was built from.
func (d *Decoder) Info() Info {
	return d.info
}

// PlaneSize returns the coded size of plane pli (0 = Y, 1 = Cb, 2 = Cr).
func (d *Decoder) PlaneSize(pli int) (int, int) {
	w, h := int(d.info.FrameWidth), int(d.info.FrameHeight)
	if pli == 0 {
		return w, h
	}
	x, y := chromaShift(d.info.PixelFormat)
	return w >> x, h >> y
}

// Plane returns plane pli of reference frame ref.
func (d *Decoder) Plane(ref, pli int) Plane {
	return d.frames[ref][pli]
}

// Dequant returns the dequantization matrix for the given frame type
// (0 intra, 1 inter), plane, and quality index.
func (d *Decoder) Dequant(qti, pli, qi int) [64]uint16 {
	return d.dequant[qti][pli][qi]
}

// HuffmanTable returns table hti from the setup header.
func (d *Decoder) HuffmanTable(hti int) []HuffCode {
	if d.setup == nil {
		return nil
	}
	return d.setup.Huffman[hti]
}

// LoopFilterLimit returns the loop filter limit for quality index qi.
func (d *Decoder) LoopFilterLimit(qi int) uint8 {
	if d.setup == nil {
		return 0
	}
	return d.setup.LoopFilterLimits[qi]
}

// Closed reports whether Close has released the decoder.
func (d *Decoder) Closed() bool {
	return d.closed
}

// Close releases the frame buffers. It is safe to call more than once.
func (d *Decoder) Close() {
	if d == nil || d.closed {
		return
	}
	for ref := range d.frames {
		for pli := range d.frames[ref] {
			d.frames[ref][pli].Data = nil
		}
	}
	d.setup = nil
	d.closed = true
}
