package theora

import (
	"theoraprobe/internal/ogg"
)

const (
	headerIdentification = 0x80
	headerComment        = 0x81
	headerSetup          = 0x82
)

const magic = "theora"

// Headers accumulates the three Theora header packets of one stream.
type Headers struct {
	Info    Info
	Comment Comment
	Setup   *Setup
}

// Complete reports whether all three headers have been decoded.
func (h *Headers) Complete() bool {
	return h.Info.decoded() && h.Comment.decoded() && h.Setup != nil
}

// Decode consumes one header packet and returns how many header packets are
// still required; zero means negotiation is complete.
//
// ErrNotFormat is returned for packets that do not carry the Theora
// signature. Every other failure wraps ErrBadHeader, and leaves the headers
// decoded so far unchanged.
func (h *Headers) Decode(pkt ogg.Packet) (int, error) {
	data := pkt.Data
	if len(data) == 0 {
		return 0, badHeader("empty packet")
	}

	kind := data[0]
	if kind&0x80 == 0 {
		if h.Complete() {
			return 0, nil
		}
		return 0, ErrNotFormat
	}
	if len(data) < 1+len(magic) || string(data[1:1+len(magic)]) != magic {
		return 0, ErrNotFormat
	}
	r := newBitReader(data[1+len(magic):])

	switch kind {
	case headerIdentification:
		if !pkt.BOS || h.Info.decoded() {
			return 0, badHeader("unexpected identification header")
		}
		if err := h.Info.unpack(r); err != nil {
			return 0, err
		}
		return 2, nil
	case headerComment:
		if !h.Info.decoded() || h.Comment.decoded() {
			return 0, badHeader("unexpected comment header")
		}
		if err := h.Comment.unpack(r); err != nil {
			return 0, err
		}
		return 1, nil
	case headerSetup:
		if !h.Info.decoded() || !h.Comment.decoded() || h.Setup != nil {
			return 0, badHeader("unexpected setup header")
		}
		setup, err := unpackSetup(r)
		if err != nil {
			return 0, err
		}
		h.Setup = setup
		return 0, nil
	default:
		return 0, badHeader("unknown header type %#x", kind)
	}
}

// NewDecoder allocates a frame decode context from the negotiated headers.
func (h *Headers) NewDecoder() (*Decoder, error) {
	if !h.Complete() {
		return nil, ErrIncomplete
	}
	if err := h.Info.checkFrameSize(); err != nil {
		return nil, err
	}
	return newDecoder(h.Info, h.Setup), nil
}

// Clear releases the setup tables and resets every header.
func (h *Headers) Clear() {
	h.Info = Info{}
	h.Comment = Comment{}
	h.Setup = nil
}
