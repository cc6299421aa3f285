// Package theora negotiates Theora stream headers and allocates the frame
// decode context once negotiation completes.
//
// A Theora stream opens with three header packets, always in this order:
//
//	0x80 identification: version, frame geometry, frame rate, pixel format
//	0x81 comment:        vendor string and KEY=value user comments
//	0x82 setup:          loop filter limits, quantizer tables, Huffman trees
//
// Headers.Decode consumes them one at a time and reports how many are still
// required. Decode returns ErrNotFormat for packets that are not Theora at
// all, which lets a demultiplexer probe the first packet of every logical
// stream and discard the ones that belong to other codecs.
//
// Frame decoding itself is not implemented; Decoder only owns the state a
// frame decoder needs to start.
package theora
