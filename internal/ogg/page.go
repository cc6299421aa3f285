package ogg

import (
	container "github.com/thesyncim/gopus/container/ogg"
)

// Page is one framed Ogg page. Parsing, encoding and the page CRC are
// provided by the gopus container package.
type Page = container.Page

// Page header flags.
const (
	FlagContinued = container.PageFlagContinuation
	FlagBOS       = container.PageFlagBOS
	FlagEOS       = container.PageFlagEOS
)

const headerSize = 27

// Lace joins packets into a page payload and builds the matching segment
// table. Every packet ends on the page.
func Lace(packets ...[]byte) (segments, payload []byte) {
	for _, p := range packets {
		segments = append(segments, container.BuildSegmentTable(len(p))...)
		payload = append(payload, p...)
	}
	return segments, payload
}

// pageLength returns the encoded length of the page at the start of data,
// or false when data does not yet hold the whole page.
func pageLength(data []byte) (int, bool) {
	if len(data) < headerSize {
		return 0, false
	}
	hdr := headerSize + int(data[26])
	if len(data) < hdr {
		return 0, false
	}
	total := hdr
	for _, seg := range data[headerSize:hdr] {
		total += int(seg)
	}
	if len(data) < total {
		return 0, false
	}
	return total, true
}
