// Package ogg demultiplexes an Ogg container (RFC 3533) into per-stream
// packets on top of github.com/thesyncim/gopus/container/ogg, which frames
// and checksums individual pages.
//
// Sync is the page assembler: raw bytes go in through Write and complete,
// CRC-checked pages come out of PageOut. It skips bytes that do not start a
// valid page, so leading garbage and corrupt pages are resynchronized past.
// Stream rebuilds the packets of one logical bitstream from the pages routed
// to it, joining packets that span page boundaries and dropping partial
// packets across sequence gaps.
package ogg
