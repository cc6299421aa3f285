// Package player bootstraps a decodable handle for the Theora video track of
// an Ogg file.
//
// Open reads the container page by page, routes pages into per-serial
// logical streams, probes every beginning-of-stream packet for the Theora
// signature, discards the streams that do not match, and feeds the selected
// stream's header packets to the Theora header codec until a frame decoder
// can be allocated. Any failure tears down everything acquired so far and
// surfaces one *Error tagged IO, BadHeaders, or NoVideoStream.
//
// A Handle is single-owner and not safe for concurrent use.
package player
