package player

import (
	"errors"
	"log/slog"

	"theoraprobe/internal/logging"
	"theoraprobe/internal/ogg"
	"theoraprobe/internal/theora"
)

type state int

const (
	stateScanningBOS state = iota
	stateCollectingHeaders
	stateReady
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateScanningBOS:
		return "SCANNING_BOS"
	case stateCollectingHeaders:
		return "COLLECTING_HEADERS"
	case stateReady:
		return "READY"
	case stateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// headerCodec is the header negotiation side of the Theora codec.
type headerCodec interface {
	// Decode returns the number of header packets still required, zero once
	// negotiation is complete.
	Decode(pkt ogg.Packet) (int, error)
	NewDecoder() (*theora.Decoder, error)
}

// bootstrapper drives the demuxer until the video stream's headers are
// negotiated. Each step call advances by at most one page or one packet.
type bootstrapper struct {
	demux   *demuxer
	streams *streamTable
	codec   headerCodec
	logger  *slog.Logger

	state      state
	videoFound bool
	video      *ogg.Stream
	decoder    *theora.Decoder
	err        error
}

func newBootstrapper(demux *demuxer, streams *streamTable, codec headerCodec, logger *slog.Logger) *bootstrapper {
	return &bootstrapper{
		demux:   demux,
		streams: streams,
		codec:   codec,
		logger:  logger,
		state:   stateScanningBOS,
	}
}

// run steps until READY or FAILED.
func (b *bootstrapper) run() error {
	for {
		switch b.state {
		case stateReady:
			return nil
		case stateFailed:
			return b.err
		}
		b.step()
	}
}

func (b *bootstrapper) step() {
	var err error
	switch b.state {
	case stateScanningBOS:
		err = b.scanBOS()
	case stateCollectingHeaders:
		err = b.collectHeaders()
	default:
		return
	}
	if err != nil {
		b.fail(err)
	}
}

func (b *bootstrapper) transition(next state) {
	b.logger.Debug("bootstrap state change",
		logging.String("from", b.state.String()),
		logging.String(logging.FieldState, next.String()),
		logging.Int(logging.FieldPages, b.demux.pages),
	)
	b.state = next
}

func (b *bootstrapper) fail(err error) {
	b.err = err
	b.transition(stateFailed)
}

func (b *bootstrapper) scanBOS() error {
	more, err := b.demux.next()
	if err != nil {
		return err
	}
	if !more || !b.demux.page.IsBOS() {
		return b.finishScan()
	}

	page := b.demux.page
	if b.videoFound {
		if page.SerialNumber != b.video.Serial() {
			b.discard(page.SerialNumber, "video stream already selected")
		}
		return nil
	}

	stream := b.streams.get(page.SerialNumber)
	if stream == nil {
		return badHeaders(nil, "stream %d has no table entry", page.SerialNumber)
	}
	pkt, ok := stream.PacketOut()
	if !ok {
		return badHeaders(nil, "beginning-of-stream page for serial %d carries no complete packet", page.SerialNumber)
	}

	if _, err := b.codec.Decode(pkt); err != nil {
		if errors.Is(err, theora.ErrNotFormat) {
			b.discard(page.SerialNumber, "not theora")
			return nil
		}
		return badHeaders(err, "identification header of stream %d", page.SerialNumber)
	}

	b.videoFound = true
	b.video = stream
	b.logger.Info("theora stream selected", logging.Uint32(logging.FieldSerial, page.SerialNumber))
	return nil
}

func (b *bootstrapper) finishScan() error {
	if b.videoFound {
		b.transition(stateCollectingHeaders)
		return nil
	}
	if b.demux.pages == 0 {
		return badHeaders(nil, "no container page found")
	}
	return noVideoStream("no logical stream was accepted as theora")
}

func (b *bootstrapper) collectHeaders() error {
	pkt, ok := b.video.PacketOut()
	if !ok {
		more, err := b.demux.next()
		if err != nil {
			return err
		}
		if !more {
			return badHeaders(nil, "end of file before header negotiation completed")
		}
		if page := b.demux.page; page.IsBOS() && page.SerialNumber != b.video.Serial() {
			b.discard(page.SerialNumber, "video stream already selected")
		}
		return nil
	}

	remaining, err := b.codec.Decode(pkt)
	if err != nil {
		return badHeaders(err, "header packet %d", pkt.Number)
	}
	if remaining > 0 {
		return nil
	}

	decoder, err := b.codec.NewDecoder()
	if err != nil {
		return badHeaders(err, "allocate decoder")
	}
	b.decoder = decoder
	b.transition(stateReady)
	return nil
}

func (b *bootstrapper) discard(serial uint32, reason string) {
	b.streams.remove(serial)
	b.logger.Debug("stream discarded",
		logging.Uint32(logging.FieldSerial, serial),
		logging.String("reason", reason),
	)
}
