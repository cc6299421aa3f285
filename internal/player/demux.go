package player

import (
	"errors"
	"io"
	"log/slog"

	"theoraprobe/internal/logging"
	"theoraprobe/internal/ogg"
)

// DefaultChunkSize is the number of bytes requested per source read.
const DefaultChunkSize = 64 * 1024

// demuxer pulls pages out of the source and routes them into the stream table.
type demuxer struct {
	src     io.Reader
	sync    *ogg.Sync
	streams *streamTable
	chunk   []byte
	logger  *slog.Logger

	// page is overwritten by every successful call to next.
	page    *ogg.Page
	eof     bool
	pages   int
	dropped int
}

func newDemuxer(src io.Reader, streams *streamTable, chunkSize int, logger *slog.Logger) *demuxer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &demuxer{
		src:     src,
		sync:    ogg.NewSync(),
		streams: streams,
		chunk:   make([]byte, chunkSize),
		logger:  logger,
	}
}

// next fetches and routes the next page. It returns false once the source is
// exhausted; end of file is permanent and the source is never read again.
func (d *demuxer) next() (bool, error) {
	for {
		if page, ok := d.sync.PageOut(); ok {
			d.page = page
			d.pages++
			d.route(page)
			return true, nil
		}
		d.page = nil
		if d.eof {
			return false, nil
		}

		n, err := d.src.Read(d.chunk)
		if n > 0 {
			_, _ = d.sync.Write(d.chunk[:n])
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return false, ioError("read source", err)
		}
		if n == 0 || err != nil {
			d.eof = true
			d.logger.Debug("end of file",
				logging.Int(logging.FieldPages, d.pages),
				logging.Int64("skipped_bytes", d.sync.Skipped()),
				logging.Int("crc_failures", d.sync.CRCFailures()),
			)
		}
	}
}

func (d *demuxer) route(page *ogg.Page) {
	stream := d.streams.get(page.SerialNumber)
	if stream == nil {
		if !page.IsBOS() {
			d.dropped++
			return
		}
		stream = ogg.NewStream(page.SerialNumber)
		d.streams.insert(stream)
	}
	if err := stream.PageIn(page); err != nil {
		logging.WarnWithContext(d.logger, "page rejected by stream", "page_rejected",
			logging.Uint32(logging.FieldSerial, page.SerialNumber),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the container may be damaged"),
		)
	}
}

// release drops the assembler buffer and the current page.
func (d *demuxer) release() {
	d.sync.Reset()
	d.page = nil
	d.chunk = nil
}
