package player

import (
	"io"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"theoraprobe/internal/logging"
	"theoraprobe/internal/theora"
)

// Options configures Open.
type Options struct {
	// Logger receives bootstrap diagnostics. Nil discards them.
	Logger *slog.Logger
	// ChunkSize is the number of bytes requested per read. Zero selects
	// DefaultChunkSize.
	ChunkSize int
	// SharedLock holds a shared advisory lock on the file until Close. Open
	// fails with an IO error when another process holds it exclusively.
	SharedLock bool
	// SessionID tags every log line of this Handle. Empty generates one.
	SessionID string
}

// Handle owns an open Theora-in-Ogg file whose headers have been negotiated.
type Handle struct {
	path      string
	sessionID string
	logger    *slog.Logger

	file    *os.File
	lock    *flock.Flock
	streams *streamTable
	demux   *demuxer
	headers theora.Headers
	boot    *bootstrapper
	decoder *theora.Decoder
}

// Open opens path and negotiates the headers of its Theora stream. On failure
// every acquired resource is released and a nil Handle is returned with an
// *Error.
func Open(path string, opts Options) (*Handle, error) {
	h := newHandle(path, opts)

	file, err := os.Open(path)
	if err != nil {
		h.Close()
		return nil, ioError("open "+path, err)
	}
	h.file = file

	if opts.SharedLock {
		if err := h.acquireLock(); err != nil {
			h.Close()
			return nil, err
		}
	}

	if err := h.bootstrap(file, opts.ChunkSize, &h.headers); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func newHandle(path string, opts Options) *Handle {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := logging.NewComponentLogger(opts.Logger, "player")
	logger = logging.WithSessionID(logger, sessionID).With(logging.String(logging.FieldPath, path))
	return &Handle{
		path:      path,
		sessionID: sessionID,
		logger:    logger,
	}
}

func (h *Handle) acquireLock() error {
	lock := flock.New(h.path, flock.SetFlag(os.O_RDONLY))
	locked, err := lock.TryRLock()
	if err != nil {
		return ioError("lock "+h.path, err)
	}
	if !locked {
		return &Error{Kind: KindIO, Detail: "lock " + h.path + ": held exclusively by another process", Code: unix.EWOULDBLOCK}
	}
	h.lock = lock
	return nil
}

func (h *Handle) bootstrap(src io.Reader, chunkSize int, codec headerCodec) error {
	h.streams = newStreamTable()
	h.demux = newDemuxer(src, h.streams, chunkSize, h.logger)
	h.boot = newBootstrapper(h.demux, h.streams, codec, h.logger)
	if err := h.boot.run(); err != nil {
		h.logger.Debug("bootstrap failed", logging.Error(err))
		return err
	}
	h.decoder = h.boot.decoder
	h.logger.Info("theora headers negotiated",
		logging.Uint32(logging.FieldSerial, h.boot.video.Serial()),
		logging.Int(logging.FieldPages, h.demux.pages),
	)
	return nil
}

// Close releases the decoder, the header state, every logical stream, the
// page assembler, the lock, and the file. It never fails and tolerates a nil
// or partially constructed Handle. The Handle must not be used afterwards.
func (h *Handle) Close() {
	if h == nil {
		return
	}
	if h.decoder != nil {
		h.decoder.Close()
		h.decoder = nil
	}
	h.headers.Clear()
	if h.streams != nil {
		h.streams.clear()
		h.streams = nil
	}
	if h.demux != nil {
		h.demux.release()
		h.demux = nil
	}
	h.boot = nil
	if h.lock != nil {
		if err := h.lock.Unlock(); err != nil {
			h.logger.Debug("release lock", logging.Error(err))
		}
		h.lock = nil
	}
	if h.file != nil {
		if err := h.file.Close(); err != nil {
			h.logger.Debug("close source", logging.Error(err))
		}
		h.file = nil
	}
}

// Path returns the file the Handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// SessionID returns the identifier attached to this Handle's log lines.
func (h *Handle) SessionID() string {
	return h.sessionID
}

// Info returns the negotiated identification header.
func (h *Handle) Info() theora.Info {
	return h.headers.Info
}

// Comment returns the negotiated comment header.
func (h *Handle) Comment() theora.Comment {
	return h.headers.Comment
}

// Decoder returns the frame decode context.
func (h *Handle) Decoder() *theora.Decoder {
	return h.decoder
}

// Serial returns the serial number of the selected video stream.
func (h *Handle) Serial() uint32 {
	if h.boot == nil || h.boot.video == nil {
		return 0
	}
	return h.boot.video.Serial()
}

// Serials returns the serial numbers still held in the stream table.
func (h *Handle) Serials() []uint32 {
	if h.streams == nil {
		return nil
	}
	return h.streams.serials()
}

// PagesRead returns the number of container pages consumed so far.
func (h *Handle) PagesRead() int {
	if h.demux == nil {
		return 0
	}
	return h.demux.pages
}
