package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"theoraprobe/internal/config"
	"theoraprobe/internal/history"
	"theoraprobe/internal/logging"
	"theoraprobe/internal/player"
	"theoraprobe/internal/theora"
)

type probeInfo struct {
	Version       string   `json:"version"`
	FrameWidth    uint32   `json:"frame_width"`
	FrameHeight   uint32   `json:"frame_height"`
	PicWidth      uint32   `json:"picture_width"`
	PicHeight     uint32   `json:"picture_height"`
	PicX          uint32   `json:"picture_x"`
	PicY          uint32   `json:"picture_y"`
	FPSNumerator  uint32   `json:"fps_numerator"`
	FPSDenom      uint32   `json:"fps_denominator"`
	FPS           float64  `json:"fps"`
	Aspect        string   `json:"aspect"`
	PixelFormat   string   `json:"pixel_format"`
	ColorSpace    string   `json:"color_space"`
	TargetBitrate uint32   `json:"target_bitrate"`
	Quality       uint8    `json:"quality"`
	KeyframeShift uint8    `json:"keyframe_granule_shift"`
	Planes        []string `json:"planes"`
}

type probeResult struct {
	Path      string     `json:"path"`
	SizeBytes int64      `json:"size_bytes"`
	Outcome   string     `json:"outcome"`
	Detail    string     `json:"detail,omitempty"`
	Errno     string     `json:"errno,omitempty"`
	SessionID string     `json:"session_id"`
	Serial    uint32     `json:"serial,omitempty"`
	Pages     int        `json:"pages"`
	Info      *probeInfo `json:"info,omitempty"`
	Vendor    string     `json:"vendor,omitempty"`
	Comments  []string   `json:"comments,omitempty"`
}

func (r probeResult) ok() bool {
	return r.Outcome == history.OutcomeReady
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var record bool
	var lock bool

	cmd := &cobra.Command{
		Use:   "probe <file>...",
		Short: "Negotiate the Theora headers of one or more Ogg files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer func() { _ = ctx.closeLogger() }()

			opts := probeOptions{
				chunkSize: cfg.Demux.ReadChunkSize,
				lock:      lock || cfg.Demux.SharedLock,
				logger:    logger,
			}
			results := make([]probeResult, 0, len(args))
			for _, path := range args {
				results = append(results, probeFile(path, opts))
			}

			if record || cfg.History.Enabled {
				if err := recordResults(cmd.Context(), cfg, results); err != nil {
					logging.WarnWithContext(logger, "probe history not recorded", "history_write",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check paths.history_db"),
					)
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				colorize := shouldColorize(cmd.OutOrStdout())
				out := cmd.OutOrStdout()
				for i, res := range results {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprint(out, renderProbe(res, colorize))
				}
			}

			failed := 0
			for _, res := range results {
				if !res.ok() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "Record results in the history database even when history is disabled")
	cmd.Flags().BoolVar(&lock, "lock", false, "Hold a shared lock on each file while probing")
	return cmd
}

type probeOptions struct {
	chunkSize int
	lock      bool
	logger    *slog.Logger
}

func probeFile(path string, opts probeOptions) probeResult {
	res := probeResult{Path: path, SessionID: uuid.NewString()}
	if info, err := os.Stat(path); err == nil {
		res.SizeBytes = info.Size()
	}

	h, err := player.Open(path, player.Options{
		Logger:     opts.logger,
		ChunkSize:  opts.chunkSize,
		SharedLock: opts.lock,
		SessionID:  res.SessionID,
	})
	if err != nil {
		res.Outcome = outcomeFor(err)
		res.Detail = err.Error()
		var perr *player.Error
		if errors.As(err, &perr) && perr.Code != 0 {
			res.Errno = player.CodeName(perr.Code)
		}
		logging.ErrorWithContext(opts.logger, "probe failed", "probe_"+res.Outcome,
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldSessionID, res.SessionID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(res.Outcome)),
		)
		return res
	}
	defer h.Close()

	res.Outcome = history.OutcomeReady
	res.Serial = h.Serial()
	res.Pages = h.PagesRead()
	res.Info = describeInfo(h.Info(), h.Decoder())
	res.Vendor = h.Comment().Vendor
	res.Comments = append([]string(nil), h.Comment().Comments...)
	return res
}

func outcomeFor(err error) string {
	switch player.KindOf(err) {
	case player.KindIO:
		return history.OutcomeIO
	case player.KindNoVideoStream:
		return history.OutcomeNoVideo
	default:
		return history.OutcomeBadHeaders
	}
}

func hintFor(outcome string) string {
	switch outcome {
	case history.OutcomeIO:
		return "check that the file exists and is readable"
	case history.OutcomeNoVideo:
		return "the container holds no theora stream"
	default:
		return "the file is not an ogg container or its theora headers are damaged"
	}
}

func describeInfo(info theora.Info, dec *theora.Decoder) *probeInfo {
	out := &probeInfo{
		Version:       fmt.Sprintf("%d.%d.%d", info.VersionMajor, info.VersionMinor, info.VersionSubminor),
		FrameWidth:    info.FrameWidth,
		FrameHeight:   info.FrameHeight,
		PicWidth:      info.PicWidth,
		PicHeight:     info.PicHeight,
		PicX:          info.PicX,
		PicY:          info.PicY,
		FPSNumerator:  info.FPSNumerator,
		FPSDenom:      info.FPSDenominator,
		FPS:           info.FrameRate(),
		Aspect:        fmt.Sprintf("%d:%d", info.AspectNumerator, info.AspectDenominator),
		PixelFormat:   info.PixelFormat.String(),
		ColorSpace:    info.ColorSpace.String(),
		TargetBitrate: info.TargetBitrate,
		Quality:       info.Quality,
		KeyframeShift: info.KeyframeGranuleShift,
	}
	if dec != nil {
		for pli := 0; pli < 3; pli++ {
			w, h := dec.PlaneSize(pli)
			out.Planes = append(out.Planes, fmt.Sprintf("%dx%d", w, h))
		}
	}
	return out
}

func renderProbe(res probeResult, colorize bool) string {
	r := newReport(colorize)
	r.section(res.Path)
	size := "unknown"
	if res.SizeBytes > 0 {
		size = humanize.IBytes(uint64(res.SizeBytes))
	}
	if !res.ok() {
		message := res.Outcome
		if res.Detail != "" {
			message = res.Detail
		}
		r.outcome("Outcome", false, strings.ToUpper(res.Outcome), message)
		r.field("Size", size)
		r.field("Session", res.SessionID)
		return r.String()
	}

	info := res.Info
	r.outcome("Outcome", true, "OK", "headers negotiated")
	r.field("Size", size)
	r.field("Serial", fmt.Sprintf("0x%08x", res.Serial))
	r.field("Version", info.Version)
	r.field("Frame", fmt.Sprintf("%dx%d", info.FrameWidth, info.FrameHeight))
	r.field("Picture", fmt.Sprintf("%dx%d+%d+%d", info.PicWidth, info.PicHeight, info.PicX, info.PicY))
	r.field("Frame rate", fmt.Sprintf("%.3f fps (%d/%d)", info.FPS, info.FPSNumerator, info.FPSDenom))
	r.field("Aspect", info.Aspect)
	r.field("Pixel format", info.PixelFormat)
	r.field("Color space", info.ColorSpace)
	if len(info.Planes) > 0 {
		r.field("Planes", strings.Join(info.Planes, ", "))
	}
	r.field("Pages read", fmt.Sprintf("%d", res.Pages))
	r.field("Vendor", res.Vendor)
	r.field("Session", res.SessionID)

	if len(res.Comments) > 0 {
		rows := make([][]string, 0, len(res.Comments))
		for _, c := range res.Comments {
			key, value, _ := strings.Cut(c, "=")
			rows = append(rows, []string{key, value})
		}
		r.line(renderTable([]string{"Tag", "Value"}, rows, nil), "")
	}
	return r.String()
}

func recordResults(ctx context.Context, cfg *config.Config, results []probeResult) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		rec := history.Record{
			SessionID: res.SessionID,
			Path:      res.Path,
			SizeBytes: res.SizeBytes,
			Outcome:   res.Outcome,
			Detail:    res.Detail,
			Serial:    res.Serial,
			Pages:     res.Pages,
			Vendor:    res.Vendor,
		}
		if res.Info != nil {
			rec.Width = res.Info.FrameWidth
			rec.Height = res.Info.FrameHeight
			rec.FPS = res.Info.FPS
		}
		if _, err := store.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
