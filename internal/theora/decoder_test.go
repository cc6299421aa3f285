package theora

import (
	"errors"
	"testing"

	"theoraprobe/internal/ogg"
	"theoraprobe/internal/testsupport"
)

func TestNewDecoderRequiresCompleteHeaders(t *testing.T) {
	var h Headers
	if _, err := h.NewDecoder(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	negotiate(t, &h, testsupport.TheoraHeaders(testsupport.DefaultTheoraParams())[:2])
	if _, err := h.NewDecoder(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete before setup, got %v", err)
	}
	if _, err := h.Decode(ogg.Packet{Data: testsupport.TheoraSetup()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := h.NewDecoder(); err != nil {
		t.Fatalf("NewDecoder after setup: %v", err)
	}
}

func TestNewDecoderRejectsOversizedFrame(t *testing.T) {
	var h Headers
	negotiate(t, &h, testsupport.TheoraHeaders(testsupport.DefaultTheoraParams()))
	h.Info.FrameWidth, h.Info.FrameHeight = 65535*16, 65535*16

	dec, err := h.NewDecoder()
	if !errors.Is(err, ErrBadHeader) {
		t.Fatalf("expected ErrBadHeader, got %v", err)
	}
	if dec != nil {
		t.Fatal("expected no decoder for an oversized frame")
	}
}

func TestNewDecoderAllocatesPlanesAndTables(t *testing.T) {
	var h Headers
	negotiate(t, &h, testsupport.TheoraHeaders(testsupport.DefaultTheoraParams()))

	d, err := h.NewDecoder()
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	if w, ht := d.PlaneSize(0); w != 64 || ht != 48 {
		t.Fatalf("luma plane = %dx%d", w, ht)
	}
	if w, ht := d.PlaneSize(1); w != 32 || ht != 24 {
		t.Fatalf("chroma plane = %dx%d", w, ht)
	}
	luma := d.Plane(FrameGolden, 0)
	if luma.Border != 16 || luma.Stride != 96 || len(luma.Data) != 96*80 {
		t.Fatalf("unexpected luma plane: border=%d stride=%d len=%d", luma.Border, luma.Stride, len(luma.Data))
	}
	chroma := d.Plane(FrameCurrent, 2)
	if chroma.Border != 8 || chroma.Stride != 48 {
		t.Fatalf("unexpected chroma plane: border=%d stride=%d", chroma.Border, chroma.Stride)
	}

	cases := []struct {
		qti, pli, qi, ci int
		want             uint16
	}{
		{qti: 0, pli: 0, qi: 0, ci: 0, want: 320},
		{qti: 0, pli: 0, qi: 0, ci: 1, want: 340},
		{qti: 1, pli: 2, qi: 0, ci: 0, want: 320},
		{qti: 0, pli: 1, qi: 63, ci: 0, want: 36},
	}
	for _, tc := range cases {
		got := d.Dequant(tc.qti, tc.pli, tc.qi)[tc.ci]
		if got != tc.want {
			t.Fatalf("Dequant(%d,%d,%d)[%d] = %d, want %d", tc.qti, tc.pli, tc.qi, tc.ci, got, tc.want)
		}
	}
	if len(d.HuffmanTable(79)) != 2 {
		t.Fatal("expected huffman tables to be reachable from the decoder")
	}
	if d.LoopFilterLimit(0) != 7 {
		t.Fatalf("loop filter limit = %d", d.LoopFilterLimit(0))
	}

	d.Close()
	if !d.Closed() || d.Plane(FrameGolden, 0).Data != nil || d.HuffmanTable(0) != nil {
		t.Fatal("Close did not release decoder state")
	}
	d.Close()
}

func TestDecoderPlaneSizesFollowPixelFormat(t *testing.T) {
	for _, tc := range []struct {
		pf     uint8
		cw, ch int
	}{
		{pf: 2, cw: 32, ch: 48},
		{pf: 3, cw: 64, ch: 48},
	} {
		params := testsupport.DefaultTheoraParams()
		params.PixelFormat = tc.pf
		var h Headers
		negotiate(t, &h, testsupport.TheoraHeaders(params))
		d, err := h.NewDecoder()
		if err != nil {
			t.Fatalf("NewDecoder: %v", err)
		}
		if w, ht := d.PlaneSize(1); w != tc.cw || ht != tc.ch {
			t.Fatalf("%s chroma = %dx%d, want %dx%d", PixelFormat(tc.pf), w, ht, tc.cw, tc.ch)
		}
	}
}
