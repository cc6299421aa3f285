package player

import (
	"bytes"
	"errors"
	"testing"

	"theoraprobe/internal/logging"
	"theoraprobe/internal/ogg"
	"theoraprobe/internal/testsupport"
	"theoraprobe/internal/theora"
)

// countingCodec wraps real headers and records how the bootstrapper drives them.
type countingCodec struct {
	headers     theora.Headers
	decodes     int
	newDecoders int
}

func (c *countingCodec) Decode(pkt ogg.Packet) (int, error) {
	c.decodes++
	return c.headers.Decode(pkt)
}

func (c *countingCodec) NewDecoder() (*theora.Decoder, error) {
	c.newDecoders++
	return c.headers.NewDecoder()
}

func newTestBootstrapper(data []byte, codec headerCodec) *bootstrapper {
	streams := newStreamTable()
	demux := newDemuxer(bytes.NewReader(data), streams, 0, logging.NewNop())
	return newBootstrapper(demux, streams, codec, logging.NewNop())
}

func TestBootstrapStates(t *testing.T) {
	codec := &countingCodec{}
	b := newTestBootstrapper(twoPageContainer().Bytes(), codec)

	steps := []struct {
		state      state
		videoFound bool
		pages      int
	}{
		{state: stateScanningBOS, videoFound: true, pages: 1},
		{state: stateCollectingHeaders, videoFound: true, pages: 2},
		{state: stateCollectingHeaders, videoFound: true, pages: 2},
		{state: stateReady, videoFound: true, pages: 2},
	}
	for i, want := range steps {
		b.step()
		if b.state != want.state || b.videoFound != want.videoFound || b.demux.pages != want.pages {
			t.Fatalf("step %d: state=%s videoFound=%v pages=%d, want %s %v %d",
				i, b.state, b.videoFound, b.demux.pages, want.state, want.videoFound, want.pages)
		}
	}

	if b.decoder == nil {
		t.Fatal("expected decoder after READY")
	}
	if codec.newDecoders != 1 {
		t.Fatalf("decoder allocated %d times, want 1", codec.newDecoders)
	}
	if codec.decodes != 3 {
		t.Fatalf("decode calls = %d, want 3", codec.decodes)
	}

	b.step()
	if b.state != stateReady || codec.newDecoders != 1 {
		t.Fatal("READY must be terminal")
	}
}

func TestBootstrapFirstAcceptedWins(t *testing.T) {
	hdrs := testsupport.TheoraHeaders(testsupport.DefaultTheoraParams())
	data := testsupport.NewContainer().
		AddBOS(1, hdrs[0]).
		AddBOS(2, hdrs[0]).
		AddPage(1, 0, hdrs[1], hdrs[2]).
		AddPage(2, 0, hdrs[1], hdrs[2]).
		Bytes()

	codec := &countingCodec{}
	b := newTestBootstrapper(data, codec)
	if err := b.run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.video.Serial() != 1 {
		t.Fatalf("selected serial = %d, want 1", b.video.Serial())
	}
	if b.streams.len() != 1 || b.streams.get(1) == nil {
		t.Fatalf("stream table = %v", b.streams.serials())
	}
	if codec.decodes != 3 {
		t.Fatalf("second theora stream should not be probed, decodes = %d", codec.decodes)
	}
}

func TestBootstrapDiscardsLateBOSDuringCollection(t *testing.T) {
	hdrs := testsupport.TheoraHeaders(testsupport.DefaultTheoraParams())
	data := testsupport.NewContainer().
		AddBOS(1, hdrs[0]).
		AddPage(1, 0, hdrs[1]).
		AddBOS(9, testsupport.VorbisIdentification()).
		AddPage(1, 0, hdrs[2]).
		Bytes()

	b := newTestBootstrapper(data, &countingCodec{})
	if err := b.run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := b.streams.serials(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("stream table = %v, want [1]", got)
	}
}

func TestBootstrapNeverAllocatesOnFailure(t *testing.T) {
	hdrs := testsupport.TheoraHeaders(testsupport.DefaultTheoraParams())
	inputs := map[string][]byte{
		"garbage":    bytes.Repeat([]byte{0x4f, 0x67, 0x67}, 100),
		"incomplete": testsupport.NewContainer().AddBOS(1, hdrs[0]).AddPage(1, 0, hdrs[1]).Bytes(),
		"no video":   testsupport.NewContainer().AddBOS(1, testsupport.VorbisIdentification()).Bytes(),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			codec := &countingCodec{}
			b := newTestBootstrapper(data, codec)
			err := b.run()
			if err == nil {
				t.Fatal("expected failure")
			}
			if b.state != stateFailed || !errors.Is(b.err, err) {
				t.Fatalf("state = %s err = %v", b.state, b.err)
			}
			if codec.newDecoders != 0 || b.decoder != nil {
				t.Fatal("decoder must not be allocated on failure")
			}
		})
	}
}

func TestDemuxerDropsPagesForUnknownSerials(t *testing.T) {
	data := testsupport.NewContainer().
		AddPage(7, 0, []byte("orphan")).
		AddBOS(8, []byte("first")).
		AddPage(8, 0, []byte("second")).
		Bytes()

	streams := newStreamTable()
	d := newDemuxer(bytes.NewReader(data), streams, 5, logging.NewNop())
	for {
		more, err := d.next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !more {
			break
		}
	}
	if d.pages != 3 || d.dropped != 1 {
		t.Fatalf("pages=%d dropped=%d", d.pages, d.dropped)
	}
	if streams.get(7) != nil || streams.get(8) == nil {
		t.Fatalf("unexpected table: %v", streams.serials())
	}
	if got := streams.get(8).Pending(); got != 2 {
		t.Fatalf("pending packets = %d, want 2", got)
	}
	if d.page != nil || !d.eof {
		t.Fatal("expected empty page slot at end of file")
	}
}

func TestStreamTableRemoveReleases(t *testing.T) {
	table := newStreamTable()
	s := ogg.NewStream(3)
	page := &ogg.Page{HeaderType: ogg.FlagBOS, SerialNumber: 3, Segments: []byte{1}, Payload: []byte{0x80}}
	if err := s.PageIn(page); err != nil {
		t.Fatalf("PageIn: %v", err)
	}
	table.insert(s)
	table.insert(ogg.NewStream(1))

	if got := table.serials(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("serials = %v", got)
	}
	table.remove(3)
	if s.Pending() != 0 || table.get(3) != nil {
		t.Fatal("expected removed stream to be released")
	}
	table.remove(42)
	table.clear()
	if table.len() != 0 {
		t.Fatalf("len = %d after clear", table.len())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[state]string{
		stateScanningBOS:       "SCANNING_BOS",
		stateCollectingHeaders: "COLLECTING_HEADERS",
		stateReady:             "READY",
		stateFailed:            "FAILED",
		state(99):              "UNKNOWN",
	} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
