package codec

import (
	"bytes"
	"testing"
)

func TestFramedSize(t *testing.T) {
	cmds := [][]byte{
		SetBrightness(50),
		ClearAll(),
		WakeDisplay(),
		Commit(),
	}
	for i, pkt := range cmds {
		if len(pkt) != FramedSize {
			t.Fatalf("cmd %d: expected %d bytes, got %d", i, FramedSize, len(pkt))
		}
		if !bytes.Equal(pkt[:3], []byte("CRT")) {
			t.Fatalf("cmd %d: missing CRT prefix, got %x", i, pkt[:5])
		}
	}
}

func TestSizeToBytesRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 255, 65536, 123456789}
	for _, n := range cases {
		got := BytesToSize(SizeToBytes(n))
		if got != n {
			t.Fatalf("round trip %d: got %d", n, got)
		}
	}
}

func TestBrightnessClampsAndScales(t *testing.T) {
	cases := []struct {
		percent int
		want    byte
	}{
		{-10, 0},
		{0, 0},
		{50, 32},
		{100, 64},
		{200, 64},
	}
	for _, c := range cases {
		if got := Brightness(c.percent); got != c.want {
			t.Fatalf("Brightness(%d) = %d, want %d", c.percent, got, c.want)
		}
	}
}

func TestAnnounceImageValidatesKeyID(t *testing.T) {
	if _, err := AnnounceImage(1024, 0); err == nil {
		t.Fatal("expected error for key id 0")
	}
	if _, err := AnnounceImage(1024, 16); err == nil {
		t.Fatal("expected error for key id 16")
	}
	pkt, err := AnnounceImage(1024, 7)
	if err != nil {
		t.Fatalf("AnnounceImage: %v", err)
	}
	if len(pkt) != FramedSize {
		t.Fatalf("expected %d bytes, got %d", FramedSize, len(pkt))
	}
}

func TestChunkRawPadsFinalChunk(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, PacketSize+10)
	chunks := ChunkRaw(data)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != PacketSize || len(chunks[1]) != PacketSize {
		t.Fatalf("expected every chunk padded to %d bytes", PacketSize)
	}
	for i := 10; i < PacketSize; i++ {
		if chunks[1][i] != 0 {
			t.Fatalf("expected zero padding at offset %d, got %#x", i, chunks[1][i])
		}
	}
}

func TestChunkRawEmpty(t *testing.T) {
	if chunks := ChunkRaw(nil); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestPhysicalToLogicalMapping(t *testing.T) {
	cases := map[byte]int{
		0x0B: 1, 0x0F: 5, 0x06: 6, 0x0A: 10, 0x01: 11, 0x05: 15,
	}
	for physical, want := range cases {
		if got := PhysicalToLogical(physical); got != want {
			t.Fatalf("PhysicalToLogical(%#x) = %d, want %d", physical, got, want)
		}
	}
}

func TestParseKeyEventShortReport(t *testing.T) {
	if _, err := ParseKeyEvent(make([]byte, 5)); err != ErrShortReport {
		t.Fatalf("expected ErrShortReport, got %v", err)
	}
}

func TestParseKeyEventPressAndRelease(t *testing.T) {
	report := make([]byte, 12)
	report[9] = 0x0B
	report[10] = 1
	ev, err := ParseKeyEvent(report)
	if err != nil {
		t.Fatalf("ParseKeyEvent: %v", err)
	}
	if ev.LogicalKey != 1 || !ev.Pressed {
		t.Fatalf("expected key 1 pressed, got %+v", ev)
	}

	report[10] = 0
	ev, err = ParseKeyEvent(report)
	if err != nil {
		t.Fatalf("ParseKeyEvent: %v", err)
	}
	if ev.Pressed {
		t.Fatalf("expected release, got %+v", ev)
	}
}
