package joystick

import (
	"context"
	"encoding/binary"
	"io"
	"testing"
)

// rawEvent builds one wire-format js_event record.
func rawEvent(time uint32, value int16, typ, number uint8) []byte {
	raw := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(raw[0:4], time)
	binary.LittleEndian.PutUint16(raw[4:6], uint16(value))
	raw[6] = typ
	raw[7] = number
	return raw
}

func TestDecodeEvent(t *testing.T) {
	e := decodeEvent(rawEvent(123456, 1, eventButton, 4))
	if e.Time != 123456 || e.Value != 1 || e.Type != eventButton || e.Number != 4 {
		t.Errorf("decoded %+v", e)
	}
}

func TestInitEventsIgnored(t *testing.T) {
	e := decodeEvent(rawEvent(0, 1, eventButton|eventInit, 0))
	if !e.isInit() {
		t.Error("init flag not detected")
	}
	if !e.isButton() {
		t.Error("init button record should still classify as a button")
	}
}

func TestReadEventsDispatch(t *testing.T) {
	var downs, ups int
	w := NewWatcher("unused", 4,
		func() { downs++ },
		func() { ups++ },
	)

	var stream []byte
	stream = append(stream, rawEvent(0, 1, eventButton|eventInit, 4)...) // state dump, ignored
	stream = append(stream, rawEvent(10, 1, eventButton, 4)...)          // press
	stream = append(stream, rawEvent(20, 500, eventAxis, 1)...)          // axis noise
	stream = append(stream, rawEvent(30, 1, eventButton, 2)...)          // other button
	stream = append(stream, rawEvent(40, 0, eventButton, 4)...)          // release

	err := w.readEvents(context.Background(), newChunkReader(stream))
	if err != io.EOF {
		t.Fatalf("readEvents err = %v, want EOF", err)
	}
	if downs != 1 {
		t.Errorf("downs = %d, want 1", downs)
	}
	if ups != 1 {
		t.Errorf("ups = %d, want 1", ups)
	}
}

func TestReadEventsCancelled(t *testing.T) {
	w := NewWatcher("unused", 0, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.readEvents(ctx, newChunkReader(nil)); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReadEventsTruncatedRecord(t *testing.T) {
	w := NewWatcher("unused", 0, nil, nil)
	partial := rawEvent(0, 1, eventButton, 0)[:5]
	if err := w.readEvents(context.Background(), newChunkReader(partial)); err != io.EOF {
		t.Fatalf("err = %v, want EOF for truncated stream", err)
	}
}

// chunkReader returns the stream in small uneven reads, mimicking the
// device delivering events as they happen.
type chunkReader struct {
	data []byte
}

func newChunkReader(data []byte) *chunkReader {
	return &chunkReader{data: data}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := 3
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}
