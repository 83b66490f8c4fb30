package receiver

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/4pisky/voeventhub.go/lib/logging"
	"github.com/4pisky/voeventhub.go/voevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	frames chan []byte
	err    error
}

func (f *fakeIngester) Ingest(ctx context.Context, data []byte, received time.Time) (*models.Voevent, error) {
	f.frames <- data
	if f.err != nil {
		return nil, f.err
	}
	return &models.Voevent{Ivorn: "ivo://test.stream/receiver#1"}, nil
}

func writeFrame(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	require.NoError(t, binary.Write(conn, binary.BigEndian, uint32(len(payload))))
	_, err := conn.Write(payload)
	require.NoError(t, err)
}

func serveFrames(t *testing.T, payloads ...[]byte) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		for _, payload := range payloads {
			writeFrame(t, conn, payload)
		}
		conn.Close()
	}()
	return ln.Addr()
}

func TestReceiverConsumesFrames(t *testing.T) {
	packet := []byte(`<VOEvent ivorn="ivo://test.stream/receiver#1" role="test" version="2.0"></VOEvent>`)
	addr := serveFrames(t, packet, packet)

	ingester := &fakeIngester{frames: make(chan []byte, 2)}
	r := New(addr.String(), ingester, logging.Logger(""))

	// consume returns once the broker closes the connection
	err := r.consume(context.Background())
	require.Error(t, err)

	require.Len(t, ingester.frames, 2)
	assert.Equal(t, packet, <-ingester.frames)
	assert.Equal(t, packet, <-ingester.frames)
}

func TestReceiverSkipsBadFrames(t *testing.T) {
	control := []byte(`<Transport role="iamalive" version="1.0"></Transport>`)
	addr := serveFrames(t, control)

	ingester := &fakeIngester{
		frames: make(chan []byte, 1),
		err:    &voevent.MalformedDocumentError{Reason: "not a voevent"},
	}
	r := New(addr.String(), ingester, logging.Logger(""))

	// a frame the ingester rejects must not abort the stream; consume only
	// exits on the connection closing
	err := r.consume(context.Background())
	require.Error(t, err)
	assert.Len(t, ingester.frames, 1)
}

func TestReceiverStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New("127.0.0.1:1", &fakeIngester{frames: make(chan []byte, 1)}, logging.Logger(""))
	err := r.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
