// Package receiver subscribes to an upstream VOEvent broker over the VOEvent
// Transport Protocol: a plain TCP stream of 4-byte big-endian length-prefixed
// XML documents. Every received packet is handed to the ingestion core;
// malformed and already-stored packets are logged and skipped so one bad
// rebroadcast never stalls the stream.
package receiver

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/4pisky/voeventhub.go/voevent"
	"github.com/cenkalti/backoff/v4"
	"github.com/ziflex/lecho/v3"
)

// Brokers send iamalive packets every few tens of seconds; a silent minute
// means the connection is gone.
const readTimeout = 90 * time.Second

// maxFrameSize guards against a corrupt length prefix.
const maxFrameSize = 1 << 20

type Ingester interface {
	Ingest(ctx context.Context, data []byte, received time.Time) (*models.Voevent, error)
}

type Receiver struct {
	addr     string
	ingester Ingester
	logger   *lecho.Logger
}

func New(addr string, ingester Ingester, logger *lecho.Logger) *Receiver {
	return &Receiver{
		addr:     addr,
		ingester: ingester,
		logger:   logger,
	}
}

// Start consumes the broker stream until the context is cancelled,
// reconnecting with exponential backoff.
func (r *Receiver) Start(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		err := r.consume(ctx)
		if errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		r.logger.Errorf("Broker connection to %s lost: %v, reconnecting", r.addr, err)
		return err
	}, backoff.WithContext(exponentialBackoff, ctx))
}

func (r *Receiver) consume(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	r.logger.Infof("Subscribed to VOEvent broker %s", r.addr)

	for {
		if ctx.Err() != nil {
			return context.Canceled
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}
		frame, err := readFrame(conn)
		if err != nil {
			return err
		}
		r.handleFrame(ctx, frame)
	}
}

func (r *Receiver) handleFrame(ctx context.Context, frame []byte) {
	received := time.Now().UTC()
	row, err := r.ingester.Ingest(ctx, frame, received)
	switch {
	case err == nil:
		r.logger.Debugf("Received %s from broker", row.Ivorn)
	case errors.Is(err, voevent.ErrDuplicateIvorn):
		// rebroadcasts are routine, nothing to do
		r.logger.Debugf("Skipping rebroadcast packet: %v", err)
	case voevent.IsMalformed(err):
		// transport control packets (iamalive etc.) land here too
		r.logger.Debugf("Skipping non-voevent frame: %v", err)
	default:
		r.logger.Errorf("Failed to store packet from broker: %v", err)
	}
}

func readFrame(conn net.Conn) ([]byte, error) {
	var size uint32
	if err := binary.Read(conn, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	if size == 0 || size > maxFrameSize {
		return nil, errors.New("invalid frame size")
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(conn, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
