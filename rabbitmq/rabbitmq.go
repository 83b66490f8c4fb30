package rabbitmq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool is a classic buffer pool pattern that allows more clever reuse of
// heap memory. Instead of allocating new memory every time we encode an
// ingest notice we reuse buffers from this pool. With a single publisher
// routine there will only ever be one buffer in the pool, but the pool scales
// with the number of publishing goroutines.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"
)

type (
	SubscribeToVoeventsFunc = func() (chan models.Voevent, error)
	EncodeIngestNoticeFunc  = func(ctx context.Context, w io.Writer, voevent models.Voevent) error
)

type Client interface {
	// StartPublishIngested announces every successfully ingested packet on
	// the ingest exchange until the context is cancelled.
	StartPublishIngested(context.Context, SubscribeToVoeventsFunc, EncodeIngestNoticeFunc) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	conn           *amqp.Connection
	publishChannel *amqp.Channel

	logger *lecho.Logger

	ingestExchange string
}

type ClientOption = func(client *DefaultClient)

func WithIngestExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.ingestExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// Dial sets up a connection to rabbitmq with a channel ready to publish.
func Dial(uri string, options ...ClientOption) (Client, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	client := &DefaultClient{
		conn:           conn,
		publishChannel: publishChannel,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		ingestExchange: "voeventhub_ingest",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.conn.Close() }

func (client *DefaultClient) StartPublishIngested(ctx context.Context, subscribeFunc SubscribeToVoeventsFunc, payloadFunc EncodeIngestNoticeFunc) error {
	err := client.publishChannel.ExchangeDeclare(
		client.ingestExchange,
		// topic exchanges route to queues based on a routing key, so
		// consumers can bind to a single role or to everything
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server
		// restarts and remain declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchanges accept direct publishing
		false,
		// Nowait: We set this to false as we want to wait for a server
		// response to check whether the exchange was created succesfully
		false,
		nil,
	)
	if err != nil {
		return err
	}

	client.logger.Info("Starting rabbitmq ingest publisher")

	ingested, err := subscribeFunc()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case voevent, ok := <-ingested:
			if !ok {
				return fmt.Errorf("ingest subscription closed")
			}
			err = client.publishIngestNotice(ctx, voevent, payloadFunc)
			if err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) publishIngestNotice(ctx context.Context, voevent models.Voevent, payloadFunc EncodeIngestNoticeFunc) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := payloadFunc(ctx, payload, voevent)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("voevent.%s", voevent.Role)

	err = client.publishChannel.PublishWithContext(ctx,
		client.ingestExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		captureErr(client.logger, err)
		return err
	}

	client.logger.Debugf("Successfully published ingest notice for %s", voevent.Ivorn)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
