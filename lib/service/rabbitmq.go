package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/4pisky/voeventhub.go/db/models"
)

// IngestNotice is the message published for every stored packet. The raw XML
// stays out of the queue on purpose; consumers fetch it over the API when
// they need it.
type IngestNotice struct {
	ID       int64     `json:"id"`
	Ivorn    string    `json:"ivorn"`
	Stream   string    `json:"stream"`
	Role     string    `json:"role"`
	Received time.Time `json:"received"`
}

// SubscribeIngested registers a subscription for every ingested packet,
// regardless of stream.
func (svc *VoeventhubService) SubscribeIngested() (chan models.Voevent, error) {
	ingested := make(chan models.Voevent)
	svc.IngestPubSub.Subscribe(SubscribeAllStreams, ingested)
	return ingested, nil
}

func (svc *VoeventhubService) EncodeIngestNotice(ctx context.Context, w io.Writer, voevent models.Voevent) error {
	return json.NewEncoder(w).Encode(IngestNotice{
		ID:       voevent.ID,
		Ivorn:    voevent.Ivorn,
		Stream:   voevent.Stream,
		Role:     voevent.Role,
		Received: voevent.Received,
	})
}
