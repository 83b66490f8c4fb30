package service

import (
	"sync"

	"github.com/4pisky/voeventhub.go/db/models"
	"github.com/labstack/gommon/random"
)

// Pubsub fans freshly ingested packets out to in-process subscribers,
// keyed by stream. Consumers (the rabbitmq publisher routine, future feed
// endpoints) register their own channel.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan models.Voevent
}

// SubscribeAllStreams subscribes to every stream.
const SubscribeAllStreams = "*"

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan models.Voevent)
	return ps
}

func (ps *Pubsub) Subscribe(stream string, ch chan models.Voevent) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[stream] == nil {
		ps.subs[stream] = make(map[string]chan models.Voevent)
	}
	subId = random.String(20, random.Alphanumeric)
	ps.subs[stream][subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string, stream string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[stream] == nil {
		return
	}
	if ps.subs[stream][id] == nil {
		return
	}
	close(ps.subs[stream][id])
	delete(ps.subs[stream], id)
}

func (ps *Pubsub) Publish(voevent models.Voevent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, stream := range []string{voevent.Stream, SubscribeAllStreams} {
		for _, ch := range ps.subs[stream] {
			ch <- voevent
		}
	}
}
