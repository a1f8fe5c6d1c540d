package feed

import (
	"context"
	"sync"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

// MemoryBroker is an in-process Broker for single-node deployments and
// tests. Callbacks run synchronously in publish order.
type MemoryBroker struct {
	mu          sync.Mutex
	nextID      int64
	subscribers map[int64]map[int64]func(models.Message)
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subscribers: make(map[int64]map[int64]func(models.Message)),
	}
}

func (b *MemoryBroker) PublishMessage(_ context.Context, message models.Message) error {
	b.mu.Lock()
	fns := make([]func(models.Message), 0, len(b.subscribers[message.ConversationID]))
	for _, fn := range b.subscribers[message.ConversationID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(message)
	}
	return nil
}

func (b *MemoryBroker) SubscribeMessages(conversationID int64, fn func(models.Message)) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subscribers[conversationID] == nil {
		b.subscribers[conversationID] = make(map[int64]func(models.Message))
	}
	b.subscribers[conversationID][id] = fn

	return newSubscription(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers[conversationID], id)
		if len(b.subscribers[conversationID]) == 0 {
			delete(b.subscribers, conversationID)
		}
	}), nil
}
