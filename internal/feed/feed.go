// Package feed is the change-feed layer: every persisted message is
// published to its conversation's channel, and subscribers receive the raw
// inserted row in delivery order. There is no replay; a subscriber that was
// offline at insertion time recovers only through the next explicit fetch.
package feed

import (
	"context"
	"sync"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

// Broker fans inserted message rows out to conversation subscribers.
type Broker interface {
	PublishMessage(ctx context.Context, message models.Message) error
	// SubscribeMessages registers fn for every message inserted into the
	// conversation after the call. The callback receives the raw row;
	// shaping (time labels, isOwn) is the caller's job.
	SubscribeMessages(conversationID int64, fn func(models.Message)) (*Subscription, error)
}

// Subscription is a live channel handle. Unsubscribe is idempotent and must
// be called when the conversation is no longer displayed, or the channel
// keeps delivering callbacks nobody reads.
type Subscription struct {
	cancel func()
	once   sync.Once
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
