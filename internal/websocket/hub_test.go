package chatws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

func newTestClient() *Client {
	client := NewClient(NewHub(zerolog.Nop()), nil, 42)
	client.educatorID = 7
	return client
}

func drainFrame(t *testing.T, client *Client) outboundFrame {
	t.Helper()
	select {
	case payload := <-client.send:
		var f outboundFrame
		if err := json.Unmarshal(payload, &f); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return f
	default:
		t.Fatalf("expected a buffered frame")
		return outboundFrame{}
	}
}

func TestDeliverForwardsActiveConversation(t *testing.T) {
	client := newTestClient()
	client.active = 5

	client.deliver(models.Message{ID: 1, ConversationID: 5, SenderID: 9, Content: "hello"})

	f := drainFrame(t, client)
	if f.Type != "message" || f.Message == nil || f.Message.Content != "hello" {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestDeliverDropsStaleConversation(t *testing.T) {
	client := newTestClient()
	client.active = 5

	client.deliver(models.Message{ID: 1, ConversationID: 6, SenderID: 9, Content: "hello"})

	if len(client.send) != 0 {
		t.Fatalf("expected stale row dropped, got %d buffered frames", len(client.send))
	}
}

func TestWriteFrameAfterCloseIsDiscarded(t *testing.T) {
	client := newTestClient()
	client.closeSend()

	// A feed callback can still fire between the hub teardown and the
	// broker unsubscribe; it must not hit the closed channel.
	client.deliver(models.Message{ID: 1, ConversationID: 0, SenderID: 9, Content: "late"})
	client.writeFrame(outboundFrame{Type: "message"})

	if _, open := <-client.send; open {
		t.Fatalf("expected send channel closed and empty")
	}
}

func TestCloseSendIsIdempotent(t *testing.T) {
	client := newTestClient()
	client.closeSend()
	client.closeSend()
}

func TestConcurrentDeliverAndCloseDoNotPanic(t *testing.T) {
	client := newTestClient()
	client.active = 5

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			client.deliver(models.Message{ID: int64(i), ConversationID: 5, SenderID: 9, Content: "x"})
		}
	}()
	go func() {
		defer wg.Done()
		client.closeSend()
	}()
	wg.Wait()
}

func TestHubUnregisterUnknownClientIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := newTestClient()
	registered := NewClient(hub, nil, 43)

	hub.Register(registered)
	hub.Unregister(client)
	hub.Unregister(registered)

	if _, open := <-registered.send; open {
		t.Fatalf("expected registered client's send channel closed")
	}
	select {
	case _, open := <-client.send:
		if !open {
			t.Fatalf("unexpected close of unregistered client's channel")
		}
		t.Fatalf("unexpected frame on unregistered client")
	default:
	}
}
