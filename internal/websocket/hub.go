package chatws

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/feed"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
)

type messagingService interface {
	SendMessage(ctx context.Context, input services.SendMessageInput) (*models.MessageView, error)
	EducatorID(ctx context.Context, userID int64) (int64, error)
	CanAccessConversation(ctx context.Context, conversationID, userID int64) (bool, error)
}

type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	logger     zerolog.Logger
}

// Client is one WebSocket connection. It holds at most one live feed
// subscription, tied to the conversation the client currently displays;
// switching conversations tears the old subscription down first.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	userID     int64
	educatorID int64
	send       chan []byte

	mu     sync.Mutex
	closed bool
	active int64
	sub    *feed.Subscription
}

type frame struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	ClientKey      string `json:"client_key,omitempty"`
}

type outboundFrame struct {
	Type    string              `json:"type"`
	Message *models.MessageView `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.dropSubscription()
				client.closeSend()
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ReadPump consumes frames until the connection drops. "subscribe" switches
// the client's live feed to another conversation; "message" persists and
// acknowledges a send.
func (c *Client) ReadPump(service messagingService, broker feed.Broker) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	educatorID, err := service.EducatorID(context.Background(), c.userID)
	if err != nil {
		c.writeError("no educator profile for this account")
		return
	}
	c.educatorID = educatorID

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming frame
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid message payload")
			continue
		}

		switch incoming.Type {
		case "subscribe":
			c.handleSubscribe(service, broker, incoming.ConversationID)
		case "message":
			c.handleSend(service, incoming)
		default:
			c.writeError("unsupported message type")
		}
	}
}

func (c *Client) handleSubscribe(service messagingService, broker feed.Broker, conversationID int64) {
	if conversationID <= 0 {
		c.writeError("invalid conversation id")
		return
	}

	ok, err := service.CanAccessConversation(context.Background(), conversationID, c.userID)
	if err != nil || !ok {
		c.writeError("conversation not available")
		return
	}

	sub, err := broker.SubscribeMessages(conversationID, func(message models.Message) {
		c.deliver(message)
	})
	if err != nil {
		c.hub.logger.Error().Err(err).Int64("conversation_id", conversationID).Msg("ws: feed subscribe failed")
		c.writeError("subscription failed")
		return
	}

	c.mu.Lock()
	old := c.sub
	c.sub = sub
	c.active = conversationID
	c.mu.Unlock()

	old.Unsubscribe()
}

func (c *Client) handleSend(service messagingService, incoming frame) {
	view, err := service.SendMessage(context.Background(), services.SendMessageInput{
		ConversationID: incoming.ConversationID,
		UserID:         c.userID,
		Content:        incoming.Content,
		ClientKey:      incoming.ClientKey,
	})
	if err != nil {
		c.writeError("failed to send message")
		return
	}
	c.writeFrame(outboundFrame{Type: "message", Message: view})
}

// deliver pushes a feed row to the connection. Rows for a conversation the
// client has already switched away from are discarded; the subscription may
// still fire once between the switch and the unsubscribe.
func (c *Client) deliver(message models.Message) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if message.ConversationID != active {
		return
	}

	view := services.ShapeFeedMessage(message, c.educatorID)
	c.writeFrame(outboundFrame{Type: "message", Message: &view})
}

func (c *Client) dropSubscription() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.active = 0
	c.mu.Unlock()
	sub.Unsubscribe()
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// closeSend closes the outbound channel exactly once. writeFrame takes the
// same lock, so no delivery can race the close.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writeFrame(f outboundFrame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.logger.Warn().Str("user_id", strconv.FormatInt(c.userID, 10)).Msg("ws: send buffer full, dropping frame")
	}
}

func (c *Client) writeError(message string) {
	c.writeFrame(outboundFrame{Type: "error", Error: message})
}
