package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/engine"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/event"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// Hub owns the live connections and relays their events into the engine.
// Room membership lives in the engine's membership manager, not here: the hub
// only resolves connection ids back to clients when the engine fans out.
type Hub struct {
	engine *engine.Engine

	clients   map[string]*Client
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	upgrader websocket.Upgrader
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundMessage, 4096), // buffer for burst handling
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Start binds the engine and launches the manager loop plus the inbound
// worker pool. Separate from NewHub because the engine's fanout needs the hub
// as its connection directory first.
func (h *Hub) Start(eng *engine.Engine) {
	h.engine = eng

	go h.run()

	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c.ID] = c
	h.clientsMu.Unlock()
}

func (h *Hub) removeClient(c *Client) {
	// Purge presence first so no fanout snapshot taken after this point can
	// still resolve the dead connection.
	h.engine.Disconnect(c.ID)

	h.clientsMu.Lock()
	delete(h.clients, c.ID)
	h.clientsMu.Unlock()

	c.Close()
	h.logger.Info("client removed", zap.String("conn_id", c.ID))
}

// Sink implements engine.Directory.
func (h *Hub) Sink(connID string) (engine.Sink, bool) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	c, ok := h.clients[connID]
	return c, ok
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) connectionIDs() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventSubscribeChatList:
		var payload event.SubscribeChatList
		if !h.decode(ev, &payload, c) || payload.UserID == "" {
			return
		}
		h.engine.SubscribeChatList(c.ID, payload.UserID)

	case event.EventUnsubscribeChatList:
		var payload event.SubscribeChatList
		if !h.decode(ev, &payload, c) || payload.UserID == "" {
			return
		}
		h.engine.UnsubscribeChatList(c.ID, payload.UserID)

	case event.EventJoinRoom:
		h.handleJoin(ev, c, model.KindShare)

	case event.EventJoinGroupRoom:
		h.handleJoin(ev, c, model.KindGroupBuy)

	case event.EventChatMessage:
		h.handleSend(ev, c, model.KindShare)

	case event.EventGroupChatMessage:
		h.handleSend(ev, c, model.KindGroupBuy)

	case event.EventLeaveRoom:
		var payload event.LeaveRoom
		if !h.decode(ev, &payload, c) {
			return
		}
		kind := model.KindShare
		if model.ConversationKind(payload.Type) == model.KindGroupBuy {
			kind = model.KindGroupBuy
		}
		h.engine.LeaveRoom(c.ID, payload.ChatID, kind)

	default:
		h.logger.Warn("unknown event type",
			zap.String("event", ev.Event),
			zap.String("conn_id", c.ID),
		)
	}
}

func (h *Hub) handleJoin(ev event.WsEvent, c *Client, kind model.ConversationKind) {
	var payload event.JoinRoom
	if !h.decode(ev, &payload, c) {
		return
	}
	if payload.ChatID <= 0 || payload.UserID == "" {
		h.sendError(c, "BAD_REQUEST", "chatId and userId are required")
		return
	}
	h.engine.JoinRoom(h.ctx, c.ID, payload.ChatID, kind, payload.UserID)
}

func (h *Hub) handleSend(ev event.WsEvent, c *Client, kind model.ConversationKind) {
	var payload event.ChatMessage
	if !h.decode(ev, &payload, c) {
		return
	}
	if payload.ChatID <= 0 || payload.SenderID == "" || payload.Content == "" {
		h.sendError(c, "BAD_REQUEST", "chatId, senderId and content are required")
		return
	}

	if err := h.engine.SendMessage(h.ctx, c.ID, payload.ChatID, kind, payload.SenderID, payload.Content); err != nil {
		h.logger.Error("message intake failed",
			zap.Int64("chat_id", payload.ChatID),
			zap.String("conn_id", c.ID),
			zap.Error(err),
		)
		// The sender alone learns about the failure; nothing was broadcast.
		h.sendError(c, "PERSISTENCE_ERROR", "message could not be saved")
	}
}

func (h *Hub) decode(ev event.WsEvent, into any, c *Client) bool {
	if err := json.Unmarshal(ev.Payload, into); err != nil {
		h.logger.Warn("malformed payload",
			zap.String("event", ev.Event),
			zap.String("conn_id", c.ID),
			zap.Error(err),
		)
		h.sendError(c, "BAD_PAYLOAD", "malformed event payload")
		return false
	}
	return true
}

func (h *Hub) sendError(c *Client, code, message string) {
	ev, err := event.New(event.EventError, model.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.Send(ev)
}

// ServeWS upgrades an HTTP request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	RegisterClient(conn, h)
}

// Stop closes every client and drains the worker pool. Safe to call more
// than once; the shutdown path and the container cleanup both reach it.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()

		h.clientsMu.RLock()
		for _, c := range h.clients {
			c.Close()
		}
		h.clientsMu.RUnlock()

		close(h.inbound)
		h.wg.Wait()
	})
}
