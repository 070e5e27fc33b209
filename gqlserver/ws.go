package gqlserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"huntboard/authctx"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/julienschmidt/httprouter"
)

// The websocket endpoint speaks the graphql-transport-ws message set:
// connection_init/connection_ack, subscribe/next/complete, ping/pong. The
// legacy "start"/"stop" aliases are accepted too.

const (
	wsWriteWait = 10 * time.Second
	wsSendQueue = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	mu         sync.Mutex
	subs       map[string]context.CancelFunc
	authHeader string
}

// Subscriptions upgrades the connection and serves GraphQL subscriptions
// until the peer disconnects.
func (s *Server) Subscriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendQueue),
		subs: make(map[string]context.CancelFunc),
	}
	go client.writePump()
	client.readPump(s.schema)
}

func (c *wsClient) readPump(schema graphql.Schema) {
	defer func() {
		c.mu.Lock()
		for _, cancel := range c.subs {
			cancel()
		}
		c.subs = map[string]context.CancelFunc{}
		c.mu.Unlock()
		close(c.send)
		c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.post(wsMessage{Type: "error", Payload: errPayload("invalid message")})
			continue
		}
		switch msg.Type {
		case "connection_init":
			var payload struct {
				Authorization string `json:"Authorization"`
			}
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					c.post(wsMessage{Type: "error", Payload: errPayload("invalid connection_init payload")})
					continue
				}
			}
			c.mu.Lock()
			c.authHeader = payload.Authorization
			c.mu.Unlock()
			c.post(wsMessage{Type: "connection_ack"})
		case "subscribe", "start":
			c.startSubscription(schema, msg)
		case "complete", "stop":
			c.stopSubscription(msg.ID)
		case "ping":
			c.post(wsMessage{Type: "pong"})
		}
	}
}

func (c *wsClient) startSubscription(schema graphql.Schema, msg wsMessage) {
	var req graphqlRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Query == "" {
		c.post(wsMessage{ID: msg.ID, Type: "error", Payload: errPayload("invalid subscribe payload")})
		return
	}

	c.mu.Lock()
	header := c.authHeader
	if _, exists := c.subs[msg.ID]; exists {
		c.mu.Unlock()
		c.post(wsMessage{ID: msg.ID, Type: "error", Payload: errPayload("subscriber id already exists")})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.subs[msg.ID] = cancel
	c.mu.Unlock()

	ctx = authctx.With(ctx, authctx.NewSession(header))
	results := graphql.Subscribe(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	go func() {
		defer c.stopSubscription(msg.ID)
		for result := range results {
			payload, err := json.Marshal(result)
			if err != nil {
				log.Printf("subscription %s marshal failed: %v", msg.ID, err)
				continue
			}
			c.post(wsMessage{ID: msg.ID, Type: "next", Payload: payload})
		}
		c.post(wsMessage{ID: msg.ID, Type: "complete"})
	}()
}

func (c *wsClient) stopSubscription(id string) {
	c.mu.Lock()
	if cancel, ok := c.subs[id]; ok {
		delete(c.subs, id)
		cancel()
	}
	c.mu.Unlock()
}

// post queues an outbound frame, dropping it if the peer cannot keep up or
// the connection is shutting down.
func (c *wsClient) post(msg wsMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() { recover() }() // send may race connection teardown
	select {
	case c.send <- raw:
	default:
	}
}

func (c *wsClient) writePump() {
	for raw := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func errPayload(message string) json.RawMessage {
	raw, _ := json.Marshal([]map[string]string{{"message": message}})
	return raw
}
