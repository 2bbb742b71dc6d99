package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"vibedine-api/middleware"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Room names. Table rooms are per-table; kitchen and admin are shared
// staff rooms that receive every order event.
const (
	RoomKitchen = "kitchen"
	RoomAdmin   = "admin"
)

// TableRoom returns the room name scoped to one dining table
func TableRoom(tableNumber int) string {
	return fmt.Sprintf("table:%d", tableNumber)
}

// Server-pushed event names, matching the contract the customer and
// back-office clients subscribe to.
const (
	EventNewOrder            = "new-order"
	EventOrderUpdated        = "order-updated"
	EventOrderStatusUpdate   = "order-status-update"
	EventOrderPriorityUpdate = "order-priority-update"
	EventWaiterRequest       = "waiter-request"
	EventBillRequest         = "bill-request"
	EventServiceRequest      = "service-request"
)

// Envelope is the wire format for every server-pushed event
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// joinMessage is what a client sends to enter a room
type joinMessage struct {
	Type        string `json:"type"` // join-table | join-kitchen | join-admin
	TableNumber int    `json:"tableNumber"`
}

// client owns the write side of one connection. Every outbound frame,
// whether a room broadcast or a join reply, goes through send so exactly
// one goroutine ever calls WriteJSON on the conn.
type client struct {
	conn *websocket.Conn
	send chan Envelope
}

// deliver queues an envelope for the client's writer. Never blocks; a
// consumer that cannot keep up loses frames rather than stalling the hub.
func (c *client) deliver(env Envelope) {
	select {
	case c.send <- env:
	default:
		log.Printf("ws client queue full, dropping %s", env.Event)
	}
}

// writeLoop drains send until the hub closes it on disconnect
func (c *client) writeLoop() {
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			log.Printf("ws write error: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

type subscription struct {
	client *client
	room   string
}

type broadcast struct {
	room     string
	envelope Envelope
}

// Hub is the room-based fan-out center. A connection may sit in several
// rooms at once (e.g. a kitchen display that also watches admin events).
// The clients map is owned by the Run goroutine alone.
type Hub struct {
	clients    map[string]map[*client]bool // room -> set of clients
	broadcast  chan broadcast
	register   chan subscription
	disconnect chan *client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		broadcast:  make(chan broadcast, 64),
		register:   make(chan subscription),
		disconnect: make(chan *client),
	}
}

// Run processes register/disconnect/broadcast until the process exits
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			if h.clients[sub.room] == nil {
				h.clients[sub.room] = make(map[*client]bool)
			}
			h.clients[sub.room][sub.client] = true

		case cl := <-h.disconnect:
			for room, members := range h.clients {
				delete(members, cl)
				if len(members) == 0 {
					delete(h.clients, room)
				}
			}
			close(cl.send)

		case msg := <-h.broadcast:
			for cl := range h.clients[msg.room] {
				cl.deliver(msg.envelope)
			}
		}
	}
}

// Emit fans an event out to one room. Safe to call from any goroutine;
// delivery is at-most-once and never blocks the caller on slow clients.
func (h *Hub) Emit(room, event string, data interface{}) {
	select {
	case h.broadcast <- broadcast{room: room, envelope: Envelope{Event: event, Data: data}}:
	default:
		log.Printf("ws broadcast queue full, dropping %s for room %s", event, room)
	}
}

// EmitOrderRooms pushes an order event to the originating table plus both
// staff rooms, which is the fan-out every order mutation needs
func (h *Hub) EmitOrderRooms(tableNumber int, event string, data interface{}) {
	h.Emit(TableRoom(tableNumber), event, data)
	h.Emit(RoomKitchen, event, data)
	h.Emit(RoomAdmin, event, data)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the connection and processes join messages.
// Staff rooms require a staff JWT (header or token query param); table
// rooms are open so guests can track their order.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	role := middleware.GetRole(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan Envelope, 64)}
	go cl.writeLoop()
	go h.listen(cl, role)
}

func (h *Hub) listen(cl *client, role models.UserRole) {
	// The hub removes the client from every room and closes its send
	// channel, which in turn stops the writer
	defer func() {
		h.disconnect <- cl
	}()

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg joinMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("ws invalid payload: %v", err)
			continue
		}

		var room string
		switch msg.Type {
		case "join-table":
			if msg.TableNumber <= 0 {
				continue
			}
			room = TableRoom(msg.TableNumber)
		case "join-kitchen":
			if !role.Has(models.PermJoinKitchenRoom) {
				cl.deliver(Envelope{Event: "error", Data: gin.H{"message": "kitchen room requires staff token"}})
				continue
			}
			room = RoomKitchen
		case "join-admin":
			if !role.Has(models.PermJoinAdminRoom) {
				cl.deliver(Envelope{Event: "error", Data: gin.H{"message": "admin room requires staff token"}})
				continue
			}
			room = RoomAdmin
		default:
			continue
		}

		h.register <- subscription{client: cl, room: room}
		cl.deliver(Envelope{Event: "joined", Data: gin.H{"room": room}})
	}
}
