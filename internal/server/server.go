package server

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/pageturn/bookchat/internal/database"
	"github.com/pageturn/bookchat/internal/stats"
	"github.com/pageturn/bookchat/internal/types"
)

// ChatServer coordinates the real-time layer: it owns the presence
// registry, fans events out to registered connections and writes message
// and presence state through the repository.
type ChatServer struct {
	log      *log.Logger
	db       database.BookChatRepository
	registry *Registry
	stats    stats.StatsProvider
}

func NewChatServer(logger *log.Logger, db database.BookChatRepository, registry *Registry, sp stats.StatsProvider) (*ChatServer, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	for _, metric := range []string{
		stats.ActiveConnections,
		stats.MessagesSent,
		stats.MessagesDelivered,
		stats.ReadReceipts,
		stats.TypingEvents,
	} {
		sp.RegisterMetric(metric)
	}

	return &ChatServer{
		log:      logger,
		db:       db,
		registry: registry,
		stats:    sp,
	}, nil
}

// RegisterClient completes the handshake for an authenticated connection:
// it installs the client in the registry, marks the user online in the
// store and broadcasts the status change. A superseded connection for the
// same user is stopped; its later cleanup finds no registry entry and so
// never marks the user offline.
func (cs *ChatServer) RegisterClient(c *Client) {
	if old := cs.registry.Register(c.user.Id, c); old != nil {
		cs.log.Printf("user %d reconnected, stopping previous connection", c.user.Id)
		old.stopClient()
	}

	if err := cs.db.SetUserPresence(c.user.Id, true, Now()); err != nil {
		cs.log.Println("SetUserPresence:", err)
	}

	cs.broadcast(StatusNotification(c.user.Id, StatusOnline))
	cs.stats.Incr(stats.ActiveConnections)
	cs.log.Printf("user %d connected", c.user.Id)
}

// DeregisterClient runs the disconnect contract. Unregistered connections
// (failed handshakes, duplicate disconnects, superseded connections) are
// an expected race and a no-op.
func (cs *ChatServer) DeregisterClient(c *Client) {
	userId, ok := cs.registry.UnregisterByClient(c)
	if !ok {
		return
	}

	if err := cs.db.SetUserPresence(userId, false, Now()); err != nil {
		cs.log.Println("SetUserPresence:", err)
	}

	cs.broadcast(StatusNotification(userId, StatusOffline))
	cs.stats.Decr(stats.ActiveConnections)
	cs.log.Printf("user %d disconnected", userId)
}

// broadcast queues msg on every registered connection. Delivery is
// best-effort: slow consumers drop.
func (cs *ChatServer) broadcast(msg *ServerMessage) {
	for _, c := range cs.registry.Clients() {
		c.queueMessage(msg)
	}
}

func (cs *ChatServer) handleSendMessage(c *Client, sm *SendMessage) {
	if sm.ReceiverId == 0 || sm.Content == "" {
		c.queueMessage(ErrIncompleteMessage())
		return
	}

	dbMsg, err := cs.db.CreateMessage(database.CreateMessageParams{
		SenderId:   c.user.Id,
		ReceiverId: sm.ReceiverId,
		Content:    sm.Content,
	})
	if err != nil {
		cs.log.Println("CreateMessage:", err)
		c.queueMessage(ErrSendFailed())
		return
	}

	msg := messageToWire(dbMsg)
	cs.deliverToReceiver(msg)

	// ack to the sender's own connection regardless of receiver reachability
	c.queueMessage(&ServerMessage{MessageSent: msg})
	cs.stats.Incr(stats.MessagesSent)
}

// DeliverMessage fans out a message row created outside the socket layer
// (the REST send and upload paths). Both parties are resolved through the
// registry since the sender acted over HTTP, not this channel.
func (cs *ChatServer) DeliverMessage(msg types.Message) {
	cs.deliverToReceiver(&msg)

	if sender, ok := cs.registry.Lookup(msg.SenderId); ok {
		sender.queueMessage(&ServerMessage{MessageSent: &msg})
	}
	cs.stats.Incr(stats.MessagesSent)
}

func (cs *ChatServer) deliverToReceiver(msg *types.Message) {
	receiver, ok := cs.registry.Lookup(msg.ReceiverId)
	if !ok {
		// receiver is offline; the row is durable and will be picked up
		// by the next history read
		return
	}

	receiver.queueMessage(&ServerMessage{NewMessage: msg})
	cs.stats.Incr(stats.MessagesDelivered)
}

func (cs *ChatServer) handleMarkRead(c *Client, mr *MarkRead) {
	dbMsg, err := cs.db.GetMessage(mr.MessageId)
	if err != nil {
		// tolerate duplicate or late read receipts for unknown messages
		if !errors.Is(err, sql.ErrNoRows) {
			cs.log.Println("GetMessage:", err)
		}
		return
	}

	if err := cs.db.SetMessageRead(dbMsg.Id); err != nil {
		cs.log.Println("SetMessageRead:", err)
		return
	}

	if sender, ok := cs.registry.Lookup(dbMsg.SenderId); ok {
		sender.queueMessage(&ServerMessage{MessageRead: &MessageRead{MessageId: dbMsg.Id}})
	}
	cs.stats.Incr(stats.ReadReceipts)
}

func (cs *ChatServer) handleTyping(c *Client, t *Typing) {
	if t.ReceiverId == 0 {
		return
	}

	receiver, ok := cs.registry.Lookup(t.ReceiverId)
	if !ok {
		// best-effort and lossy: no queue, no retry
		return
	}

	receiver.queueMessage(&ServerMessage{
		UserTyping: &UserTyping{UserId: c.user.Id, IsTyping: t.IsTyping},
	})
	cs.stats.Incr(stats.TypingEvents)
}

// Shutdown runs the disconnect contract for every active connection before
// returning, so the durable presence projection is offline for all users by
// the time the caller tears down the store and the stats channel. The read
// pumps' own cleanup then finds the registry empty and no-ops.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	for _, c := range cs.registry.Clients() {
		cs.DeregisterClient(c)
		c.stopClient()

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func messageToWire(m database.Message) *types.Message {
	return &types.Message{
		Id:         m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Content:    m.Content,
		FileUrl:    m.FileUrl,
		FileType:   m.FileType,
		Timestamp:  m.Timestamp,
		IsRead:     m.IsRead,
	}
}
