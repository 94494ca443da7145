package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Message is one direct communication between two users. Content may be
// empty when the message carries only an attachment.
type Message struct {
	Id         int       `json:"id"`
	SenderId   int       `json:"sender_id"`
	ReceiverId int       `json:"receiver_id"`
	Content    string    `json:"content"`
	FileUrl    string    `json:"file_url,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"is_read"`
}

// UserStatus is the durable presence projection, distinct from the
// in-memory registry kept by the chat server.
type UserStatus struct {
	UserId   int       `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Conversation summarizes a peer for the conversation list: the peer's
// profile plus the latest message exchanged and the unread count.
type Conversation struct {
	User            User       `json:"user"`
	Status          UserStatus `json:"status"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	UnreadCount     int        `json:"unread_count"`
}

type Book struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	PriceCents  int       `json:"price_cents"`
	CoverUrl    string    `json:"cover_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
