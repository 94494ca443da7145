package server

import (
	"time"

	"github.com/pageturn/bookchat/internal/types"
)

// ClientMessage is the inbound event envelope. Exactly one of the event
// fields is expected to be set.
type ClientMessage struct {
	SendMessage *SendMessage `json:"send_message,omitempty"`
	MarkRead    *MarkRead    `json:"mark_read,omitempty"`
	Typing      *Typing      `json:"typing,omitempty"`
}

type SendMessage struct {
	ReceiverId int    `json:"receiver_id"`
	Content    string `json:"content"`
}

type MarkRead struct {
	MessageId int `json:"message_id"`
}

type Typing struct {
	ReceiverId int  `json:"receiver_id"`
	IsTyping   bool `json:"is_typing"`
}

// ServerMessage is the outbound event envelope. Exactly one of the event
// fields is set per message.
type ServerMessage struct {
	NewMessage   *types.Message `json:"new_message,omitempty"`
	MessageSent  *types.Message `json:"message_sent,omitempty"`
	MessageRead  *MessageRead   `json:"message_read,omitempty"`
	MessageError *MessageError  `json:"message_error,omitempty"`
	UserStatus   *UserStatus    `json:"user_status,omitempty"`
	UserTyping   *UserTyping    `json:"user_typing,omitempty"`
}

type MessageRead struct {
	MessageId int `json:"message_id"`
}

type MessageError struct {
	Message string `json:"message"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type UserStatus struct {
	UserId int    `json:"user_id"`
	Status string `json:"status"`
}

type UserTyping struct {
	UserId   int  `json:"user_id"`
	IsTyping bool `json:"is_typing"`
}

func ErrInvalidMessage() *ServerMessage {
	return &ServerMessage{
		MessageError: &MessageError{Message: "invalid message format"},
	}
}

func ErrIncompleteMessage() *ServerMessage {
	return &ServerMessage{
		MessageError: &MessageError{Message: "missing receiver or content"},
	}
}

func ErrSendFailed() *ServerMessage {
	return &ServerMessage{
		MessageError: &MessageError{Message: "failed to send message"},
	}
}

func StatusNotification(userId int, status string) *ServerMessage {
	return &ServerMessage{
		UserStatus: &UserStatus{UserId: userId, Status: status},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
