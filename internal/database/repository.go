package database

import "time"

type BookChatRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	ListAccounts(excludeId int, search string, limit int) ([]User, error)
	UserExists(accountId int) bool
	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessage(id int) (Message, error)
	SetMessageRead(id int) error
	GetConversation(accountId, peerId int) ([]Message, error)
	MarkConversationRead(senderId, receiverId int) error
	CountUnread(senderId, receiverId int) (int, error)
	GetLastMessage(accountId, peerId int) (Message, error)
	SetUserPresence(accountId int, online bool, lastSeen time.Time) error
	GetUserPresence(accountId int) (UserStatus, error)
	ListBooks(search string, limit int) ([]Book, error)
	GetBook(id int) (Book, error)
}
