package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	Id         int
	SenderId   int
	ReceiverId int
	Content    string
	FileUrl    string
	FileType   string
	Timestamp  time.Time
	IsRead     bool
}

type UserStatus struct {
	UserId   int
	IsOnline bool
	LastSeen time.Time
}

type Book struct {
	Id          int
	Title       string
	Author      string
	Description string
	PriceCents  int
	CoverUrl    string
	CreatedAt   time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId       int
	Username     string
	PasswordHash string
}

type CreateMessageParams struct {
	SenderId   int
	ReceiverId int
	Content    string
	FileUrl    string
	FileType   string
}
