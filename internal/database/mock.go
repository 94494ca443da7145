package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockBookChatRepository struct {
	mock.Mock
}

func (m *MockBookChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockBookChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBookChatRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBookChatRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBookChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBookChatRepository) ListAccounts(excludeId int, search string, limit int) ([]User, error) {
	args := m.Called(excludeId, search, limit)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockBookChatRepository) UserExists(accountId int) bool {
	args := m.Called(accountId)
	return args.Bool(0)
}
func (m *MockBookChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockBookChatRepository) GetMessage(id int) (Message, error) {
	args := m.Called(id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockBookChatRepository) SetMessageRead(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockBookChatRepository) GetConversation(accountId, peerId int) ([]Message, error) {
	args := m.Called(accountId, peerId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockBookChatRepository) MarkConversationRead(senderId, receiverId int) error {
	args := m.Called(senderId, receiverId)
	return args.Error(0)
}
func (m *MockBookChatRepository) CountUnread(senderId, receiverId int) (int, error) {
	args := m.Called(senderId, receiverId)
	return args.Int(0), args.Error(1)
}
func (m *MockBookChatRepository) GetLastMessage(accountId, peerId int) (Message, error) {
	args := m.Called(accountId, peerId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockBookChatRepository) SetUserPresence(accountId int, online bool, lastSeen time.Time) error {
	args := m.Called(accountId, online, lastSeen)
	return args.Error(0)
}
func (m *MockBookChatRepository) GetUserPresence(accountId int) (UserStatus, error) {
	args := m.Called(accountId)
	return args.Get(0).(UserStatus), args.Error(1)
}
func (m *MockBookChatRepository) ListBooks(search string, limit int) ([]Book, error) {
	args := m.Called(search, limit)
	return args.Get(0).([]Book), args.Error(1)
}
func (m *MockBookChatRepository) GetBook(id int) (Book, error) {
	args := m.Called(id)
	return args.Get(0).(Book), args.Error(1)
}
