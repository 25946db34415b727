package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateMessage(username, content string) (Message, error) {
	args := m.Called(username, content)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) RecentMessages(limit int) ([]Message, error) {
	args := m.Called(limit)
	if messages, ok := args.Get(0).([]Message); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockChatRepository) IsBanned(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) CreateBan(username string) error {
	args := m.Called(username)
	return args.Error(0)
}
