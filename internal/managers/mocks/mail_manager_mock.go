package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockMailManager is a mock implementation of the MailMgr interface.
type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendCredentialsMail(email, fullName, loginCode, serviceName string) error {
	args := m.Called(email, fullName, loginCode, serviceName)
	return args.Error(0)
}
