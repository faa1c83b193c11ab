package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/pkg/llm"
)

// MockCompletionClient is a mock implementation of CompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, system, user string, opts llm.CallOptions) (string, error) {
	args := m.Called(ctx, system, user, opts)
	return args.String(0), args.Error(1)
}

// MockLeadStore is a mock implementation of LeadStore
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) Create(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}
