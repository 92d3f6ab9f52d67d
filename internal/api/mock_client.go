package api

import (
	"context"
	"net/url"
	"sync"

	"github.com/expatpedia/directory/internal/models"
)

// MockClient is a simple mock implementation of the backend client.
type MockClient struct {
	FetchPageFunc     func(ctx context.Context, resource, path string, params url.Values) (*models.RawPage, error)
	FetchRecordFunc   func(ctx context.Context, path string) (models.RawRecord, error)
	SubmitContactFunc func(ctx context.Context, sub models.ContactSubmission) (*models.ContactReceipt, error)
	Base              string

	mu    sync.Mutex
	Calls []url.Values
}

func (m *MockClient) FetchPage(ctx context.Context, resource, path string, params url.Values) (*models.RawPage, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, params)
	m.mu.Unlock()
	if m.FetchPageFunc == nil {
		return &models.RawPage{}, nil
	}
	return m.FetchPageFunc(ctx, resource, path, params)
}

func (m *MockClient) FetchRecord(ctx context.Context, path string) (models.RawRecord, error) {
	if m.FetchRecordFunc == nil {
		return models.RawRecord{}, nil
	}
	return m.FetchRecordFunc(ctx, path)
}

func (m *MockClient) SubmitContact(ctx context.Context, sub models.ContactSubmission) (*models.ContactReceipt, error) {
	if m.SubmitContactFunc == nil {
		return &models.ContactReceipt{}, nil
	}
	return m.SubmitContactFunc(ctx, sub)
}

func (m *MockClient) Stats() models.FetchStats {
	return models.FetchStats{}
}

func (m *MockClient) BaseURL() string {
	if m.Base == "" {
		return "https://backend.test"
	}
	return m.Base
}

// CallCount returns how many pages were requested.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
