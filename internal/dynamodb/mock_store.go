package dynamodb

import (
	"context"
	"sync"

	"github.com/expatpedia/directory/internal/models"
)

// MockStore implements CategoryStore for testing.
type MockStore struct {
	SaveCategoriesFunc func(ctx context.Context, categories []models.Category) error
	LoadCategoriesFunc func(ctx context.Context) ([]models.Category, error)

	// Track calls for assertions.
	mu        sync.Mutex
	Saved     [][]models.Category
	LoadCalls int
}

func (m *MockStore) SaveCategories(ctx context.Context, categories []models.Category) error {
	m.mu.Lock()
	m.Saved = append(m.Saved, categories)
	m.mu.Unlock()
	if m.SaveCategoriesFunc != nil {
		return m.SaveCategoriesFunc(ctx, categories)
	}
	return nil
}

func (m *MockStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	m.LoadCalls++
	m.mu.Unlock()
	if m.LoadCategoriesFunc != nil {
		return m.LoadCategoriesFunc(ctx)
	}
	return nil, nil
}

// SavedCount returns how many snapshots were written.
func (m *MockStore) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}
