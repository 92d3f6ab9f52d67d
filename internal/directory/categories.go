package directory

import (
	"context"
	"sync"
	"time"

	"github.com/expatpedia/directory/internal/models"
)

// DefaultCategoriesTTL is how long a category list stays usable.
const DefaultCategoriesTTL = 24 * time.Hour

// MemoryCategoryStore keeps the category list in process memory. It is used
// when no persistent store is configured.
type MemoryCategoryStore struct {
	mu         sync.Mutex
	categories []models.Category
	fetchedAt  time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryCategoryStore creates an empty store. A non-positive ttl selects
// DefaultCategoriesTTL.
func NewMemoryCategoryStore(ttl time.Duration) *MemoryCategoryStore {
	if ttl <= 0 {
		ttl = DefaultCategoriesTTL
	}
	return &MemoryCategoryStore{ttl: ttl, now: time.Now}
}

func (m *MemoryCategoryStore) SaveCategories(ctx context.Context, categories []models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append([]models.Category(nil), categories...)
	m.fetchedAt = m.now()
	return nil
}

func (m *MemoryCategoryStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.categories == nil || m.now().Sub(m.fetchedAt) >= m.ttl {
		return nil, nil
	}
	return append([]models.Category(nil), m.categories...), nil
}
