package terms

import (
	"context"
	"sync"

	"github.com/wichananm65/fakturera/internal/language"
)

// Repository provides read access to terms content.
type Repository interface {
	Get(ctx context.Context, lang language.Code) (Terms, error)
}

// InMemoryRepository serves fixed terms, for tests and running without a
// database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[language.Code]Terms
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository(seed ...Terms) *InMemoryRepository {
	r := &InMemoryRepository{items: make(map[language.Code]Terms, len(seed))}
	for _, t := range seed {
		r.items[t.LanguageCode] = t
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, lang language.Code) (Terms, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[lang]
	if !ok {
		return Terms{}, ErrNotFound
	}
	return t, nil
}
