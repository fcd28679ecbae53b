package product

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wichananm65/fakturera/internal/language"
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Product, error)
	GetByID(ctx context.Context, id int, lang language.Code) (Product, error)
	// Update applies patch atomically and returns the row as re-read after
	// the write. Unknown ids yield ErrNotFound.
	Update(ctx context.Context, id int, lang language.Code, patch Patch) (Product, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Record
}

var _ Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository(seed []Record) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Record, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, q ListQuery) ([]Product, error) {
	r.mu.RLock()
	out := make([]Product, 0, len(r.storage))
	for _, rec := range r.storage {
		out = append(out, rec.Localize(q.Lang))
	}
	r.mu.RUnlock()

	SortProducts(out, q)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int, lang language.Code) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.storage {
		if rec.ID == id {
			return rec.Localize(lang), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Update(_ context.Context, id int, lang language.Code, patch Patch) (Product, error) {
	if len(patch) == 0 {
		return Product{}, ErrNoFields
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if err := r.storage[i].Apply(lang, patch); err != nil {
				return Product{}, err
			}
			return r.storage[i].Localize(lang), nil
		}
	}
	return Product{}, ErrNotFound
}

// Record returns a copy of the stored row with both languages.
func (r *InMemoryRepository) Record(id int) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.storage {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// SortProducts orders products the way the list query does: by the numeric
// part of the article number (rows without digits last when ascending) or by
// name, then by article number and id in the same direction.
func SortProducts(products []Product, q ListQuery) {
	desc := q.Desc()
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		c := 0
		if q.Sort == SortName {
			c = strings.Compare(a.Name, b.Name)
		} else {
			c = compareInt(ArticleNumber(a.ArticleNo), ArticleNumber(b.ArticleNo))
		}
		if c == 0 {
			c = strings.Compare(a.ArticleNo, b.ArticleNo)
		}
		if c == 0 {
			c = compareInt(int64(a.ID), int64(b.ID))
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// ArticleNumber extracts the first run of digits from an article number.
// Article numbers without digits map to math.MaxInt64, mirroring NULL sorting
// last in ascending order.
func ArticleNumber(articleNo string) int64 {
	start := strings.IndexAny(articleNo, "0123456789")
	if start < 0 {
		return math.MaxInt64
	}
	end := start
	for end < len(articleNo) && articleNo[end] >= '0' && articleNo[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(articleNo[start:end], 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
