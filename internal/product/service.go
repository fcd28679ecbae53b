package product

import (
	"context"
	"fmt"

	"github.com/wichananm65/fakturera/internal/language"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Product, error) {
	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id int, lang language.Code) (Product, error) {
	return s.repo.GetByID(ctx, id, lang)
}

// Update writes patch to product id. An empty patch fails with ErrNoFields
// before the store is touched.
func (s *Service) Update(ctx context.Context, id int, lang language.Code, patch Patch) (Product, error) {
	if len(patch) == 0 {
		return Product{}, ErrNoFields
	}
	return s.repo.Update(ctx, id, lang, patch)
}
