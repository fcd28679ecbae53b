package terms

import (
	"context"

	"github.com/wichananm65/fakturera/internal/language"
)

// Service provides business logic for terms content.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Get(ctx context.Context, lang language.Code) (Terms, error) {
	return s.repo.Get(ctx, lang)
}
