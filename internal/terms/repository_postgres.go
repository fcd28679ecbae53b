package terms

import (
	"context"
	"database/sql"

	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/language"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the terms row for lang, or ErrNotFound when it was never seeded.
func (r *PostgresRepository) Get(ctx context.Context, lang language.Code) (Terms, error) {
	t, found, err := database.SelectOne(ctx, r.db, scanTerms,
		`SELECT language_code, content, updated_at FROM terms WHERE language_code = $1`, string(lang))
	if err != nil {
		return Terms{}, err
	}
	if !found {
		return Terms{}, ErrNotFound
	}
	return t, nil
}

func scanTerms(s database.RowScanner) (Terms, error) {
	var (
		t    Terms
		code string
	)
	if err := s.Scan(&code, &t.Content, &t.UpdatedAt); err != nil {
		return Terms{}, err
	}
	t.LanguageCode = language.Code(code)
	return t, nil
}
