package product

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/language"
)

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, q ListQuery) ([]Product, error) {
	return database.Select(ctx, r.db, scanProduct, listSQL(q))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int, lang language.Code) (Product, error) {
	p, found, err := database.SelectOne(ctx, r.db, scanProduct, getByIDSQL(lang), id)
	if err != nil {
		return Product{}, err
	}
	if !found {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Update runs the conditional update and the re-read in one transaction, so
// a concurrent writer cannot slip between the existence check and the write.
func (r *PostgresRepository) Update(ctx context.Context, id int, lang language.Code, patch Patch) (Product, error) {
	q, args, err := buildUpdate(id, lang, patch)
	if err != nil {
		return Product{}, err
	}

	var out Product
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, found, err := database.UpdateReturning(ctx, tx, scanID, q, "id", args...)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		p, found, err := database.SelectOne(ctx, tx, scanProduct, getByIDSQL(lang), id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return out, nil
}

func scanID(s database.RowScanner) (int, error) {
	var id int
	err := s.Scan(&id)
	return id, err
}

func scanProduct(s database.RowScanner) (Product, error) {
	var (
		p       Product
		name    sql.NullString
		unit    sql.NullString
		desc    sql.NullString
		inPrice decimal.NullDecimal
		inStock sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.ArticleNo, &name, &inPrice, &p.Price, &unit, &inStock, &desc); err != nil {
		return Product{}, err
	}
	p.Name = name.String
	p.Unit = unit.String
	p.Description = desc.String
	p.InPrice = inPrice
	if inStock.Valid {
		v := inStock.Int64
		p.InStock = &v
	}
	return p, nil
}
