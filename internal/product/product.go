package product

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/validate"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrNoFields = errors.New("no fields provided")
	ErrBadValue = errors.New("patch value has the wrong type")
)

// Product is one price-list row as served to clients: name and description
// come from the requested language's columns.
type Product struct {
	ID          int                 `json:"id"`
	ArticleNo   string              `json:"article_no"`
	Name        string              `json:"name"`
	InPrice     decimal.NullDecimal `json:"in_price"`
	Price       decimal.Decimal     `json:"price"`
	Unit        string              `json:"unit"`
	InStock     *int64              `json:"in_stock"`
	Description string              `json:"description"`
}

// Record is a full products row with both languages. A nil InStock means the
// stock count does not apply (services).
type Record struct {
	ID            int
	ArticleNo     string
	NameEN        string
	NameSV        string
	DescriptionEN string
	DescriptionSV string
	InPrice       decimal.NullDecimal
	Price         decimal.Decimal
	Unit          string
	InStock       *int64
}

// Localize projects the record onto lang.
func (r Record) Localize(lang language.Code) Product {
	p := Product{
		ID:          r.ID,
		ArticleNo:   r.ArticleNo,
		Name:        r.NameEN,
		InPrice:     r.InPrice,
		Price:       r.Price,
		Unit:        r.Unit,
		InStock:     r.InStock,
		Description: r.DescriptionEN,
	}
	if lang == language.SV {
		p.Name = r.NameSV
		p.Description = r.DescriptionSV
	}
	return p
}

// Apply writes patch onto the record, routing name/description to lang.
// Values must have the types ParsePatch produces; otherwise nothing is
// written and ErrBadValue is returned.
func (r *Record) Apply(lang language.Code, patch Patch) error {
	next := *r
	for f, v := range patch {
		var ok bool
		switch f {
		case FieldName:
			var s string
			if s, ok = v.(string); ok {
				if lang == language.SV {
					next.NameSV = s
				} else {
					next.NameEN = s
				}
			}
		case FieldDescription:
			var s string
			if s, ok = v.(string); ok {
				if lang == language.SV {
					next.DescriptionSV = s
				} else {
					next.DescriptionEN = s
				}
			}
		case FieldUnit:
			next.Unit, ok = v.(string)
		case FieldPrice:
			next.Price, ok = v.(decimal.Decimal)
		case FieldInPrice:
			next.InPrice, ok = v.(decimal.NullDecimal)
		case FieldInStock:
			var n sql.NullInt64
			if n, ok = v.(sql.NullInt64); ok {
				next.InStock = nil
				if n.Valid {
					stock := n.Int64
					next.InStock = &stock
				}
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrBadValue, f)
		}
	}
	*r = next
	return nil
}

// Sort columns and orders accepted by the list endpoint.
const (
	SortArticleNo = "article_no"
	SortName      = "name"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var (
	sortColumns = []string{SortArticleNo, SortName}
	sortOrders  = []string{OrderAsc, OrderDesc}
)

// ListQuery is a validated ?lang=&sort=&order= triple.
type ListQuery struct {
	Lang  language.Code
	Sort  string
	Order string
}

// Desc reports whether the list is sorted descending.
func (q ListQuery) Desc() bool { return q.Order == OrderDesc }

// ParseListQuery validates raw query values, applying defaults for empty ones.
func ParseListQuery(lang, sort, order string) (ListQuery, error) {
	code, err := language.Parse(lang)
	if err != nil {
		return ListQuery{}, err
	}
	col, err := validate.OneOf("Invalid Sort Column", "Sort column", sort, SortArticleNo, sortColumns, false)
	if err != nil {
		return ListQuery{}, err
	}
	dir, err := validate.OneOf("Invalid Sort Order", "Sort order", order, OrderAsc, sortOrders, true)
	if err != nil {
		return ListQuery{}, err
	}
	return ListQuery{Lang: code, Sort: col, Order: dir}, nil
}
