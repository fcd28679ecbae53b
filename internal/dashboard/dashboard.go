// Package dashboard is the view model behind the price list: it fetches the
// product rows for the selected language and sort, filters them locally and
// runs inline cell edits.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/client"
	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/product"
)

var (
	// ErrLoggedOut means the API rejected the session; the session has been
	// cleared and the caller should go back to the login screen.
	ErrLoggedOut = errors.New("session expired")

	// ErrStale is returned by a fetch that was superseded by a newer one.
	// Its result was discarded.
	ErrStale = errors.New("superseded by a newer fetch")

	ErrSaveInProgress = errors.New("save already in progress for this cell")
	ErrNotEditing     = errors.New("cell is not being edited")
	ErrUnknownRow     = errors.New("no such product row")
	ErrInvalidNumber  = errors.New("value is not a valid number")
	ErrInvalidSort    = errors.New("unsupported sort column")
)

// API is the part of the API client the dashboard uses.
type API interface {
	Products(ctx context.Context, token string, q client.ProductQuery) (client.ProductList, error)
	UpdateProduct(ctx context.Context, token string, id int, lang string, fields map[string]any) (product.Product, error)
}

// Auth supplies the bearer token and is told when the server rejects it.
type Auth interface {
	Token() string
	Logout() error
}

type Dashboard struct {
	api  API
	auth Auth
	log  *zap.Logger

	mu    sync.Mutex
	lang  language.Code
	sort  string
	order string
	rows  []product.Product

	articleSearch string
	nameSearch    string

	gen    uint64
	cancel context.CancelFunc

	cells map[CellKey]*Cell
}

func New(api API, auth Auth, log *zap.Logger) *Dashboard {
	return &Dashboard{
		api:   api,
		auth:  auth,
		log:   log,
		lang:  language.Default,
		sort:  product.SortArticleNo,
		order: product.OrderAsc,
		cells: map[CellKey]*Cell{},
	}
}

// Refresh fetches the rows for the current language and sort. Starting a
// fetch cancels the one in flight; a response that arrives after a newer
// fetch started is dropped and ErrStale returned.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	q := client.ProductQuery{Lang: d.lang.String(), Sort: d.sort, Order: d.order}
	d.mu.Unlock()
	defer cancel()

	list, err := d.api.Products(ctx, d.auth.Token(), q)

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		d.log.Debug("discarding stale product list", zap.String("lang", q.Lang), zap.String("sort", q.Sort))
		return ErrStale
	}
	d.cancel = nil
	if err != nil {
		d.mu.Unlock()
		if client.IsUnauthorized(err) {
			return d.logout()
		}
		return err
	}
	d.rows = list.Products
	for k, c := range d.cells {
		if c.Phase != Saving {
			delete(d.cells, k)
		}
	}
	d.mu.Unlock()
	return nil
}

// SetLanguage switches the row language and refetches.
func (d *Dashboard) SetLanguage(ctx context.Context, code language.Code) error {
	d.mu.Lock()
	d.lang = code
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// ToggleSort sorts by column, flipping the direction when column is already
// the sort column and starting ascending otherwise, then refetches.
func (d *Dashboard) ToggleSort(ctx context.Context, column string) error {
	if column != product.SortArticleNo && column != product.SortName {
		return ErrInvalidSort
	}
	d.mu.Lock()
	if d.sort == column {
		if d.order == product.OrderAsc {
			d.order = product.OrderDesc
		} else {
			d.order = product.OrderAsc
		}
	} else {
		d.sort = column
		d.order = product.OrderAsc
	}
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// SetSort sets the sort column and direction for the next fetch.
func (d *Dashboard) SetSort(column, order string) error {
	if column != product.SortArticleNo && column != product.SortName {
		return ErrInvalidSort
	}
	order = strings.ToLower(order)
	if order != product.OrderAsc && order != product.OrderDesc {
		return ErrInvalidSort
	}
	d.mu.Lock()
	d.sort, d.order = column, order
	d.mu.Unlock()
	return nil
}

// Sort returns the current sort column and direction.
func (d *Dashboard) Sort() (column, order string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sort, d.order
}

func (d *Dashboard) Language() language.Code {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lang
}

func (d *Dashboard) SetArticleSearch(s string) {
	d.mu.Lock()
	d.articleSearch = s
	d.mu.Unlock()
}

func (d *Dashboard) SetNameSearch(s string) {
	d.mu.Lock()
	d.nameSearch = s
	d.mu.Unlock()
}

// Rows returns the fetched rows in server order, narrowed by the article
// number and product name searches (case-insensitive substrings).
func (d *Dashboard) Rows() []product.Product {
	d.mu.Lock()
	defer d.mu.Unlock()

	art := strings.ToLower(strings.TrimSpace(d.articleSearch))
	name := strings.ToLower(strings.TrimSpace(d.nameSearch))
	out := make([]product.Product, 0, len(d.rows))
	for _, p := range d.rows {
		if art != "" && !strings.Contains(strings.ToLower(p.ArticleNo), art) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (d *Dashboard) row(id int) (int, bool) {
	for i := range d.rows {
		if d.rows[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (d *Dashboard) logout() error {
	if err := d.auth.Logout(); err != nil {
		d.log.Warn("clear session", zap.Error(err))
	}
	return ErrLoggedOut
}
