package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/client"
	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/product"
)

// fakeAPI serves an in-memory product repository the way the HTTP API does.
type fakeAPI struct {
	repo *product.InMemoryRepository

	mu      sync.Mutex
	queries []client.ProductQuery
	updates []map[string]any

	list         func(ctx context.Context, q client.ProductQuery) (client.ProductList, error)
	beforeUpdate func(id int)
	updateErr    error
}

func newFakeAPI() *fakeAPI {
	stock := func(n int64) *int64 { return &n }
	return &fakeAPI{repo: product.NewInMemoryRepository([]product.Record{
		{
			ID: 1, ArticleNo: "ART-010", NameEN: "Widget", NameSV: "Pryl",
			InPrice: decimal.NewNullDecimal(decimal.RequireFromString("7")),
			Price:   decimal.RequireFromString("10"), Unit: "pcs", InStock: stock(5),
		},
		{
			ID: 2, ArticleNo: "ART-1", NameEN: "Consulting", NameSV: "Konsultation",
			Price: decimal.RequireFromString("950"), Unit: "hour",
		},
		{
			ID: 3, ArticleNo: "ART-002", NameEN: "Bolt", NameSV: "Bult",
			InPrice: decimal.NewNullDecimal(decimal.RequireFromString("0.8")),
			Price:   decimal.RequireFromString("1.50"), Unit: "pcs", InStock: stock(200),
		},
	})}
}

func (f *fakeAPI) Products(ctx context.Context, _ string, q client.ProductQuery) (client.ProductList, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	hook := f.list
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, q)
	}
	return f.serve(ctx, q)
}

func (f *fakeAPI) serve(ctx context.Context, q client.ProductQuery) (client.ProductList, error) {
	lq, err := product.ParseListQuery(q.Lang, q.Sort, q.Order)
	if err != nil {
		return client.ProductList{}, err
	}
	rows, err := f.repo.List(ctx, lq)
	if err != nil {
		return client.ProductList{}, err
	}
	return client.ProductList{LanguageCode: lq.Lang.String(), Products: rows, Count: len(rows)}, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, _ string, id int, lang string, fields map[string]any) (product.Product, error) {
	f.mu.Lock()
	f.updates = append(f.updates, fields)
	hook, updateErr := f.beforeUpdate, f.updateErr
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	if updateErr != nil {
		return product.Product{}, updateErr
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return product.Product{}, err
	}
	patch, err := product.ParsePatch(body)
	if err != nil {
		return product.Product{}, err
	}
	return f.repo.Update(ctx, id, language.Code(lang), patch)
}

func (f *fakeAPI) lastQuery() client.ProductQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *fakeAPI) updateCalls() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.updates...)
}

type fakeAuth struct {
	mu      sync.Mutex
	logouts int
}

func (a *fakeAuth) Token() string { return "tok" }

func (a *fakeAuth) Logout() error {
	a.mu.Lock()
	a.logouts++
	a.mu.Unlock()
	return nil
}

func (a *fakeAuth) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logouts
}

func newLoaded(t *testing.T) (*Dashboard, *fakeAPI, *fakeAuth) {
	t.Helper()
	api, authn := newFakeAPI(), &fakeAuth{}
	d := New(api, authn, zap.NewNop())
	require.NoError(t, d.Refresh(context.Background()))
	return d, api, authn
}

func ids(rows []product.Product) []int {
	out := make([]int, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.ID)
	}
	return out
}

func row(t *testing.T, d *Dashboard, id int) product.Product {
	t.Helper()
	for _, p := range d.Rows() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("row %d not shown", id)
	return product.Product{}
}

func TestRefreshDefaults(t *testing.T) {
	d, api, _ := newLoaded(t)

	assert.Equal(t, client.ProductQuery{Lang: "en", Sort: "article_no", Order: "asc"}, api.lastQuery())
	assert.Equal(t, []int{2, 3, 1}, ids(d.Rows()))
}

func TestToggleSort(t *testing.T) {
	d, api, _ := newLoaded(t)
	ctx := context.Background()

	require.NoError(t, d.ToggleSort(ctx, product.SortArticleNo))
	col, order := d.Sort()
	assert.Equal(t, "article_no", col)
	assert.Equal(t, "desc", order)
	assert.Equal(t, "desc", api.lastQuery().Order)
	assert.Equal(t, []int{1, 3, 2}, ids(d.Rows()))

	// a new column always starts ascending
	require.NoError(t, d.ToggleSort(ctx, product.SortName))
	col, order = d.Sort()
	assert.Equal(t, "name", col)
	assert.Equal(t, "asc", order)
	assert.Equal(t, []int{3, 2, 1}, ids(d.Rows()))

	require.NoError(t, d.ToggleSort(ctx, product.SortName))
	assert.Equal(t, []int{1, 2, 3}, ids(d.Rows()))

	assert.ErrorIs(t, d.ToggleSort(ctx, "price"), ErrInvalidSort)
}

func TestSetLanguageRefetches(t *testing.T) {
	d, api, _ := newLoaded(t)

	require.NoError(t, d.SetLanguage(context.Background(), language.SV))
	assert.Equal(t, language.SV, d.Language())
	assert.Equal(t, "sv", api.lastQuery().Lang)
	assert.Equal(t, "Bult", row(t, d, 3).Name)
}

func TestSearchFiltersLocally(t *testing.T) {
	d, api, _ := newLoaded(t)
	fetches := len(api.queries)

	d.SetArticleSearch("art-0")
	assert.Equal(t, []int{3, 1}, ids(d.Rows()))

	d.SetNameSearch("BOLT")
	assert.Equal(t, []int{3}, ids(d.Rows()))

	d.SetArticleSearch("")
	d.SetNameSearch("sult")
	assert.Equal(t, []int{2}, ids(d.Rows()))

	d.SetNameSearch("nothing")
	assert.Empty(t, d.Rows())
	assert.Len(t, api.queries, fetches)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	api, authn := newFakeAPI(), &fakeAuth{}
	d := New(api, authn, zap.NewNop())
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var firstErr error
	api.list = func(ctx context.Context, q client.ProductQuery) (client.ProductList, error) {
		if q.Lang == "en" {
			close(started)
			<-release
			firstErr = ctx.Err()
		}
		return api.serve(context.Background(), q)
	}

	done := make(chan error, 1)
	go func() { done <- d.Refresh(ctx) }()
	<-started

	require.NoError(t, d.SetLanguage(ctx, language.SV))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.ErrorIs(t, firstErr, context.Canceled)
	assert.Equal(t, "Bult", row(t, d, 3).Name)
}

func TestRefreshUnauthorizedLogsOut(t *testing.T) {
	api, authn := newFakeAPI(), &fakeAuth{}
	api.list = func(context.Context, client.ProductQuery) (client.ProductList, error) {
		return client.ProductList{}, &client.APIError{Status: http.StatusUnauthorized}
	}
	d := New(api, authn, zap.NewNop())

	assert.ErrorIs(t, d.Refresh(context.Background()), ErrLoggedOut)
	assert.Equal(t, 1, authn.count())
	assert.Empty(t, d.Rows())
}

func TestBeginPrefillsBuffer(t *testing.T) {
	d, _, _ := newLoaded(t)

	require.NoError(t, d.Begin(3, product.FieldPrice))
	c := d.Cell(3, product.FieldPrice)
	assert.Equal(t, Editing, c.Phase)
	assert.Equal(t, "1.5", c.Buffer)

	require.NoError(t, d.Begin(2, product.FieldInStock))
	assert.Equal(t, "", d.Cell(2, product.FieldInStock).Buffer)

	assert.ErrorIs(t, d.Begin(99, product.FieldName), ErrUnknownRow)
	assert.ErrorIs(t, d.SetBuffer(1, product.FieldName, "x"), ErrNotEditing)
	_, err := d.Commit(context.Background(), 1, product.FieldName)
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestCommitSendsOnlyTheEditedField(t *testing.T) {
	d, api, _ := newLoaded(t)

	require.NoError(t, d.Begin(3, product.FieldPrice))
	require.NoError(t, d.SetBuffer(3, product.FieldPrice, "2,25"))
	p, err := d.Commit(context.Background(), 3, product.FieldPrice)
	require.NoError(t, err)

	assert.Equal(t, "2.25", p.Price.String())
	assert.Equal(t, []map[string]any{{"price": json.Number("2.25")}}, api.updateCalls())
	assert.Equal(t, Viewing, d.Cell(3, product.FieldPrice).Phase)
	assert.Equal(t, "2.25", row(t, d, 3).Price.String())
}

func TestCommitTextFieldWritesCurrentLanguage(t *testing.T) {
	d, api, _ := newLoaded(t)
	require.NoError(t, d.SetLanguage(context.Background(), language.SV))

	require.NoError(t, d.Begin(1, product.FieldName))
	require.NoError(t, d.SetBuffer(1, product.FieldName, "Ny pryl"))
	_, err := d.Commit(context.Background(), 1, product.FieldName)
	require.NoError(t, err)

	rec, ok := api.repo.Record(1)
	require.True(t, ok)
	assert.Equal(t, "Ny pryl", rec.NameSV)
	assert.Equal(t, "Widget", rec.NameEN)
	assert.Equal(t, "Ny pryl", row(t, d, 1).Name)
}

func TestCommitEmptyNullableClearsValue(t *testing.T) {
	d, api, _ := newLoaded(t)

	require.NoError(t, d.Begin(1, product.FieldInStock))
	require.NoError(t, d.SetBuffer(1, product.FieldInStock, " "))
	p, err := d.Commit(context.Background(), 1, product.FieldInStock)
	require.NoError(t, err)

	assert.Nil(t, p.InStock)
	calls := api.updateCalls()
	require.Len(t, calls, 1)
	v, ok := calls[0]["in_stock"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestCommitRejectsInvalidNumbersLocally(t *testing.T) {
	d, api, _ := newLoaded(t)
	ctx := context.Background()

	cases := []struct {
		field product.Field
		input string
	}{
		{product.FieldInStock, "abc"},
		{product.FieldInStock, "1.5"},
		{product.FieldPrice, ""},
		{product.FieldPrice, "-1"},
		{product.FieldInPrice, "12kr"},
		{product.FieldInStock, "3000000000"},
		{product.FieldPrice, "1.005"},
		{product.FieldPrice, "10000000000"},
	}
	for _, tc := range cases {
		require.NoError(t, d.Begin(1, tc.field))
		require.NoError(t, d.SetBuffer(1, tc.field, tc.input))
		_, err := d.Commit(ctx, 1, tc.field)
		assert.ErrorIs(t, err, ErrInvalidNumber, "%s=%q", tc.field, tc.input)

		c := d.Cell(1, tc.field)
		assert.Equal(t, Editing, c.Phase)
		assert.Equal(t, ErrInvalidNumber.Error(), c.Err)
		assert.Equal(t, tc.input, c.Buffer)
		require.NoError(t, d.Cancel(1, tc.field))
	}
	assert.Empty(t, api.updateCalls())
}

func TestCommitUnchangedValueSkipsRequest(t *testing.T) {
	d, api, _ := newLoaded(t)
	ctx := context.Background()

	require.NoError(t, d.Begin(3, product.FieldPrice))
	require.NoError(t, d.SetBuffer(3, product.FieldPrice, "1.50"))
	_, err := d.Commit(ctx, 3, product.FieldPrice)
	require.NoError(t, err)

	require.NoError(t, d.Begin(3, product.FieldName))
	_, err = d.Commit(ctx, 3, product.FieldName)
	require.NoError(t, err)

	assert.Empty(t, api.updateCalls())
	assert.Equal(t, Viewing, d.Cell(3, product.FieldPrice).Phase)
}

func TestCommitUnauthorizedLogsOut(t *testing.T) {
	d, api, authn := newLoaded(t)
	api.updateErr = &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}

	require.NoError(t, d.Begin(1, product.FieldUnit))
	require.NoError(t, d.SetBuffer(1, product.FieldUnit, "box"))
	_, err := d.Commit(context.Background(), 1, product.FieldUnit)

	assert.ErrorIs(t, err, ErrLoggedOut)
	assert.Equal(t, 1, authn.count())
	assert.Equal(t, Viewing, d.Cell(1, product.FieldUnit).Phase)
}

func TestCommitFailureKeepsEditing(t *testing.T) {
	d, api, authn := newLoaded(t)
	api.updateErr = &client.APIError{Status: http.StatusInternalServerError, Message: "database unavailable"}

	require.NoError(t, d.Begin(1, product.FieldPrice))
	require.NoError(t, d.SetBuffer(1, product.FieldPrice, "99"))
	_, err := d.Commit(context.Background(), 1, product.FieldPrice)
	require.Error(t, err)

	c := d.Cell(1, product.FieldPrice)
	assert.Equal(t, Editing, c.Phase)
	assert.Equal(t, "99", c.Buffer)
	assert.Contains(t, c.Err, "database unavailable")
	assert.Equal(t, "10", row(t, d, 1).Price.String())
	assert.Zero(t, authn.count())
}

func TestOneSaveInFlightPerCell(t *testing.T) {
	d, api, _ := newLoaded(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	api.beforeUpdate = func(id int) {
		if id == 1 {
			close(entered)
			<-release
		}
	}

	require.NoError(t, d.Begin(1, product.FieldPrice))
	require.NoError(t, d.SetBuffer(1, product.FieldPrice, "11"))
	done := make(chan error, 1)
	go func() {
		_, err := d.Commit(ctx, 1, product.FieldPrice)
		done <- err
	}()
	<-entered

	assert.Equal(t, Saving, d.Cell(1, product.FieldPrice).Phase)
	assert.Equal(t, "saving", Saving.String())
	_, err := d.Commit(ctx, 1, product.FieldPrice)
	assert.ErrorIs(t, err, ErrSaveInProgress)
	assert.ErrorIs(t, d.Begin(1, product.FieldPrice), ErrSaveInProgress)
	assert.ErrorIs(t, d.SetBuffer(1, product.FieldPrice, "12"), ErrSaveInProgress)
	assert.ErrorIs(t, d.Cancel(1, product.FieldPrice), ErrSaveInProgress)

	// other cells stay editable, and a refetch keeps the pending save
	require.NoError(t, d.Begin(2, product.FieldUnit))
	require.NoError(t, d.SetBuffer(2, product.FieldUnit, "day"))
	_, err = d.Commit(ctx, 2, product.FieldUnit)
	require.NoError(t, err)
	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, Saving, d.Cell(1, product.FieldPrice).Phase)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Viewing, d.Cell(1, product.FieldPrice).Phase)
	assert.Equal(t, "11", row(t, d, 1).Price.String())
	assert.Equal(t, "day", row(t, d, 2).Unit)
	assert.Len(t, api.updateCalls(), 2)
}

func TestSetSortAppliesOnNextFetch(t *testing.T) {
	d, api, _ := newLoaded(t)

	require.NoError(t, d.SetSort(product.SortName, "DESC"))
	assert.Equal(t, "asc", api.lastQuery().Order)

	require.NoError(t, d.Refresh(context.Background()))
	assert.Equal(t, client.ProductQuery{Lang: "en", Sort: "name", Order: "desc"}, api.lastQuery())
	assert.Equal(t, []int{1, 2, 3}, ids(d.Rows()))

	assert.ErrorIs(t, d.SetSort("unit", "asc"), ErrInvalidSort)
	assert.ErrorIs(t, d.SetSort(product.SortName, "up"), ErrInvalidSort)
}
