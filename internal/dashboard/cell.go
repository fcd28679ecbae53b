package dashboard

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/client"
	"github.com/wichananm65/fakturera/internal/product"
)

// Phase is the edit state of one table cell. A cell with no entry is
// Viewing.
type Phase int

const (
	Viewing Phase = iota
	Editing
	Saving
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	}
	return "viewing"
}

type CellKey struct {
	ID    int
	Field product.Field
}

// Cell is the edit state of one cell. Err holds the message of the last
// failed save or rejected input.
type Cell struct {
	Phase  Phase
	Buffer string
	Err    string
}

// Cell returns the state of the cell at (id, field).
func (d *Dashboard) Cell(id int, field product.Field) Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.cells[CellKey{id, field}]; ok {
		return *c
	}
	return Cell{Phase: Viewing}
}

// Begin starts editing a cell with the current value in the buffer.
func (d *Dashboard) Begin(id int, field product.Field) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := CellKey{id, field}
	if c, ok := d.cells[key]; ok {
		if c.Phase == Saving {
			return ErrSaveInProgress
		}
		return nil
	}
	i, ok := d.row(id)
	if !ok {
		return ErrUnknownRow
	}
	d.cells[key] = &Cell{Phase: Editing, Buffer: Display(d.rows[i], field)}
	return nil
}

func (d *Dashboard) SetBuffer(id int, field product.Field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.cells[CellKey{id, field}]
	switch {
	case !ok:
		return ErrNotEditing
	case c.Phase == Saving:
		return ErrSaveInProgress
	}
	c.Buffer = value
	return nil
}

// Cancel drops the edit and returns the cell to Viewing.
func (d *Dashboard) Cancel(id int, field product.Field) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := CellKey{id, field}
	if c, ok := d.cells[key]; ok && c.Phase == Saving {
		return ErrSaveInProgress
	}
	delete(d.cells, key)
	return nil
}

// Commit saves the buffer of an editing cell. Numeric input is checked
// locally first; an unchanged value ends the edit without a request. Only
// the edited field is sent. On success the row is replaced by the product
// the server returned. A 401 logs the session out and returns ErrLoggedOut;
// any other failure keeps the cell in Editing with the error attached.
func (d *Dashboard) Commit(ctx context.Context, id int, field product.Field) (product.Product, error) {
	key := CellKey{id, field}

	d.mu.Lock()
	c, ok := d.cells[key]
	if !ok {
		d.mu.Unlock()
		return product.Product{}, ErrNotEditing
	}
	if c.Phase == Saving {
		d.mu.Unlock()
		return product.Product{}, ErrSaveInProgress
	}
	i, ok := d.row(id)
	if !ok {
		delete(d.cells, key)
		d.mu.Unlock()
		return product.Product{}, ErrUnknownRow
	}
	current := d.rows[i]
	value, err := parseInput(field, c.Buffer)
	if err != nil {
		c.Err = err.Error()
		d.mu.Unlock()
		return product.Product{}, err
	}
	if canonical(value) == Display(current, field) {
		delete(d.cells, key)
		d.mu.Unlock()
		return current, nil
	}
	c.Phase = Saving
	c.Err = ""
	lang := d.lang
	d.mu.Unlock()

	updated, err := d.api.UpdateProduct(ctx, d.auth.Token(), id, lang.String(), map[string]any{string(field): value})

	d.mu.Lock()
	if err != nil {
		if client.IsUnauthorized(err) {
			delete(d.cells, key)
			d.mu.Unlock()
			return product.Product{}, d.logout()
		}
		c.Phase = Editing
		c.Err = err.Error()
		d.mu.Unlock()
		d.log.Warn("save cell", zap.Int("id", id), zap.String("field", string(field)), zap.Error(err))
		return product.Product{}, err
	}
	delete(d.cells, key)
	// A language switch while saving already refetched the row in the new
	// language; the response here is in the old one.
	if j, ok := d.row(id); ok && d.lang == lang {
		d.rows[j] = updated
	}
	d.mu.Unlock()
	return updated, nil
}

// Display renders a field the way the table shows it. Null numbers render
// empty.
func Display(p product.Product, field product.Field) string {
	switch field {
	case product.FieldName:
		return p.Name
	case product.FieldDescription:
		return p.Description
	case product.FieldUnit:
		return p.Unit
	case product.FieldPrice:
		return p.Price.String()
	case product.FieldInPrice:
		if !p.InPrice.Valid {
			return ""
		}
		return p.InPrice.Decimal.String()
	case product.FieldInStock:
		if p.InStock == nil {
			return ""
		}
		return strconv.FormatInt(*p.InStock, 10)
	}
	return ""
}

// parseInput converts buffer text to the JSON value sent for field. Numbers
// go out as json.Number; an empty nullable number is null.
func parseInput(field product.Field, raw string) (any, error) {
	if !field.Numeric() {
		return raw, nil
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		if field == product.FieldPrice {
			return nil, ErrInvalidNumber
		}
		return nil, nil
	}
	if field == product.FieldInStock {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, ErrInvalidNumber
		}
		return json.Number(strconv.FormatInt(n, 10)), nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil || d.IsNegative() || !d.LessThan(maxMoney) || !d.Equal(d.Round(2)) {
		return nil, ErrInvalidNumber
	}
	return json.Number(d.String()), nil
}

// maxMoney bounds the integer part of prices.
var maxMoney = decimal.New(1, 10)

func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return string(x)
	case string:
		return x
	}
	return ""
}
