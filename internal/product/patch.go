package product

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/fakturera/internal/language"
	"github.com/wichananm65/fakturera/internal/validate"
)

// Field is a client-editable product attribute.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldInPrice     Field = "in_price"
	FieldPrice       Field = "price"
	FieldUnit        Field = "unit"
	FieldInStock     Field = "in_stock"
)

// editable is the allow-list of updatable fields, in SET clause order.
var editable = []Field{FieldName, FieldDescription, FieldInPrice, FieldPrice, FieldUnit, FieldInStock}

// Fields returns the editable fields.
func Fields() []Field {
	out := make([]Field, len(editable))
	copy(out, editable)
	return out
}

// ParseField maps a field name to an editable Field.
func ParseField(name string) (Field, bool) {
	for _, f := range editable {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Numeric reports whether values of f are numbers.
func (f Field) Numeric() bool {
	return f == FieldInPrice || f == FieldPrice || f == FieldInStock
}

// Column is the products column f writes to for lang.
func (f Field) Column(lang language.Code) string {
	if f == FieldName || f == FieldDescription {
		return lang.Column(string(f))
	}
	return string(f)
}

// Patch is a sparse update: only present fields are written. Values are
// string for text fields, decimal.Decimal for price, decimal.NullDecimal for
// in_price and sql.NullInt64 for in_stock.
type Patch map[Field]any

// ParsePatch decodes a JSON object into a Patch. Keys outside the editable
// allow-list (id, article_no, anything unknown) are ignored.
func ParsePatch(body []byte) (Patch, error) {
	raw := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, invalidField("Request body must be a JSON object", string(body))
		}
	}

	patch := Patch{}
	for _, f := range editable {
		v, ok := raw[string(f)]
		if !ok {
			continue
		}
		val, err := parseValue(f, v)
		if err != nil {
			return nil, err
		}
		patch[f] = val
	}
	return patch, nil
}

func parseValue(f Field, v json.RawMessage) (any, error) {
	isNull := string(v) == "null"
	switch f {
	case FieldName, FieldDescription, FieldUnit:
		var s string
		if isNull || json.Unmarshal(v, &s) != nil {
			return nil, invalidField(string(f)+" must be a string", string(v))
		}
		return s, nil
	case FieldPrice:
		d, ok := parseDecimal(v)
		if isNull || !ok || d.IsNegative() || !fitsMoney(d) {
			return nil, invalidField("price must be a non-negative number with at most 10 integer digits and 2 decimals", string(v))
		}
		return d, nil
	case FieldInPrice:
		if isNull || string(v) == `""` {
			return decimal.NullDecimal{}, nil
		}
		d, ok := parseDecimal(v)
		if !ok || d.IsNegative() || !fitsMoney(d) {
			return nil, invalidField("in_price must be a non-negative number with at most 10 integer digits and 2 decimals, or null", string(v))
		}
		return decimal.NullDecimal{Decimal: d, Valid: true}, nil
	case FieldInStock:
		if isNull || string(v) == `""` {
			return sql.NullInt64{}, nil
		}
		n, err := strconv.ParseInt(unquote(v), 10, 32)
		if err != nil {
			return nil, invalidField("in_stock must be a 32-bit integer or null", string(v))
		}
		return sql.NullInt64{Int64: n, Valid: true}, nil
	}
	return nil, invalidField("unsupported field", string(v))
}

func parseDecimal(v json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(unquote(v))
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// maxMoney bounds the integer part of NUMERIC(12,2) columns.
var maxMoney = decimal.New(1, 10)

// fitsMoney reports whether d can be stored in a NUMERIC(12,2) column
// without rounding or overflow.
func fitsMoney(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxMoney) && d.Equal(d.Round(2))
}

func unquote(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func invalidField(message, provided string) error {
	return &validate.Error{Type: "Invalid Field", Subject: message, Provided: provided}
}

func invalidID(provided string) error {
	return &validate.Error{Type: "Invalid Product ID", Subject: "Product id must be a positive integer", Provided: provided}
}
