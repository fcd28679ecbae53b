package product

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/wichananm65/fakturera/internal/language"
)

const table = "products"

// articleNumberExpr orders by the first run of digits in article_no, so
// ART-002 sorts before ART-010.
const articleNumberExpr = `CAST(SUBSTRING(article_no FROM '[0-9]+') AS BIGINT)`

func selectColumns(lang language.Code) string {
	return fmt.Sprintf(
		`id, article_no, %s AS name, in_price, price, unit, in_stock, %s AS description`,
		pq.QuoteIdentifier(lang.Column("name")),
		pq.QuoteIdentifier(lang.Column("description")),
	)
}

func listSQL(q ListQuery) string {
	dir := "ASC"
	if q.Desc() {
		dir = "DESC"
	}
	orderBy := articleNumberExpr
	if q.Sort == SortName {
		orderBy = pq.QuoteIdentifier(q.Lang.Column("name"))
	}
	return fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY %s %s, article_no %s, id %s`,
		selectColumns(q.Lang), pq.QuoteIdentifier(table), orderBy, dir, dir, dir,
	)
}

func getByIDSQL(lang language.Code) string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns(lang), pq.QuoteIdentifier(table))
}

// buildUpdate renders a parameterized UPDATE for the fields present in patch.
// Column names come only from the editable allow-list and are quoted; values
// travel as arguments. The product id is the last argument.
func buildUpdate(id int, lang language.Code, patch Patch) (string, []any, error) {
	sets := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+1)
	for _, f := range editable {
		v, ok := patch[f]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(f.Column(lang)), len(args)))
	}
	if len(sets) == 0 {
		return "", nil, ErrNoFields
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, pq.QuoteIdentifier(table), strings.Join(sets, ", "), len(args))
	return q, args, nil
}
