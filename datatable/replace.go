package datatable

import (
	"fmt"
	"regexp"
)

// SearchAndReplace coerces every cell to text and replaces each match of the
// regular expression term with replacement. Replacement may reference groups
// with $1 or ${name}. Nulls become empty text before matching. Every column of
// the returned table is TypeString. The int result counts changed cells.
func (t *Table) SearchAndReplace(term, replacement string) (*Table, int, error) {
	if term == "" {
		return nil, 0, fmt.Errorf("%w: empty search term", ErrReplace)
	}
	re, err := regexp.Compile(term)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrReplace, err)
	}

	changed := 0
	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]Value, len(c.Values))
		for r, v := range c.Values {
			text := re.ReplaceAllString(v.Formatted, replacement)
			if text != v.Formatted {
				changed++
			}
			values[r] = StringValue(text)
		}
		columns[i] = Column{Name: c.Name, Type: TypeString, Values: values}
	}
	return &Table{columns: columns, rows: t.rows}, changed, nil
}
