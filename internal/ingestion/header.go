package ingestion

import (
	"fmt"
	"strings"

	"github.com/shsdb/reconciler/internal/domain"
)

const bom = "\uFEFF"

// ParseHeader maps every column of a header line to its zero-based position.
// Every token must belong to the schema.
func ParseHeader(s *domain.Schema, line string) (domain.ColumnOrder, error) {
	line = strings.TrimPrefix(line, bom)
	tokens := strings.Split(line, domain.Delimiter)
	order := make(domain.ColumnOrder, len(tokens))
	for i, tok := range tokens {
		name := strings.TrimSpace(tok)
		if !s.Has(name) {
			return nil, fmt.Errorf("%w: unknown column %q at position %d", ErrHeaderInvalid, name, i)
		}
		col := domain.Column(name)
		if _, dup := order[col]; dup {
			return nil, fmt.Errorf("%w: column %q repeated", ErrHeaderInvalid, name)
		}
		order[col] = i
	}
	return order, nil
}

// IsHeaderExact reports whether line lists the schema columns in canonical
// order.
func IsHeaderExact(s *domain.Schema, line string) bool {
	return strings.TrimPrefix(line, bom) == s.Header()
}

// RowShapeValid reports whether line holds exactly delimiters separators.
func RowShapeValid(line string, delimiters int) bool {
	return strings.Count(line, domain.Delimiter) == delimiters
}
