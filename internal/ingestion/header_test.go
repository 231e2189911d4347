package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shsdb/reconciler/internal/domain"
)

func TestParseHeader(t *testing.T) {
	order, err := ParseHeader(domain.ReferenceSchema, "VERSION;IDENTIFIER; PERIOD")
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnOrder{
		domain.ColVersion:    0,
		domain.ColIdentifier: 1,
		domain.ColPeriod:     2,
	}, order)
	assert.Equal(t, []domain.Column{domain.ColVersion, domain.ColIdentifier, domain.ColPeriod}, order.Columns())
}

func TestParseHeader_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown column", "IDENTIFIER;PERIOD;VERSION;FOO"},
		{"case sensitive", "identifier;PERIOD;VERSION"},
		{"repeated column", "IDENTIFIER;PERIOD;IDENTIFIER"},
		{"report column in reference header", "IDENTIFIER;ISIN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHeader(domain.ReferenceSchema, tc.line)
			assert.ErrorIs(t, err, ErrHeaderInvalid)
		})
	}
}

func TestParseHeader_StripsByteOrderMark(t *testing.T) {
	order, err := ParseHeader(domain.ReferenceSchema, "\uFEFFIDENTIFIER;PERIOD")
	require.NoError(t, err)
	assert.Equal(t, 0, order[domain.ColIdentifier])
}

func TestIsHeaderExact(t *testing.T) {
	canonical := domain.ReportSchema.Header()
	assert.True(t, IsHeaderExact(domain.ReportSchema, canonical))

	cols := strings.Split(canonical, ";")
	cols[0], cols[1] = cols[1], cols[0]
	assert.False(t, IsHeaderExact(domain.ReportSchema, strings.Join(cols, ";")))
	assert.False(t, IsHeaderExact(domain.ReportSchema, canonical+";"))
}

func TestRowShapeValid(t *testing.T) {
	want := domain.ReportSchema.Size() - 1
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{"exact", strings.Repeat("x;", want) + "x", true},
		{"all empty", strings.Repeat(";", want), true},
		{"one short", strings.Repeat(";", want-1), false},
		{"one long", strings.Repeat(";", want+1), false},
		{"no delimiter", "x", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, RowShapeValid(tc.line, want))
		})
	}
}
