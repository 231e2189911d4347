package ingestion

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shsdb/reconciler/internal/domain"
)

const maxLineBytes = 4 << 20

// Codec validates, decodes and encodes the files of one record family.
type Codec[T any] struct {
	schema   *domain.Schema
	strict   bool
	fields   []field[T]
	byColumn map[domain.Column]field[T]
	key      func(*T) string
}

func newCodec[T any](s *domain.Schema, strict bool, fields []field[T], key func(*T) string) *Codec[T] {
	c := &Codec[T]{
		schema:   s,
		strict:   strict,
		fields:   fields,
		byColumn: make(map[domain.Column]field[T], len(fields)),
		key:      key,
	}
	for _, f := range fields {
		c.byColumn[f.column] = f
	}
	return c
}

var (
	// References is the tolerant codec for reference data files.
	References = newCodec(domain.ReferenceSchema, false, referenceFields, (*domain.Reference).RecordKey)
	// Reports is the strict codec for report files.
	Reports = newCodec(domain.ReportSchema, true, reportFields, (*domain.Report).RecordKey)
)

func (c *Codec[T]) Family() domain.Family  { return c.schema.Family }
func (c *Codec[T]) Schema() *domain.Schema { return c.schema }

// Strict reports whether the header must be canonical and one bad row
// rejects the whole file.
func (c *Codec[T]) Strict() bool { return c.strict }

// Key returns the record key used when publishing rec.
func (c *Codec[T]) Key(rec *T) string { return c.key(rec) }

// Header validates a header line and returns its column order.
func (c *Codec[T]) Header(line string) (domain.ColumnOrder, error) {
	if c.strict && !IsHeaderExact(c.schema, line) {
		return nil, fmt.Errorf("%w: %s header must be %q", ErrHeaderInvalid, c.schema.Family, c.schema.Header())
	}
	return ParseHeader(c.schema, line)
}

// DecodeRow decodes one data line against a column order.
func (c *Codec[T]) DecodeRow(line string, order domain.ColumnOrder) (T, error) {
	return c.decodeRow(0, line, order)
}

func (c *Codec[T]) decodeRow(lineNum int, line string, order domain.ColumnOrder) (T, error) {
	var rec T
	tokens := strings.Split(line, domain.Delimiter)
	for _, f := range c.fields {
		raw := ""
		if pos, ok := order[f.column]; ok && pos < len(tokens) {
			raw = strings.TrimSpace(tokens[pos])
		}
		if raw == "" {
			if f.mandatory {
				return rec, &FieldError{Line: lineNum, Column: f.column, Err: errMissing}
			}
			continue
		}
		if err := f.decode(&rec, raw); err != nil {
			return rec, &FieldError{Line: lineNum, Column: f.column, Err: err}
		}
	}
	return rec, nil
}

// EncodeRow renders rec as a data line in the given column order.
func (c *Codec[T]) EncodeRow(rec *T, order domain.ColumnOrder) string {
	cols := order.Columns()
	out := make([]string, len(cols))
	for i, col := range cols {
		if f, ok := c.byColumn[col]; ok {
			out[i] = f.encode(rec)
		}
	}
	return strings.Join(out, domain.Delimiter)
}

// Validate checks the header and, for the strict family, the shape of every
// row. It does not decode fields.
func (c *Codec[T]) Validate(raw []byte) error {
	_, err := c.scan(raw, nil)
	return err
}

// Result is a decoded file.
type Result[T any] struct {
	Order   domain.ColumnOrder
	Records []T
	// Skipped holds the row errors of the tolerant family. A strict file
	// with a bad row fails as a whole instead.
	Skipped []error
}

// DecodeFile validates and decodes a whole file.
func (c *Codec[T]) DecodeFile(raw []byte) (*Result[T], error) {
	res := &Result[T]{}
	order, err := c.scan(raw, func(lineNum int, line string, order domain.ColumnOrder) error {
		rec, err := c.decodeRow(lineNum, line, order)
		if err != nil {
			if c.strict {
				return err
			}
			res.Skipped = append(res.Skipped, err)
			return nil
		}
		res.Records = append(res.Records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Order = order
	return res, nil
}

// scan walks the non-blank lines of raw. The first is the header; every
// following line is handed to row, after the shape check for the strict
// family.
func (c *Codec[T]) scan(raw []byte, row func(lineNum int, line string, order domain.ColumnOrder) error) (domain.ColumnOrder, error) {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var order domain.ColumnOrder
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if order == nil {
			o, err := c.Header(line)
			if err != nil {
				return nil, err
			}
			order = o
			continue
		}
		if c.strict && !RowShapeValid(line, c.schema.Size()-1) {
			return nil, fmt.Errorf("%w: line %d has %d delimiters, want %d",
				ErrRowShapeInvalid, lineNum, strings.Count(line, domain.Delimiter), c.schema.Size()-1)
		}
		if row != nil {
			if err := row(lineNum, line, order); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineNum+1, err)
	}
	if order == nil {
		return nil, ErrNoData
	}
	return order, nil
}

// IsInvalidInput reports whether err rejects the input rather than signals
// an infrastructure failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrHeaderInvalid) ||
		errors.Is(err, ErrRowShapeInvalid) ||
		errors.Is(err, ErrFieldDecode) ||
		errors.Is(err, ErrNoData)
}
