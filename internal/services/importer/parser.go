// Package importer parses and validates sales CSV exports
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/findosh/brandsales/internal/models"
)

// DefaultMaxRows is the row cap used when none is configured
const DefaultMaxRows = 10000

var (
	// ErrTooManyRows aborts a parse that exceeds the configured row cap
	ErrTooManyRows = errors.New("CSV file exceeds maximum allowed rows")

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// ParseError wraps malformed CSV syntax
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("CSV parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseResult holds the rows accepted and rejected by validation
type ParseResult struct {
	Valid  []models.SalesRecord
	Failed []models.FailedRowReport
}

// Total returns the number of data rows read
func (r *ParseResult) Total() int {
	return len(r.Valid) + len(r.Failed)
}

// Parser streams CSV input into validated sales records
type Parser struct {
	MaxRows int
}

// NewParser creates a parser with the given row cap. Non-positive values
// fall back to DefaultMaxRows.
func NewParser(maxRows int) *Parser {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Parser{MaxRows: maxRows}
}

// Parse reads a header row followed by data rows. Validation failures are
// collected per row; syntax errors and exceeding MaxRows abort the parse.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.TrimLeadingSpace = true

	result := &ParseResult{}

	header, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	maxRows := p.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	rowNumber := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		rowNumber++
		if rowNumber > maxRows {
			return nil, fmt.Errorf("%w (%d)", ErrTooManyRows, maxRows)
		}

		raw := make(models.RawRecord, len(header))
		for i, name := range header {
			if i < len(fields) {
				raw[name] = strings.TrimSpace(fields[i])
			}
		}

		rec, errs := ValidateRecord(raw)
		if len(errs) > 0 {
			result.Failed = append(result.Failed, models.FailedRowReport{
				Row:    rowNumber,
				Data:   raw,
				Errors: errs,
			})
			continue
		}
		result.Valid = append(result.Valid, rec)
	}

	return result, nil
}
