// Package csvparse parses CSV documents that have a header row into records keyed by
// column name, reporting structural problems as a list of errors rather than stopping at
// the first one.
package csvparse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
)

const (
	utf8BOM        = "\ufeff"
	guessSampleLen = 10
)

// Error types and codes.
const (
	ErrorTypeQuotes         = "Quotes"
	ErrorTypeFieldMismatch  = "FieldMismatch"
	ErrorTypeDelimiter      = "Delimiter"
	CodeInvalidQuotes       = "InvalidQuotes"
	CodeTooFewFields        = "TooFewFields"
	CodeTooManyFields       = "TooManyFields"
	CodeUndetectableDelimit = "UndetectableDelimiter"
)

// DelimitersToGuess are tried, in order, when detecting the delimiter of a document.
var DelimitersToGuess = []string{",", "\t", "|", ";", "\x1e", "\x1f"}

// ParseError describes a problem with one row. Row is the zero-based index of the data row,
// not counting the header.
type ParseError struct {
	Type    string
	Code    string
	Message string
	Row     int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s (%s) at row %d: %s", e.Type, e.Code, e.Row, e.Message)
}

// Meta describes the structure of a parsed document.
type Meta struct {
	Delimiter string
	Linebreak string
	Fields    []string
}

// Result is the outcome of Parse. Rows with the wrong number of fields are still included
// in Data, with missing columns absent from the map.
type Result struct {
	Data   []map[string]string
	Errors []ParseError
	Meta   Meta
}

// Parse reads text as CSV with a header row, skipping empty lines. The delimiter is
// detected automatically.
func Parse(text string) Result {
	text = strings.TrimPrefix(text, utf8BOM)
	delimiter, guessed := GuessDelimiter(text)
	result := Result{
		Meta: Meta{Delimiter: delimiter, Linebreak: guessLinebreak(text)},
	}
	if !guessed && strings.TrimSpace(text) != "" {
		result.Errors = append(result.Errors, ParseError{
			Type:    ErrorTypeDelimiter,
			Code:    CodeUndetectableDelimit,
			Message: "Unable to auto-detect delimiting character; defaulted to '" + delimiter + "'",
		})
	}

	r := newReader(text, delimiter)
	header, err := r.Read()
	if err != nil {
		if err != io.EOF {
			result.Errors = append(result.Errors, quoteError(err, -1))
		}
		return result
	}
	result.Meta.Fields = header

	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, quoteError(err, row))
			break
		}
		values := make(map[string]string, len(header))
		for i, field := range header {
			if i < len(record) {
				values[field] = record[i]
			}
		}
		result.Data = append(result.Data, values)

		switch {
		case len(record) < len(header):
			result.Errors = append(result.Errors, ParseError{
				Type:    ErrorTypeFieldMismatch,
				Code:    CodeTooFewFields,
				Message: fmt.Sprintf("Too few fields: expected %d fields but parsed %d", len(header), len(record)),
				Row:     row,
			})
		case len(record) > len(header):
			result.Errors = append(result.Errors, ParseError{
				Type:    ErrorTypeFieldMismatch,
				Code:    CodeTooManyFields,
				Message: fmt.Sprintf("Too many fields: expected %d fields but parsed %d", len(header), len(record)),
				Row:     row,
			})
		}
	}
	return result
}

// Decode unmarshals the data rows of text into out, which must be a pointer to a slice of
// structs with `csv:"column"` tags. delimiter is usually Result.Meta.Delimiter.
func Decode(text, delimiter string, out interface{}) error {
	if utf8.RuneCountInString(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	if err := gocsv.UnmarshalCSV(newReader(strings.TrimPrefix(text, utf8BOM), delimiter), out); err != nil {
		return fmt.Errorf("could not decode CSV rows: %w", err)
	}
	return nil
}

// GuessDelimiter picks the candidate from DelimitersToGuess that splits the first rows of
// text into the most consistent number of fields, with at least two fields per row. If no
// candidate qualifies it returns "," and false.
func GuessDelimiter(text string) (string, bool) {
	best, bestDelta, bestAvg := "", 0, 0.0
	for _, d := range DelimitersToGuess {
		r := newReader(text, d)
		var counts []int
		for len(counts) < guessSampleLen {
			record, err := r.Read()
			if err != nil {
				break
			}
			counts = append(counts, len(record))
		}
		if len(counts) == 0 {
			continue
		}
		delta, total := 0, 0
		for i, c := range counts {
			total += c
			if i > 0 {
				delta += abs(c - counts[i-1])
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg <= 1.99 {
			continue
		}
		if best == "" || delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = d, delta, avg
		}
	}
	if best == "" {
		return ",", false
	}
	return best, true
}

func guessLinebreak(text string) string {
	i := strings.IndexAny(text, "\r\n")
	switch {
	case i < 0:
		return "\n"
	case text[i] == '\r' && strings.HasPrefix(text[i:], "\r\n"):
		return "\r\n"
	case text[i] == '\r':
		return "\r"
	default:
		return "\n"
	}
}

func newReader(text, delimiter string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma, _ = utf8.DecodeRuneInString(delimiter)
	r.FieldsPerRecord = -1
	return r
}

func quoteError(err error, row int) ParseError {
	var pe *csv.ParseError
	msg := err.Error()
	if errors.As(err, &pe) {
		msg = fmt.Sprintf("%s (line %d, column %d)", pe.Err, pe.Line, pe.Column)
	}
	return ParseError{Type: ErrorTypeQuotes, Code: CodeInvalidQuotes, Message: msg, Row: row}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
