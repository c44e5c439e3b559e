package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"chemequip/internal/models"
)

const (
	unknownValue = "Unknown"
	maxTextLen   = 100
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParsedCSV is the result of reading one uploaded file.
type ParsedCSV struct {
	Columns []string
	Rows    []models.Equipment
}

// ParseEquipmentCSV reads a header row followed by data rows. Header names are
// matched after trimming and lower-casing. Bad cells fall back to defaults;
// only a stream that is not CSV at all is rejected.
func ParseEquipmentCSV(r io.Reader) (*ParsedCSV, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, malformed("failed to read upload: %v", err)
	}
	if !utf8.Valid(data) {
		return nil, malformed("file is not valid UTF-8 text")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	parsed, err := parseRecords(data, false)
	if errors.Is(err, csv.ErrBareQuote) {
		// a stray quote inside an unquoted cell, e.g. 6" Valve, is kept as text
		parsed, err = parseRecords(data, true)
	}
	return parsed, err
}

func parseRecords(data []byte, lazyQuotes bool) (*ParsedCSV, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = lazyQuotes

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, malformed("no columns to parse from file")
	}
	if err != nil {
		return nil, &ValidationError{Kind: MalformedInput, Err: err}
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		columns[i] = normalizeColumn(name)
		if _, seen := index[columns[i]]; !seen {
			index[columns[i]] = i
		}
	}

	lookup := func(record []string, column string) (string, bool) {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	rows := make([]models.Equipment, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Kind: MalformedInput, Err: err}
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, malformed("expected %d fields in line %d, saw %d", len(header), line, len(record))
		}

		name, _ := lookup(record, "name")
		kind, _ := lookup(record, "type")
		flowrate, _ := lookup(record, "flowrate")
		pressure, _ := lookup(record, "pressure")
		temperature, _ := lookup(record, "temperature")

		rows = append(rows, models.Equipment{
			Name:        textField(name),
			Type:        textField(kind),
			Flowrate:    ParseNumericField(flowrate),
			Pressure:    ParseNumericField(pressure),
			Temperature: ParseNumericField(temperature),
		})
	}

	return &ParsedCSV{Columns: columns, Rows: rows}, nil
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseNumericField converts a cell to float64, returning 0 for anything
// that is blank, unparseable, NaN or infinite.
func ParseNumericField(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func textField(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return unknownValue
	}
	return truncateRunes(raw, maxTextLen)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) > limit {
		return string([]rune(s)[:limit])
	}
	return s
}
