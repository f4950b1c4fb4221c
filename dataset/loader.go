// Package dataset loads the remedy table from its CSV source file.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pri779/Ayurvedic-chatbot/logging"
	"github.com/pri779/Ayurvedic-chatbot/remedy"
	"golang.org/x/text/encoding/charmap"
)

// Column names of the source file, compared case-insensitively
const (
	ColumnDisease  = "Disease"
	ColumnAgeGroup = "Age Group"
	ColumnRemedies = "Remedies"
	ColumnImageURL = "Image URL"
	ColumnSeason   = "Season"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyFile is returned when the source has no header row
	ErrEmptyFile = errors.New("dataset file is empty")
)

var requiredColumns = []string{ColumnDisease, ColumnAgeGroup, ColumnRemedies, ColumnImageURL, ColumnSeason}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Stats counts what happened to each data row during parsing
type Stats struct {
	TotalLines     int
	Parsed         int
	EmptyDisease   int
	MissingColumns int
}

// Load reads and parses the CSV file at path
func Load(path string) (*remedy.Table, Stats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	table, stats, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	logging.Info("Dataset loaded", "path", path, "records", table.Len())
	return table, stats, nil
}

// Parse reads remedy records from CSV content with a header row.
// Content that is not valid UTF-8 is decoded as ISO-8859-1.
func Parse(r io.Reader) (*remedy.Table, Stats, error) {
	var stats Stats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read dataset: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrEmptyFile
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	var records []remedy.Record
	for {
		fields, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read line %d: %w", stats.TotalLines+2, err)
		}
		stats.TotalLines++

		if len(fields) < len(header) {
			stats.MissingColumns++
			continue
		}

		rec := remedy.Record{
			Disease:  strings.TrimSpace(fields[index[ColumnDisease]]),
			AgeGroup: strings.TrimSpace(fields[index[ColumnAgeGroup]]),
			Remedies: fields[index[ColumnRemedies]],
			ImageURL: fields[index[ColumnImageURL]],
			Season:   strings.TrimSpace(fields[index[ColumnSeason]]),
		}

		if rec.Disease == "" {
			stats.EmptyDisease++
			continue
		}

		records = append(records, rec)
	}
	stats.Parsed = len(records)

	if stats.EmptyDisease > 0 || stats.MissingColumns > 0 {
		logging.Info("Dataset skip statistics",
			"empty_disease", stats.EmptyDisease,
			"missing_columns", stats.MissingColumns,
			"total_lines", stats.TotalLines,
			"records_parsed", stats.Parsed)
	}

	return remedy.NewTable(records), stats, nil
}

// columnIndex maps each required column to its position in the header
func columnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	index := make(map[string]int, len(requiredColumns))
	for _, column := range requiredColumns {
		pos, ok := positions[strings.ToLower(column)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
		}
		index[column] = pos
	}

	return index, nil
}
