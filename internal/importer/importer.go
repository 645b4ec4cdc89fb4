// Package importer parses uploaded vocabulary spreadsheets (xlsx or csv)
// into item requests the lesson service can store.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ALehav1/language-app-sub001/internal/model"

	"github.com/xuri/excelize/v2"
)

// Expected column order: term, translation, optional transliteration.
// A first row whose cells look like column titles is skipped.

// Result summarizes one import run.
type Result struct {
	Items   []model.CreateVocabItemRequest
	Skipped int
	Errors  []string
}

// Parse dispatches on the file extension. The reader is consumed fully.
func Parse(filename string, r io.Reader) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", model.ErrInvalidInput, ext)
	}
}

func parseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx file", model.ErrInvalidInput)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", model.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read rows: %w", err)
	}

	return collectRows(rows), nil
}

func parseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv", model.ErrInvalidInput)
		}
		rows = append(rows, row)
	}

	return collectRows(rows), nil
}

func collectRows(rows [][]string) *Result {
	result := &Result{}
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}

		term, translation, transliteration := cellAt(row, 0), cellAt(row, 1), cellAt(row, 2)
		if term == "" && translation == "" {
			result.Skipped++
			continue
		}
		if term == "" || translation == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: term and translation are both required", i+1))
			continue
		}

		result.Items = append(result.Items, model.CreateVocabItemRequest{
			Term:            term,
			Translation:     translation,
			Transliteration: transliteration,
		})
	}
	return result
}

func isHeaderRow(row []string) bool {
	return strings.EqualFold(cellAt(row, 0), "term") &&
		strings.EqualFold(cellAt(row, 1), "translation")
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
