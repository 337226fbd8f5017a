// Package importer loads vocabulary lists from spreadsheets into storage.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/kapp/internal/domain"
)

// Column order of an import file. The first row is a header and is skipped.
const (
	colKorean = iota
	colRomanization
	colEnglish
	colPartOfSpeech
	colCategory
	colDifficulty
	colExampleKorean
	colExampleEnglish
)

// Store receives imported items.
type Store interface {
	UpsertVocabulary(ctx context.Context, v *domain.VocabularyItem) (bool, error)
}

// Options selects what to import.
type Options struct {
	FilePath  string // .xlsx or .csv
	SheetName string // defaults to the first sheet of a workbook
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// Import reads every data row of the file and upserts it as a vocabulary
// item. Rows missing the Korean or English text are skipped.
func Import(ctx context.Context, store Store, opts Options) (*Result, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(opts.FilePath)); ext {
	case ".csv":
		rows, err = readCSV(opts.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(opts.FilePath, opts.SheetName)
	default:
		return nil, fmt.Errorf("unsupported import file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowNum := i + 1

		item, ok := itemFromRow(row)
		if !ok {
			if !blank(row) {
				result.Skipped++
			}
			continue
		}
		result.TotalProcessed++

		created, err := store.UpsertVocabulary(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func itemFromRow(row []string) (*domain.VocabularyItem, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	item := &domain.VocabularyItem{
		Korean:                 cell(colKorean),
		Romanization:           cell(colRomanization),
		English:                cell(colEnglish),
		PartOfSpeech:           cell(colPartOfSpeech),
		Category:               cell(colCategory),
		DifficultyLevel:        parseDifficulty(cell(colDifficulty)),
		ExampleSentenceKorean:  cell(colExampleKorean),
		ExampleSentenceEnglish: cell(colExampleEnglish),
	}
	if item.Korean == "" || item.English == "" {
		return nil, false
	}
	return item, true
}

// parseDifficulty clamps to [1,5]; anything unreadable is 1.
func parseDifficulty(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
