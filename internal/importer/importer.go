// Package importer loads vocabulary from Excel or CSV files. This is the
// content-loading side of the system: words are immutable after import and
// the review core only ever reads them.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/flashvocab/internal/database"
	"github.com/example/flashvocab/pkg/models"
)

// Config defines the import configuration
type Config struct {
	FilePath   string // Path to the Excel or CSV file
	SheetName  string // Name of the sheet to import (Excel only)
	SkipHeader bool   // Skip the first row
}

// DefaultConfig returns the default import configuration
func DefaultConfig(path string) Config {
	return Config{
		FilePath:   path,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer writes imported words through the word repository.
type Importer struct {
	words *database.WordRepository
}

// New creates an importer over the given repository.
func New(words *database.WordRepository) *Importer {
	return &Importer{words: words}
}

// ImportWords imports words from an Excel or CSV file. Rows are expected as
// term, translation, optional example. Terms are lowercased; rows whose
// term already exists are skipped, invalid rows are reported per-row and do
// not abort the run.
func (im *Importer) ImportWords(ctx context.Context, config Config) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

// importFromExcel imports words from an Excel file
func (im *Importer) importFromExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &Result{}
	for i, row := range rows {
		if i == 0 && config.SkipHeader {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports words from a CSV file
func (im *Importer) importFromCSV(ctx context.Context, config Config) (*Result, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &Result{}
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		line++
		if line == 1 && config.SkipHeader {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
		}
	}
	return result, nil
}

// processRow validates and stores a single term/translation/example row.
func (im *Importer) processRow(ctx context.Context, row []string, result *Result) error {
	if len(row) < 2 {
		return fmt.Errorf("expected at least term and translation, got %d columns", len(row))
	}

	term := strings.ToLower(strings.TrimSpace(row[0]))
	translation := strings.TrimSpace(row[1])
	example := ""
	if len(row) > 2 {
		example = strings.TrimSpace(row[2])
	}

	switch {
	case term == "":
		return fmt.Errorf("empty term")
	case translation == "":
		return fmt.Errorf("empty translation")
	case len(term) > models.MaxTermLength:
		return fmt.Errorf("term exceeds %d characters", models.MaxTermLength)
	case len(translation) > models.MaxTranslationLength:
		return fmt.Errorf("translation exceeds %d characters", models.MaxTranslationLength)
	}

	if _, err := im.words.GetByTerm(ctx, term); err == nil {
		result.Skipped++
		return nil
	}

	word := &models.Word{Term: term, Translation: translation, Example: example}
	if err := im.words.Create(ctx, word); err != nil {
		return err
	}
	result.Created++
	return nil
}
