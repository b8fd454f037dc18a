package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/evitrend/internal/model"
)

// XLSXSheet is the worksheet holding yearly counts
const XLSXSheet = "yearly_counts"

// ValidatedRecord is one correctness=1 evidence item, flattened
type ValidatedRecord struct {
	StatementID  string          `json:"stmt_id"`
	Subject      string          `json:"subj"`
	Object       string          `json:"obj"`
	Relationship string          `json:"relationship"`
	SourceID     string          `json:"pmid"`
	Year         json.RawMessage `json:"year"`
	EvidenceText string          `json:"evidence_text"`
}

// ValidatedRecords flattens the validated evidence of statements in order
func ValidatedRecords(statements []model.Statement) []ValidatedRecord {
	records := []ValidatedRecord{}
	for _, stmt := range statements {
		for _, ev := range stmt.Evidence {
			if !ev.IsValidated() {
				continue
			}
			year := ev.RawYear()
			if year == nil {
				year = json.RawMessage(`""`)
			}
			records = append(records, ValidatedRecord{
				StatementID:  stmt.ID,
				Subject:      stmt.Subj.Name,
				Object:       stmt.Obj.Name,
				Relationship: stmt.Type,
				SourceID:     ev.SourceID,
				Year:         year,
				EvidenceText: ev.Text,
			})
		}
	}
	return records
}

// ExportValidated writes ValidatedRecords to path as a JSON array
func ExportValidated(statements []model.Statement, path string) (int, error) {
	records := ValidatedRecords(statements)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	data, err := encodeJSON(records)
	if err != nil {
		return 0, fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("write records: %w", err)
	}
	return len(records), nil
}

// ValidatedFileName names the export for a triple's target statements
func ValidatedFileName(t model.Triple) string {
	return fmt.Sprintf("correct_%s_%s_%s.json", safeName(t.Subject), safeName(t.Object), safeName(t.Type))
}

// ConflictFileName names the export for a triple's conflicting statements
func ConflictFileName(t model.Triple) string {
	return "conflict_" + ValidatedFileName(t)
}

// YearlyCountsFileName returns the base name (no extension) for count exports
func YearlyCountsFileName(t model.Triple) string {
	return fmt.Sprintf("%s_%s_%s_yearly_counts", safeName(t.Type), safeName(t.Subject), safeName(t.Object))
}

// ExportYearlyCountsTSV writes "year\tcount" rows in ascending year order
func ExportYearlyCountsTSV(counts model.YearlyCounts, dir string, t model.Triple) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, YearlyCountsFileName(t)+".tsv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create tsv: %w", err)
	}

	w := bufio.NewWriter(f)
	_, _ = w.WriteString("year\tcount\n")
	for _, y := range counts.Years() {
		_, _ = fmt.Fprintf(w, "%d\t%d\n", y, counts[y])
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write tsv: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close tsv: %w", err)
	}
	return path, nil
}

// ExportYearlyCountsXLSX writes the same table as the TSV to a workbook
func ExportYearlyCountsXLSX(counts model.YearlyCounts, dir string, t model.Triple) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(XLSXSheet, "A1", &[]any{"year", "count"}); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, y := range counts.Years() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(XLSXSheet, cell, &[]any{y, counts[y]}); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	path := filepath.Join(dir, YearlyCountsFileName(t)+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save xlsx: %w", err)
	}
	return path, nil
}

// safeName keeps entity names usable as file name parts
func safeName(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
