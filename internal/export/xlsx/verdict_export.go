package xlsx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"baucheck/internal/compare"
	"baucheck/internal/extraction"
)

const sheetName = "Prüfergebnis"

// ExportVerdict renders a compliance verdict as an XLSX workbook with one row
// per field, for download alongside the text report.
func ExportVerdict(projectName string, raw json.RawMessage) ([]byte, error) {
	var verdict compare.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("decoding verdict: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []string{"Attribut", "Bewertung", "Probleme", "Empfohlene Maßnahmen", "Weitere Prüfungen"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, field := range extraction.AllFields {
		fv, ok := verdict.Fields[field]
		if !ok {
			continue
		}
		values := []string{
			string(field),
			fv.ComplianceStatus,
			strings.Join(fv.Issues, "; "),
			strings.Join(fv.RecommendedActions, "; "),
			strings.Join(fv.AdditionalChecks, "; "),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, err
			}
		}
		row++
	}

	summaryCell, err := excelize.CoordinatesToCellName(1, row+1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheetName, summaryCell, fmt.Sprintf("%s: %s", projectName, verdict.OverallStatus)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
