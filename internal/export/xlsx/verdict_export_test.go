package xlsx_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"baucheck/internal/export/xlsx"
)

func TestExportVerdictOneRowPerField(t *testing.T) {
	verdict := json.RawMessage(`{
		"overall_status": "non_compliant",
		"fields": {
			"grz": {
				"compliance_status": "non_compliant",
				"issues": ["GRZ überschritten"],
				"recommended_actions": ["Grundfläche reduzieren"],
				"additional_checks": []
			},
			"gfz": {
				"compliance_status": "compliant",
				"issues": [],
				"recommended_actions": [],
				"additional_checks": []
			}
		}
	}`)

	data, err := xlsx.ExportVerdict("EFH Musterweg 4", verdict)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Prüfergebnis")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, "Attribut", rows[0][0])
	assert.Equal(t, "grz", rows[1][0])
	assert.Equal(t, "non_compliant", rows[1][1])
	assert.Equal(t, "GRZ überschritten", rows[1][2])
	assert.Equal(t, "gfz", rows[2][0])
	assert.Equal(t, "compliant", rows[2][1])

	last := rows[len(rows)-1]
	require.NotEmpty(t, last)
	assert.Contains(t, last[0], "EFH Musterweg 4")
	assert.Contains(t, last[0], "non_compliant")
}

func TestExportVerdictRejectsCorruptVerdict(t *testing.T) {
	_, err := xlsx.ExportVerdict("EFH", json.RawMessage(`{broken`))
	assert.Error(t, err)
}
