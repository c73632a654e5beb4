package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "id", Header: "Complaint ID", Weight: 1},
			{Key: "subject", Header: "Subject", Quote: true, Weight: 3},
		},
		Rows: []map[string]string{
			{"id": "c-1", "subject": "Broken \"street\" light"},
			{"id": "c-2", "subject": "line one\r\nline two"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Complaint ID,Subject\n"+
		"c-1,\"Broken \"\"street\"\" light\"\n"+
		"c-2,\"line one line two\"\n", string(out))
}

func TestCSVExporterQuotesUnsafeUnquotedValues(t *testing.T) {
	data := Dataset{Columns: []Column{{Key: "v", Header: "V"}}, Rows: []map[string]string{{"v": "a,b"}}}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "V\n\"a,b\"\n", string(out))
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Document{
		Title:   "COMPLAINTS REPORT",
		Summary: []string{"Report Period: 2024-01-01 to 2024-01-31", "Total Complaints: 2"},
		Data:    sampleDataset(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]Column{{Weight: 1}, {Weight: 3}, {}}, 100)
	assert.InDelta(t, 20, widths[0], 0.001)
	assert.InDelta(t, 60, widths[1], 0.001)
	assert.InDelta(t, 20, widths[2], 0.001)
}
