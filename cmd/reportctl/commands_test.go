package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/service"
)

const seedJSON = `{
	"deals": [
		{"id": 1, "name": "B", "amount": "10", "stage": "won", "advisorId": 1, "advisorName": "Ana"},
		{"id": 2, "name": "A", "amount": "10", "stage": "cierre_ganado", "advisorId": 2, "advisorName": "Luis"},
		{"id": 3, "name": "C", "amount": "S/ 1,000", "stage": "lead", "advisorId": 2, "advisorName": "Luis"}
	],
	"companies": [
		{"id": 10, "name": "Acme", "revenue": 5000, "stage": "proposal"}
	],
	"transitions": [
		{"entityId": 10, "year": 2025, "week": 1, "previousStage": null, "currentStage": "lead", "amount": "100"},
		{"entityId": 10, "year": 2025, "week": 2, "previousStage": "lead", "currentStage": "proposal", "amount": "100"}
	],
	"goals": [{"year": 2025, "week": 2, "target": "300"}]
}`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	return path
}

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestAggregateCommand(t *testing.T) {
	out, err := run(t, "aggregate", "-f", writeSeed(t))
	require.NoError(t, err)

	var report models.StageReportResponse
	require.NoError(t, json.Unmarshal(out, &report))
	assert.Equal(t, 3, report.Aggregate.Total)
	assert.Equal(t, 2, report.Aggregate.Buckets[0].Count)
	assert.Equal(t, "S/ 1,020", report.TotalAmountFormatted)
}

func TestByAdvisorCommand(t *testing.T) {
	out, err := run(t, "by-advisor", "-f", writeSeed(t))
	require.NoError(t, err)

	var summaries []models.AdvisorSummary
	require.NoError(t, json.Unmarshal(out, &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "Luis", summaries[0].AdvisorName)
}

func TestWeeklyCommand(t *testing.T) {
	out, err := run(t, "weekly", "-f", writeSeed(t), "--window", "1")
	require.NoError(t, err)

	var report models.WeeklyReportResponse
	require.NoError(t, json.Unmarshal(out, &report))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 2, report.Rows[0].Week)
	assert.Equal(t, 1, report.Rows[0].AdvanceCount)
	assert.Equal(t, "300", report.Rows[0].Target.String())

	_, err = run(t, "weekly", "-f", writeSeed(t), "--window", "-1")
	assert.Error(t, err)
}

func TestTableCommand(t *testing.T) {
	out, err := run(t, "table", "-f", writeSeed(t), "--sort", "amount", "--order", "asc", "--page-size", "2")
	require.NoError(t, err)

	var page service.TablePage
	require.NoError(t, json.Unmarshal(out, &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "B", page.Rows[0].Name)
	assert.Equal(t, "A", page.Rows[1].Name)

	out, err = run(t, "table", "-f", writeSeed(t), "--kind", "companies")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &page))
	assert.Equal(t, 1, page.Total)
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "aggregate")
	assert.Error(t, err, "--file is required")

	_, err = run(t, "aggregate", "-f", writeSeed(t), "--kind", "leads")
	assert.Error(t, err)

	_, err = run(t, "aggregate", "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
