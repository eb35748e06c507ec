package exporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finstmt/pkg/contracts/domain"
)

func sampleMonthly() []domain.MonthlyMetrics {
	return []domain.MonthlyMetrics{
		{
			Date:              time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodKey:         "2024-01",
			TotalIncome:       decimal.NewFromInt(1000),
			TotalExpense:      decimal.NewFromInt(-200),
			MonthlyGeneration: decimal.NewFromInt(800),
			Revenue:           decimal.NewFromInt(1000),
			Costs:             decimal.NewFromInt(200),
			Cashflow:          decimal.NewFromInt(800),
			CumulativeCash:    decimal.NewFromInt(800),
		},
	}
}

func TestCSVWriter_WriteMonthly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "monthly.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteMonthly(path, sampleMonthly()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Period", rows[0][0])
	assert.Equal(t, "2024-01", rows[1][0])
	assert.Equal(t, "1000", rows[1][1])
	assert.Equal(t, "-200", rows[1][2])
	assert.Equal(t, "800", rows[1][8])
}

func TestCSVWriter_WriteLineItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	w := NewCSVWriter(nil)

	items := []domain.FinancialLineItem{
		{
			ID:              uuid.New(),
			PeriodKey:       "2024-01",
			AccountName:     "Sales",
			Category:        domain.CategoryRevenue,
			Amount:          decimal.NewFromInt(1000),
			ConfidenceScore: 1.0,
			OriginalText:    "1,000.00",
		},
	}
	require.NoError(t, w.WriteLineItems(path, items))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sales", rows[1][2])
	assert.Equal(t, "revenue", rows[1][3])
	assert.Equal(t, "1000", rows[1][4])
	assert.Equal(t, "1,000.00", rows[1][9])
}

func TestJSONWriter_WriteStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.json")
	w := NewJSONWriter(nil)

	stmt := domain.FinancialStatement{
		ID:            uuid.New(),
		StatementType: domain.StatementCashFlow,
		Currency:      "USD",
	}
	warnings := []domain.Warning{
		domain.NumericParseWarning{Row: 3, Col: 2, Raw: "n/a"},
	}
	require.NoError(t, w.WriteStatement(path, stmt, nil, sampleMonthly(), warnings))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "financial_statement_v1", doc["format"])

	warns, ok := doc["warnings"].([]interface{})
	require.True(t, ok)
	require.Len(t, warns, 1)
	first := warns[0].(map[string]interface{})
	assert.Equal(t, "NUMERIC_PARSE", first["code"])
	assert.Contains(t, first["message"], "n/a")
}
