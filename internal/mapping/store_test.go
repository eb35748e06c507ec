package mapping

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "finstmt/internal/errors"
	"finstmt/pkg/contracts/domain"
)

func validTemplate(companyID uuid.UUID) *domain.MappingTemplate {
	return &domain.MappingTemplate{
		ID:            uuid.New(),
		CompanyID:     companyID,
		Name:          "acme cashflow",
		StatementType: domain.StatementCashFlow,
		ConceptColumns: []domain.ConceptColumn{
			{ColumnIndex: 0, Role: domain.RoleAccountName},
		},
		PeriodColumns: []domain.PeriodColumn{
			{ColumnIndex: 1, PeriodLabel: "2024-01", PeriodType: domain.PeriodMonth,
				PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ColumnIndex: 2, PeriodLabel: "2024-02", PeriodType: domain.PeriodMonth,
				PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
		DataRange:   domain.DataRange{StartRow: 1, EndRow: 10, StartCol: 0, EndCol: 2},
		HeaderRow:   0,
		Currency:    "USD",
		Units:       domain.UnitsNormal,
		Locale:      "en",
		ExpenseSign: domain.ExpenseSignNegative,
		IsActive:    true,
	}
}

func TestValidate(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name    string
		mutate  func(*domain.MappingTemplate)
		wantErr bool
	}{
		{"valid", func(*domain.MappingTemplate) {}, false},
		{
			"no period columns",
			func(tpl *domain.MappingTemplate) { tpl.PeriodColumns = nil },
			true,
		},
		{
			"period columns not increasing",
			func(tpl *domain.MappingTemplate) {
				tpl.PeriodColumns[1].ColumnIndex = 1
			},
			true,
		},
		{
			"duplicate period label",
			func(tpl *domain.MappingTemplate) {
				tpl.PeriodColumns[1].PeriodLabel = "2024-01"
			},
			true,
		},
		{
			"data range inverted",
			func(tpl *domain.MappingTemplate) {
				tpl.DataRange.EndRow = 0
				tpl.DataRange.StartRow = 5
			},
			true,
		},
		{
			"unknown fixed row metric",
			func(tpl *domain.MappingTemplate) {
				tpl.FixedRowMap = map[string]int{"bogusMetric": 3}
			},
			true,
		},
		{
			"known fixed row metrics",
			func(tpl *domain.MappingTemplate) {
				tpl.FixedRowMap = map[string]int{
					domain.MetricTotalIncome:  2,
					domain.MetricTotalExpense: 3,
				}
			},
			false,
		},
		{
			"bad currency",
			func(tpl *domain.MappingTemplate) { tpl.Currency = "DOLLARS" },
			true,
		},
		{
			"bad expense sign",
			func(tpl *domain.MappingTemplate) { tpl.ExpenseSign = "sometimes" },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate(companyID)
			tt.mutate(tpl)
			err := Validate(tpl)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tpl := validTemplate(uuid.New())
	tpl.NeedsConfirmation = true
	tpl.MissingRoles = []string{"date"}

	require.NoError(t, store.Save(ctx, tpl))

	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)
	assert.Equal(t, 1, got.Version)
	assert.False(t, got.NeedsConfirmation, "saving confirms the template")
	assert.Empty(t, got.MissingRoles)
}

func TestMemoryStore_ResaveBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tpl := validTemplate(uuid.New())

	require.NoError(t, store.Save(ctx, tpl))
	tpl.Name = "acme cashflow v2"
	require.NoError(t, store.Save(ctx, tpl))

	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "acme cashflow v2", got.Name)
}

func TestMemoryStore_ResaveKeepsUsageBookkeeping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tpl := validTemplate(uuid.New())
	require.NoError(t, store.Save(ctx, tpl))

	usedAt := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, tpl.ID, usedAt))

	// Re-save an edited copy carrying stale bookkeeping fields.
	edited := validTemplate(tpl.CompanyID)
	edited.ID = tpl.ID
	edited.Name = "acme cashflow v2"
	edited.UsageCount = 0
	edited.LastUsedAt = time.Time{}
	require.NoError(t, store.Save(ctx, edited))

	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme cashflow v2", got.Name)
	assert.Equal(t, 1, got.UsageCount)
	assert.Equal(t, usedAt, got.LastUsedAt, "recency survives a re-save")
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestMemoryStore_Default(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	companyID := uuid.New()

	older := validTemplate(companyID)
	older.LastUsedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := validTemplate(companyID)
	newer.LastUsedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	flagged := validTemplate(companyID)
	flagged.IsDefault = true
	flagged.LastUsedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))
	require.NoError(t, store.Save(ctx, flagged))

	got, err := store.Default(ctx, companyID, domain.StatementCashFlow)
	require.NoError(t, err)
	assert.Equal(t, flagged.ID, got.ID, "explicit default wins over recency")

	require.NoError(t, store.Deactivate(ctx, flagged.ID))
	got, err = store.Default(ctx, companyID, domain.StatementCashFlow)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID, "most recently used active template wins")

	_, err = store.Default(ctx, uuid.New(), domain.StatementCashFlow)
	assert.Error(t, err, "unknown company has no default")
}

func TestMemoryStore_Touch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tpl := validTemplate(uuid.New())
	require.NoError(t, store.Save(ctx, tpl))

	usedAt := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, tpl.ID, usedAt))
	require.NoError(t, store.Touch(ctx, tpl.ID, usedAt.Add(time.Hour)))

	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)
	assert.Equal(t, usedAt.Add(time.Hour), got.LastUsedAt)
}

func TestMemoryStore_DeactivateIsSoft(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tpl := validTemplate(uuid.New())
	require.NoError(t, store.Save(ctx, tpl))

	require.NoError(t, store.Deactivate(ctx, tpl.ID))

	got, err := store.Get(ctx, tpl.ID)
	require.NoError(t, err, "deactivated templates remain readable")
	assert.False(t, got.IsActive)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.json")

	store, err := NewFileStore(path, nil)
	require.NoError(t, err)

	tpl := validTemplate(uuid.New())
	require.NoError(t, store.Save(ctx, tpl))
	require.NoError(t, store.Touch(ctx, tpl.ID, time.Now().UTC()))

	// Reload from disk into a fresh store.
	reloaded, err := NewFileStore(path, nil)
	require.NoError(t, err)

	got, err := reloaded.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)
	assert.Equal(t, 1, got.UsageCount)
	assert.Equal(t, "acme cashflow", got.Name)
}
