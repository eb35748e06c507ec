package detect

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "finstmt/internal/errors"
	"finstmt/internal/workbook"
	"finstmt/pkg/contracts/domain"
)

func TestAutoMapper_AutoMap(t *testing.T) {
	m := NewAutoMapper(nil)
	companyID := uuid.New()

	t.Run("english headers resolve description role", func(t *testing.T) {
		g := workbook.NewGrid("Cashflow", [][]string{
			{"Description", "Jan-24", "Feb-24", "Mar-24"},
			{"Sales", "1000", "1100", "1200"},
			{"Rent", "-200", "-200", "-200"},
		})

		tpl, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
		})
		require.NoError(t, err)

		assert.True(t, tpl.NeedsConfirmation, "auto-detected templates always need confirmation")
		assert.Empty(t, tpl.MissingRoles)
		require.Len(t, tpl.ConceptColumns, 1)
		assert.Equal(t, 0, tpl.ConceptColumns[0].ColumnIndex)
		assert.Equal(t, domain.RoleAccountName, tpl.ConceptColumns[0].Role)
		require.Len(t, tpl.PeriodColumns, 3)
		assert.Equal(t, "2024-01", tpl.PeriodColumns[0].PeriodLabel)
		assert.Equal(t, 1, tpl.DataRange.StartRow)
		assert.Equal(t, 2, tpl.DataRange.EndRow)
		assert.Equal(t, companyID, tpl.CompanyID)
		assert.Equal(t, domain.ExpenseSignNegative, tpl.ExpenseSign)
	})

	t.Run("spanish headers resolve via bilingual vocabulary", func(t *testing.T) {
		g := workbook.NewGrid("Flujo", [][]string{
			{"Concepto", "Ene-24", "Feb-24"},
			{"Ventas", "1.000,00", "1.100,00"},
		})

		tpl, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
			Locale:        "es",
		})
		require.NoError(t, err)
		assert.Empty(t, tpl.MissingRoles)
		assert.Equal(t, "es", tpl.Locale)
	})

	t.Run("missing description leaves template needing manual mapping", func(t *testing.T) {
		g := workbook.NewGrid("Sheet1", [][]string{
			{"", "Jan-24", "Feb-24"},
			{"Sales", "1000", "1100"},
		})

		tpl, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementProfitLoss,
		})
		require.NoError(t, err)
		assert.True(t, tpl.NeedsConfirmation)
		assert.Contains(t, tpl.MissingRoles, "description")
	})

	t.Run("header row below leading junk rows", func(t *testing.T) {
		g := workbook.NewGrid("Cashflow", [][]string{
			{"ACME S.A. — Cashflow 2024"},
			{},
			{"Concepto", "Ene-24", "Feb-24"},
			{"Ventas", "1000", "1100"},
		})

		tpl, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, tpl.HeaderRow)
		assert.Equal(t, 3, tpl.DataRange.StartRow)
	})

	t.Run("role-only title row does not shadow the dated header below", func(t *testing.T) {
		g := workbook.NewGrid("Flujo", [][]string{
			{"Concepto de flujo"},
			{"Concepto", "Ene-24", "Feb-24"},
			{"Ventas", "1000", "1100"},
		})

		tpl, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, tpl.HeaderRow)
		require.Len(t, tpl.PeriodColumns, 2)
		assert.Equal(t, 2, tpl.DataRange.StartRow)
	})

	t.Run("role-only row is still the fallback header", func(t *testing.T) {
		g := workbook.NewGrid("Flujo", [][]string{
			{"Concepto", "Total", "Notas"},
			{"Ventas", "1000", "nota"},
		})

		_, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
		})
		require.Error(t, err, "fallback header has no period columns")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStructure))
	})

	t.Run("sheet without structure is a column mapping error", func(t *testing.T) {
		g := workbook.NewGrid("Notes", [][]string{
			{"just", "some", "notes"},
			{"more", "prose", "here"},
		})

		_, err := m.AutoMap(g, AutoMapOptions{
			CompanyID:     companyID,
			StatementType: domain.StatementCashFlow,
		})
		require.Error(t, err)
	})
}

func TestMatchRoles_FirstColumnWins(t *testing.T) {
	g := workbook.NewGrid("S", [][]string{
		{"Concept", "Item Detail", "Jan-24"},
	})

	roleCols := matchRoles(g, 0)
	assert.Equal(t, 0, roleCols["description"], "first matching column wins per role")
}

func TestAutoMap_StageIsColumnMapping(t *testing.T) {
	m := NewAutoMapper(nil)
	g := workbook.NewGrid("Notes", [][]string{{"prose"}})

	_, err := m.AutoMap(g, AutoMapOptions{CompanyID: uuid.New(), StatementType: domain.StatementCashFlow})
	require.Error(t, err)
	assert.Equal(t, apperrors.StageColumnMapping, apperrors.StageOf(err))
}
