package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/glavgeo/igi-estimates/internal/model"
)

func TestBuildItemFlat(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := model.DefaultProjectContext()

	item := engine.BuildItem(ItemRequest{
		WorkID:   "pit_excavation",
		Quantity: decimal.NewFromInt(5),
	}, ctx)

	// II категория грунтов и IV зона дают единичные коэффициенты.
	require.Empty(t, item.Coefficients)
	require.Equal(t, "1", item.TotalCoefficient.String())
	require.Equal(t, "1000.00", item.UnitCost.StringFixed(2))
	require.Equal(t, "5000.00", item.TotalCost.StringFixed(2))
	require.Equal(t, model.WorkCategoryField, item.Category)
	require.Equal(t, "НЗ №281/пр, Таблица 31", item.Citation)
}

func TestBuildItemSoilAndClimate(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := model.DefaultProjectContext()
	ctx.SoilCategory = "IV"
	ctx.ClimateZone = "I"

	item := engine.BuildItem(ItemRequest{
		WorkID:   "pit_excavation",
		Quantity: decimal.NewFromInt(2),
	}, ctx)

	require.Equal(t, "1.32", item.Coefficients[CoefSoil].String())
	require.Equal(t, "1.25", item.Coefficients[CoefClimate].String())
	// 1000 × 1.32 × 1.25 = 1650.00
	require.Equal(t, "1650.00", item.UnitCost.StringFixed(2))
	require.Equal(t, "3300.00", item.TotalCost.StringFixed(2))
}

func TestBuildItemLocalWork(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := model.DefaultProjectContext()
	ctx.LocalWork = true

	le160 := engine.BuildItem(ItemRequest{WorkID: "drill_core_le160_cat2", Quantity: decimal.NewFromInt(10)}, ctx)
	require.Equal(t, "0.88", le160.Coefficients[CoefLocal].String())
	// 1250 × 0.88 = 1100.00
	require.Equal(t, "1100.00", le160.UnitCost.StringFixed(2))

	gt160 := engine.BuildItem(ItemRequest{WorkID: "drill_core_gt160_cat2", Quantity: decimal.NewFromInt(10)}, ctx)
	require.Equal(t, "0.82", gt160.Coefficients[CoefLocal].String())

	office := engine.BuildItem(ItemRequest{WorkID: "cameral_borehole_cat2", Quantity: decimal.NewFromInt(10)}, ctx)
	require.Empty(t, office.Coefficients, "камеральные работы не получают полевых коэффициентов")
}

func TestBuildItemTwoComponent(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := model.DefaultProjectContext()

	item := engine.BuildItem(ItemRequest{
		WorkID:   "recon_route",
		Quantity: decimal.RequireFromString("2.5"),
	}, ctx)

	// ПЗ1п(20000) + ПЗ2п(500) × 2.5 = 21250.00
	require.Equal(t, "500.00", item.BasePrice.StringFixed(2))
	require.Equal(t, "500.00", item.UnitCost.StringFixed(2))
	require.Equal(t, "21250.00", item.TotalCost.StringFixed(2))
	require.Contains(t, item.Formula, "ПЗ1п(20 000)")
}

func TestBuildItemExtraCoefficients(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := model.DefaultProjectContext()

	item := engine.BuildItem(ItemRequest{
		WorkID:   "lab_moisture",
		Quantity: decimal.NewFromInt(4),
		ExtraCoefficients: map[string]decimal.Decimal{
			"K_urgency": decimal.RequireFromString("1.3"),
		},
	}, ctx)

	require.Equal(t, "1.3", item.Coefficients["K_urgency"].String())
	// 186 × 1.3 = 241.80
	require.Equal(t, "241.80", item.UnitCost.StringFixed(2))
	require.Equal(t, "967.20", item.TotalCost.StringFixed(2))
}

func TestBuildItemUnknownWork(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	item := engine.BuildItem(ItemRequest{
		WorkID:   "no_such_work",
		Quantity: decimal.NewFromInt(3),
	}, model.DefaultProjectContext())

	require.True(t, item.TotalCost.IsZero())
	require.True(t, item.UnitCost.IsZero())
}

func TestBuildItemNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	item := engine.BuildItem(ItemRequest{
		WorkID:   "pit_excavation",
		Quantity: decimal.NewFromInt(-2),
	}, model.DefaultProjectContext())

	require.True(t, item.Quantity.IsZero())
	require.True(t, item.TotalCost.IsZero())
}

func TestTotalCoefficient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1", TotalCoefficient(nil).String())

	coefs := map[string]decimal.Decimal{
		"a": decimal.RequireFromString("1.2"),
		"b": decimal.RequireFromString("0.5"),
	}
	require.Equal(t, "0.6", TotalCoefficient(coefs).String())
}
