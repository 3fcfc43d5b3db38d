package calc

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/glavgeo/igi-estimates/internal/model"
)

func baseContext() model.ProjectContext {
	ctx := model.DefaultProjectContext()
	ctx.DistanceKm = 300
	ctx.HasStaticSounding = true
	ctx.UseInterpolation = false
	return ctx
}

func findCost(t *testing.T, costs []model.AdditionalCost, substr string) model.AdditionalCost {
	t.Helper()
	for _, cost := range costs {
		if strings.Contains(cost.Name, substr) {
			return cost
		}
	}
	t.Fatalf("additional cost %q not found", substr)
	return model.AdditionalCost{}
}

func TestAdditionalCostsTravelAndOrganization(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	field := decimal.NewFromInt(600_000)

	costs := engine.AdditionalCosts(field, decimal.Zero, baseContext())
	require.Len(t, costs, 2)

	// Таблица 5 (авто с зондированием), 300 км, диапазон до 2000 тыс.: 6.2%.
	travel := costs[0]
	require.Equal(t, "ДЗ на проезд (6.2%)", travel.Name)
	require.Equal(t, "37200.00", travel.Value.StringFixed(2))
	require.Contains(t, travel.Basis, "Таблица 5")
	require.Contains(t, travel.Formula, "СПпз(600 000)")

	// Таблица 8, 300 км, диапазон до 1000 тыс.: 3.2%.
	org := costs[1]
	require.Contains(t, org.Name, "организацию полевых работ")
	require.Equal(t, "19200.00", org.Value.StringFixed(2))
}

func TestAdditionalCostsRegionalField(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.Region = "Республика Коми"

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.Zero, ctx)

	regional := findCost(t, costs, "районные выплаты (полевые")
	// База: 600000 + ДЗорг 19200; множитель 0.41 × 1.3 + 0.59 − 1 = 0.123.
	require.Equal(t, "76161.60", regional.Value.StringFixed(2))
	require.Equal(t, "12.3", regional.Percent.String())
	require.Contains(t, regional.Formula, "0.1230")
}

func TestAdditionalCostsTravelExcludedFromRegionalBase(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.Region = "Республика Коми"
	ctx.LocalWork = true // организация не начисляется

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.Zero, ctx)

	// Без ДЗорг база районных равна чистому СПпз, хотя проезд начислен.
	regional := findCost(t, costs, "районные выплаты (полевые")
	require.Equal(t, "73800.00", regional.Value.StringFixed(2))

	for _, cost := range costs {
		require.NotContains(t, cost.Name, "организацию")
	}
}

func TestAdditionalCostsUnfavorablePeriod(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.Region = "Республика Коми"
	ctx.UnfavorablePeriod = true

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.Zero, ctx)

	// Продолжительность 8.0 мес. попадает в строку 8-9, диапазон до 1000 тыс.: 7.3%.
	unfav := findCost(t, costs, "неблагоприятный период")
	require.Equal(t, "ДЗ на неблагоприятный период (7.3%)", unfav.Name)
	require.Equal(t, "43800.00", unfav.Value.StringFixed(2))
}

func TestAdditionalCostsRegimeObject(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.RegimeObject = true

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.Zero, ctx)

	regime := findCost(t, costs, "неизбежные перерывы")
	require.Equal(t, "ДЗ на неизбежные перерывы (25%)", regime.Name)
	require.Equal(t, "150000.00", regime.Value.StringFixed(2))
}

func TestAdditionalCostsLabAllowance(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.Region = "Республика Коми"
	ctx.LabAtBase = false

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.NewFromInt(100_000), ctx)

	// 0.65 × 1.3 + 0.35 − 1 = 0.195.
	lab := findCost(t, costs, "районные выплаты (лаб.")
	require.Equal(t, "19500.00", lab.Value.StringFixed(2))

	// Лаборатория в базовом городе надбавку не получает.
	ctx.LabAtBase = true
	costs = engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.NewFromInt(100_000), ctx)
	for _, cost := range costs {
		require.NotContains(t, cost.Name, "лаб.")
	}
}

func TestAdditionalCostsNoRegionalForUnitCoefficient(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.Region = "г. Москва"

	costs := engine.AdditionalCosts(decimal.NewFromInt(600_000), decimal.NewFromInt(100_000), ctx)
	for _, cost := range costs {
		require.NotContains(t, cost.Name, "районные выплаты")
	}
}

func TestAdditionalCostsInterpolatedTravel(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	ctx := baseContext()
	ctx.DistanceKm = 350
	ctx.UseInterpolation = true

	costs := engine.AdditionalCosts(decimal.NewFromInt(400_000), decimal.Zero, ctx)

	// 350 км — опорная точка строки 200-500; диапазон до 500 тыс.: 8%.
	travel := findCost(t, costs, "проезд")
	require.Contains(t, travel.Name, "(интерп.)")
	require.Equal(t, "32000.00", travel.Value.StringFixed(2))
}

func TestAdditionalCostsZeroField(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	costs := engine.AdditionalCosts(decimal.Zero, decimal.Zero, baseContext())
	require.Empty(t, costs)
}
