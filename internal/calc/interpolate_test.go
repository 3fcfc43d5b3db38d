package calc

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return NewEngine(cat, zerolog.Nop())
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	table := engine.Catalog().TravelTableFor(model.TransportVehicle, false).Table

	// Ниже первой опорной точки и в самой точке — значение границы.
	require.Equal(t, "8.2", Interpolate(50, table, catalog.BandUpTo300k).String())
	require.Equal(t, "8.2", Interpolate(100, table, catalog.BandUpTo300k).String())

	// Между точками 100 (8.2) и 350 (10.6) — линейно.
	require.Equal(t, "9.4", Interpolate(225, table, catalog.BandUpTo300k).String())

	// Выше последней точки экстраполяции нет.
	require.Equal(t, "26.4", Interpolate(5000, table, catalog.BandUpTo300k).String())
	require.Equal(t, "26.4", Interpolate(9000, table, catalog.BandUpTo300k).String())
}

func TestInterpolateMissingColumn(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	// Таблицы с зондированием не имеют колонки «до 300 тыс.».
	table := engine.Catalog().TravelTableFor(model.TransportVehicle, true).Table
	require.True(t, Interpolate(300, table, catalog.BandUpTo300k).IsZero())
}

func TestInterpolateRounding(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	table := engine.Catalog().TravelTableFor(model.TransportVehicle, false).Table

	// 8.2 + 2.4 × 100/250 = 9.16, округление не требуется, но результат
	// всегда с двумя знаками.
	got := Interpolate(200, table, catalog.BandUpTo300k)
	require.Equal(t, "9.16", got.StringFixed(2))
}
