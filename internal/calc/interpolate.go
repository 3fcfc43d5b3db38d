package calc

import (
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/catalog"
)

// Interpolate — процент для непрерывного аргумента x по опорным точкам
// таблицы (п.160, примечание 3: промежуточные значения определяются
// линейной интерполяцией). Точки — середины диапазонов; строки без
// значения в колонке band пропускаются. За пределами крайних точек
// возвращается значение границы без экстраполяции; внутри — линейная
// интерполяция с округлением до двух знаков. Пустой набор точек даёт 0.
func Interpolate(x float64, table *catalog.RangeTable, band catalog.CostBand) decimal.Decimal {
	points := table.Points(band)
	if len(points) == 0 {
		return decimal.Zero
	}

	if x <= points[0].X {
		return points[0].Y
	}
	last := points[len(points)-1]
	if x >= last.X {
		return last.Y
	}

	for i := 0; i < len(points)-1; i++ {
		x0, y0 := points[i].X, points[i].Y
		x1, y1 := points[i+1].X, points[i+1].Y
		if x >= x0 && x <= x1 {
			offset := decimal.NewFromFloat(x - x0)
			span := decimal.NewFromFloat(x1 - x0)
			return y0.Add(y1.Sub(y0).Mul(offset).Div(span)).Round(2)
		}
	}
	return last.Y
}
