package calc

import (
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/model"
)

// Имена коэффициентов в карте позиции.
const (
	CoefSoil    = "soil_category"
	CoefClimate = "K2_climate"
	CoefLocal   = "K1_local"
)

// Compose собирает коэффициенты позиции. Грунтовый и климатический К2
// получают только полевые работы; К1 — только при работе по месту
// постоянной работы (п.12 НЗ). Дополнительные коэффициенты вызывающей
// стороны попадают в карту как есть. Значения, равные единице, в карту
// не включаются.
func (e *Engine) Compose(wt *model.WorkType, ctx model.ProjectContext, extra map[string]decimal.Decimal) map[string]decimal.Decimal {
	coefs := make(map[string]decimal.Decimal)

	if wt != nil && wt.Category == model.WorkCategoryField {
		if soil, ok := wt.SoilCoefficients[ctx.SoilCategory]; ok && !soil.Equal(one) {
			coefs[CoefSoil] = soil
		}
		if k2 := e.cat.ClimateCoefficient(ctx.ClimateZone); !k2.Equal(one) {
			coefs[CoefClimate] = k2
		}
		if ctx.LocalWork {
			if k1 := e.cat.LocalWorkCoefficient(k1KindFor(wt)); !k1.Equal(one) {
				coefs[CoefLocal] = k1
			}
		}
	}

	for name, value := range extra {
		if !value.Equal(one) {
			coefs[name] = value
		}
	}
	return coefs
}

// k1KindFor — вид работ для Таблицы 1: бурение и зондирование различаются
// по диаметру, остальные полевые работы идут по общей строке.
func k1KindFor(wt *model.WorkType) catalog.K1Kind {
	switch wt.Group {
	case model.WorkGroupDrilling, model.WorkGroupFieldTests:
		if wt.DiameterOver160 {
			return catalog.K1DrillingGt160
		}
		return catalog.K1DrillingLe160
	default:
		return catalog.K1Other
	}
}

// TotalCoefficient — произведение коэффициентов карты; пустая карта даёт 1.
func TotalCoefficient(coefs map[string]decimal.Decimal) decimal.Decimal {
	total := one
	for _, value := range coefs {
		total = total.Mul(value)
	}
	return total
}
