package calc

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/model"
)

// AdditionalCosts рассчитывает дополнительные затраты по формуле 3 НЗ №281/пр:
// ДЗП = ДЗНП + ДЗрежим + ДЗпроезд + ДЗорг + ДЗрП + ДЗсП. На вход подаются
// подытоги полевых (СПпз) и лабораторных (СЛпз) работ; в результат попадают
// только ненулевые статьи, каждая с обоснованием и формулой для печати.
func (e *Engine) AdditionalCosts(field, lab decimal.Decimal, ctx model.ProjectContext) []model.AdditionalCost {
	var entries []model.AdditionalCost

	// ДЗ на неблагоприятный период (формула 4, п.21). Процент — по
	// продолжительности периода в регионе и стоимостному диапазону СПпз.
	var unfav decimal.Decimal
	if ctx.UnfavorablePeriod {
		duration := e.cat.UnfavorableDuration(ctx.Region)
		band := catalog.GeneralCostBand(field)
		pct := e.cat.UnfavorableTable().PercentAt(duration.InexactFloat64(), band)
		unfav = round2(field.Mul(pct).Div(hundred))
		if unfav.IsPositive() {
			entries = append(entries, model.AdditionalCost{
				Name:    fmt.Sprintf("ДЗ на неблагоприятный период (%s%%)", percentStr(pct)),
				Value:   unfav,
				Percent: pct,
				Basis:   "НЗ №281/пр, п.21, формула 4",
				Formula: fmt.Sprintf("СПпз(%s) × %s", money0(field), pct.Div(hundred).StringFixed(4)),
			})
		}
	}

	// ДЗ на неизбежные перерывы (формула 6, п.26-27): режимные объекты.
	var regime decimal.Decimal
	if ctx.RegimeObject {
		pct := e.cat.RegimePercent()
		regime = round2(field.Mul(pct).Div(hundred))
		if regime.IsPositive() {
			entries = append(entries, model.AdditionalCost{
				Name:    fmt.Sprintf("ДЗ на неизбежные перерывы (%s%%)", percentStr(pct)),
				Value:   regime,
				Percent: pct,
				Basis:   "НЗ №281/пр, п.26-27, формула 6",
				Formula: fmt.Sprintf("СПпз(%s) × %s", money0(field), pct.Div(hundred).StringFixed(2)),
			})
		}
	}

	// ДЗ на проезд (формулы 7-8, п.28-36). Таблица выбирается по типу
	// транспорта и наличию статического зондирования; таблицы с
	// зондированием используют укрупнённую сетку стоимостных диапазонов.
	travelTable := e.cat.TravelTableFor(ctx.Transport, ctx.HasStaticSounding)
	if travelTable.Table != nil {
		band := travelTable.Table.CostBandFor(field)
		var pct decimal.Decimal
		if ctx.UseInterpolation {
			pct = Interpolate(ctx.DistanceKm, travelTable.Table, band)
		} else {
			pct = travelTable.Table.PercentAt(ctx.DistanceKm, band)
		}
		travel := round2(field.Mul(pct).Div(hundred))
		if travel.IsPositive() {
			name := fmt.Sprintf("ДЗ на проезд (%s%%)", percentStr(pct))
			if ctx.UseInterpolation {
				name += " (интерп.)"
			}
			entries = append(entries, model.AdditionalCost{
				Name:    name,
				Value:   travel,
				Percent: pct,
				Basis: fmt.Sprintf("НЗ №281/пр, %s, %s (расст. %s км, СПпз %s)",
					travelTable.Paragraph, travelTable.Name, kmStr(ctx.DistanceKm), bandLabel(band)),
				Formula: fmt.Sprintf("СПпз(%s) × %s", money0(field), pct.Div(hundred).StringFixed(4)),
			})
		}
	}

	// ДЗ на организацию полевых работ (п.37-39). Не начисляется при работе
	// по месту постоянной работы (п.38).
	var org decimal.Decimal
	if !ctx.LocalWork {
		band := catalog.GeneralCostBand(field)
		pct := e.cat.OrganizationTable().PercentAt(ctx.DistanceKm, band)
		org = round2(field.Mul(pct).Div(hundred))
		if org.IsPositive() {
			entries = append(entries, model.AdditionalCost{
				Name:    fmt.Sprintf("ДЗ на организацию полевых работ (%s%%)", percentStr(pct)),
				Value:   org,
				Percent: pct,
				Basis: fmt.Sprintf("НЗ №281/пр, п.37, ф.(9), Таблица 8 (расст. %s км, СПпз %s)",
					kmStr(ctx.DistanceKm), bandLabel(band)),
				Formula: fmt.Sprintf("СПпз(%s) × %s", money0(field), pct.Div(hundred).StringFixed(4)),
			})
		}
	}

	regionalK := e.cat.RegionalCoefficient(ctx.Region)
	shares := e.cat.Shares()

	// ДЗ на районные выплаты, полевые работы (формула 10, п.40). База —
	// СПпз с начисленными ДЗНП, ДЗрежим и ДЗорг; ДЗ на проезд в базу
	// не входит.
	if regionalK.GreaterThan(one) {
		base := field.Add(unfav).Add(regime).Add(org)
		mult := shares.LaborField.Mul(regionalK).Add(shares.OtherField).Sub(one)
		value := round2(base.Mul(mult))
		if value.IsPositive() {
			entries = append(entries, model.AdditionalCost{
				Name:    fmt.Sprintf("ДЗ на районные выплаты (полевые, Крайон=%s)", regionalK.String()),
				Value:   value,
				Percent: mult.Mul(hundred).Round(2),
				Basis:   "НЗ №281/пр, п.40, формула 10",
				Formula: fmt.Sprintf("(%s + %s + %s + %s) × %s",
					money0(field), money0(unfav), money0(regime), money0(org), mult.StringFixed(4)),
			})
		}
	}

	// ДЗ на районные выплаты, лабораторные работы (формула 14, п.47).
	// Не начисляется, если лаборатория находится в базовом городе.
	if regionalK.GreaterThan(one) && lab.IsPositive() && !ctx.LabAtBase {
		mult := shares.LaborLab.Mul(regionalK).Add(shares.OtherLab).Sub(one)
		value := round2(lab.Mul(mult))
		if value.IsPositive() {
			entries = append(entries, model.AdditionalCost{
				Name:    fmt.Sprintf("ДЗ на районные выплаты (лаб., Крайон=%s)", regionalK.String()),
				Value:   value,
				Percent: mult.Mul(hundred).Round(2),
				Basis:   "НЗ №281/пр, п.47, формула 14",
				Formula: fmt.Sprintf("%s × %s", money0(lab), mult.StringFixed(4)),
			})
		}
	}

	return entries
}

func kmStr(distance float64) string {
	return strconv.FormatFloat(distance, 'f', -1, 64)
}

// bandLabel — подпись стоимостного диапазона для обоснования статьи.
func bandLabel(band catalog.CostBand) string {
	switch band {
	case catalog.BandUpTo300k:
		return "до 300 тыс."
	case catalog.BandUpTo500k:
		return "до 500 тыс."
	case catalog.BandUpTo1000k:
		return "до 1 000 тыс."
	case catalog.BandUpTo2000k:
		return "до 2 000 тыс."
	case catalog.BandUpTo5000k:
		return "до 5 000 тыс."
	case catalog.BandUpTo10000k:
		return "до 10 000 тыс."
	default:
		return "свыше 10 000 тыс."
	}
}
