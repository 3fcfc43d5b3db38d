package calc

import (
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

type RuleKind int

const (
	// RuleFlat — фиксированная расценка за единицу.
	RuleFlat RuleKind = iota
	// RuleTwoComponent — двухкомпонентная формула ПЗ1п + ПЗ2п × S (п.49, ф.16).
	RuleTwoComponent
	// RuleReportTier — ступенчатая расценка отчёта по Таблице 65,
	// зависит от текущей базы камеральных работ.
	RuleReportTier
)

// PricingRule — способ ценообразования позиции.
type PricingRule struct {
	Kind      RuleKind
	Price     decimal.Decimal
	Component model.PriceComponent
}

// Resolve определяет правило ценообразования вида работы. Неизвестный
// идентификатор и битая ссылка на ценовую таблицу дают нулевую расценку
// с предупреждением: пакетный расчёт не прерывается из-за пробела в данных.
func (e *Engine) Resolve(workID string) PricingRule {
	wt, ok := e.cat.WorkType(workID)
	if !ok {
		e.log.Warn().Str("work_id", workID).Msg("unknown work type, using zero price")
		return PricingRule{Kind: RuleFlat}
	}

	switch {
	case wt.ReportPricing:
		return PricingRule{Kind: RuleReportTier}
	case wt.PriceRef != "":
		component, found := e.cat.TwoComponent(wt.PriceRef)
		if !found {
			e.log.Warn().Str("work_id", workID).Str("price_ref", wt.PriceRef).Msg("price reference not found, using zero price")
			return PricingRule{Kind: RuleFlat}
		}
		return PricingRule{Kind: RuleTwoComponent, Component: component}
	default:
		return PricingRule{Kind: RuleFlat, Price: wt.BasePrice}
	}
}
