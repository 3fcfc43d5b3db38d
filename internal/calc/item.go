package calc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

// ItemRequest — запрос на расчёт одной позиции сметы.
type ItemRequest struct {
	WorkID            string
	Quantity          decimal.Decimal
	ExtraCoefficients map[string]decimal.Decimal

	// OverridePrice подменяет расценку каталога; используется сводом
	// для подстановки рассчитанной стоимости отчёта.
	OverridePrice *decimal.Decimal
	Formula       string
}

// BuildItem рассчитывает одну позицию сметы. Неположительное количество и
// неизвестный вид работы дают нулевую позицию с предупреждением в логе:
// частичная смета полезнее прерванного расчёта.
func (e *Engine) BuildItem(req ItemRequest, ctx model.ProjectContext) model.WorkItem {
	item := model.WorkItem{
		WorkID:           req.WorkID,
		Quantity:         req.Quantity,
		TotalCoefficient: one,
		Formula:          req.Formula,
	}

	wt, found := e.cat.WorkType(req.WorkID)
	if found {
		item.Code = wt.Code
		item.Name = wt.Name
		item.Category = wt.Category
		item.Unit = wt.Unit
		item.Citation = wt.Citation
	}

	if !req.Quantity.IsPositive() {
		e.log.Warn().Str("work_id", req.WorkID).Str("quantity", req.Quantity.String()).Msg("non-positive quantity, item zeroed")
		item.Quantity = decimal.Zero
		return item
	}

	rule := e.Resolve(req.WorkID)
	if req.OverridePrice != nil {
		rule = PricingRule{Kind: RuleFlat, Price: *req.OverridePrice}
	}

	item.Coefficients = e.Compose(wt, ctx, req.ExtraCoefficients)
	item.TotalCoefficient = TotalCoefficient(item.Coefficients)

	switch rule.Kind {
	case RuleTwoComponent:
		// СПреког = ПЗ1п + ПЗ2п × S: обе части масштабируются одним
		// итоговым коэффициентом, постоянная часть не умножается на объём.
		item.BasePrice = rule.Component.PerUnit
		item.UnitCost = round2(rule.Component.PerUnit.Mul(item.TotalCoefficient))
		perUnitTotal := round2(item.UnitCost.Mul(req.Quantity))
		fixedScaled := round2(rule.Component.Fixed.Mul(item.TotalCoefficient))
		item.TotalCost = perUnitTotal.Add(fixedScaled)
		if item.Formula == "" {
			item.Formula = fmt.Sprintf("ПЗ1п(%s) + ПЗ2п(%s) × %s",
				money0(rule.Component.Fixed), money0(rule.Component.PerUnit), req.Quantity.String())
		}
	case RuleReportTier:
		// Без базы камеральных работ расценка отчёта неизвестна;
		// свод подставляет её через OverridePrice.
		e.log.Warn().Str("work_id", req.WorkID).Msg("report-priced item built without office base, using zero price")
	default:
		item.BasePrice = rule.Price
		item.UnitCost = round2(rule.Price.Mul(item.TotalCoefficient))
		item.TotalCost = round2(item.UnitCost.Mul(req.Quantity))
		if item.Formula == "" {
			item.Formula = fmt.Sprintf("%s × %s", money0(rule.Price), req.Quantity.String())
		}
	}

	return item
}
