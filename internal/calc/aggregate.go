package calc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

// EstimateRequest — входные данные для свода сметы: реквизиты проекта,
// упорядоченный список позиций и условия производства работ.
type EstimateRequest struct {
	ProjectName string
	ProjectCode string
	ObjectName  string
	Customer    string
	Contractor  string
	BaseCity    string

	Items   []ItemRequest
	Context model.ProjectContext

	// Nil означает «не задано» и заменяется единицей; явный ноль допустим.
	PriceIndex          *decimal.Decimal
	ContractCoefficient *decimal.Decimal
}

// ComputeEstimate сводит смету за два прохода. Сначала рассчитываются все
// позиции, кроме отчёта, и набирается база камеральных работ; затем по этой
// базе определяется расценка отчёта (Таблица 65) и позиции отчёта встают на
// свои места в исходном порядке. Любая позиция группы «отчёт» расценивается
// заново по текущей базе, даже если запрошена конкретная табличная строка.
// Дополнительные затраты начисляются на подытоги полевых и лабораторных
// работ, итог масштабируется индексом цен и договорным коэффициентом.
func (e *Engine) ComputeEstimate(req EstimateRequest) model.Estimate {
	ctx := req.Context

	items := make([]model.WorkItem, len(req.Items))
	reportIdx := make([]int, 0, 1)
	officeBase := decimal.Zero

	for i, itemReq := range req.Items {
		wt, found := e.cat.WorkType(itemReq.WorkID)
		if found && wt.Group == model.WorkGroupReport {
			reportIdx = append(reportIdx, i)
			continue
		}
		items[i] = e.BuildItem(itemReq, ctx)
		if found && wt.Category == model.WorkCategoryOffice {
			officeBase = officeBase.Add(items[i].TotalCost)
		}
	}

	for _, i := range reportIdx {
		items[i] = e.buildReportItem(req.Items[i], officeBase, ctx)
	}

	est := model.Estimate{
		ID:          uuid.New(),
		ProjectName: req.ProjectName,
		ProjectCode: req.ProjectCode,
		ObjectName:  req.ObjectName,
		Customer:    req.Customer,
		Contractor:  req.Contractor,
		Region:      ctx.Region,
		BaseCity:    req.BaseCity,
		DateCreated: time.Now().UTC(),
		Items:       items,

		PriceIndex:          defaultOne(req.PriceIndex),
		ContractCoefficient: defaultOne(req.ContractCoefficient),
	}

	for _, item := range items {
		switch item.Category {
		case model.WorkCategoryField:
			est.SubtotalField = est.SubtotalField.Add(item.TotalCost)
		case model.WorkCategoryLaboratory:
			est.SubtotalLaboratory = est.SubtotalLaboratory.Add(item.TotalCost)
		case model.WorkCategoryOffice:
			est.SubtotalOffice = est.SubtotalOffice.Add(item.TotalCost)
		}
	}
	est.BaseTotal = est.SubtotalField.Add(est.SubtotalLaboratory).Add(est.SubtotalOffice)

	est.AdditionalCosts = e.AdditionalCosts(est.SubtotalField, est.SubtotalLaboratory, ctx)
	est.TotalWithAdditions = round2(est.BaseTotal.Add(est.AdditionsTotal()))

	indexed := round2(est.TotalWithAdditions.Mul(est.PriceIndex))
	est.FinalTotal = round2(indexed.Mul(est.ContractCoefficient))

	return est
}

// buildReportItem рассчитывает позицию технического отчёта по базе
// камеральных работ. Количество всегда 1. Если расценка точно совпадает с
// табличной строкой, позиция получает её реквизиты для обоснования, иначе
// остаётся общая строка отчёта со ссылкой на Таблицу 65.
func (e *Engine) buildReportItem(req ItemRequest, officeBase decimal.Decimal, ctx model.ProjectContext) model.WorkItem {
	price, label, ok := e.cat.ReportPrice(officeBase, ctx.Complexity)
	if !ok {
		e.log.Warn().Str("work_id", req.WorkID).Str("complexity", ctx.Complexity).Msg("no report tiers for complexity, report zeroed")
		req.Quantity = decimal.Zero
		return e.BuildItem(req, ctx)
	}

	req.Quantity = one
	req.OverridePrice = &price
	req.Formula = fmt.Sprintf("%s (Таблица 65, %s кат., %s)", money0(price), ctx.Complexity, label)
	item := e.BuildItem(req, ctx)

	if entry, found := e.cat.FindReportEntry(price); found {
		item.WorkID = entry.ID
		item.Code = entry.Code
		item.Name = entry.Name
		item.Citation = entry.Citation
	}
	return item
}

func defaultOne(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return one
	}
	return *value
}
