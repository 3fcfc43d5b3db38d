package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/glavgeo/igi-estimates/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

var sections = []struct {
	Category model.WorkCategory
	Title    string
}{
	{model.WorkCategoryField, "ПОЛЕВЫЕ РАБОТЫ"},
	{model.WorkCategoryLaboratory, "ЛАБОРАТОРНЫЕ РАБОТЫ"},
	{model.WorkCategoryOffice, "КАМЕРАЛЬНЫЕ РАБОТЫ"},
}

func (g *Generator) Generate(est model.Estimate) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Смета ИГИ"
	file.SetSheetName("Sheet1", sheet)
	if err := g.writeEstimate(file, sheet, est); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeEstimate(file *excelize.File, sheet string, est model.Estimate) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "ЛОКАЛЬНАЯ СМЕТА")
	set("A2", "на инженерно-геологические изыскания")

	row := 4
	info := [][2]string{
		{"Проект:", est.ProjectName},
		{"Шифр:", orDash(est.ProjectCode)},
		{"Объект:", orDash(est.ObjectName)},
		{"Заказчик:", orDash(est.Customer)},
		{"Подрядчик:", orDash(est.Contractor)},
		{"Регион:", orDash(est.Region)},
		{"Дата:", formatDate(est.DateCreated)},
		{"Индекс пересчёта:", est.PriceIndex.StringFixed(2)},
	}
	for _, pair := range info {
		set(fmt.Sprintf("A%d", row), pair[0])
		set(fmt.Sprintf("B%d", row), pair[1])
		row++
	}
	row++

	headers := []string{"№ п/п", "Наименование работ", "Ед. изм.", "Кол-во", "Обоснование", "Расчёт", "Стоимость, руб."}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		set(cell, header)
	}
	row++

	itemNum := 1
	for _, section := range sections {
		items := itemsByCategory(est.Items, section.Category)
		if len(items) == 0 {
			continue
		}

		set(fmt.Sprintf("A%d", row), section.Title)
		row++

		subtotal := decimal.Zero
		for _, item := range items {
			set(fmt.Sprintf("A%d", row), itemNum)
			set(fmt.Sprintf("B%d", row), item.Name)
			set(fmt.Sprintf("C%d", row), item.Unit)
			set(fmt.Sprintf("D%d", row), item.Quantity.InexactFloat64())
			set(fmt.Sprintf("E%d", row), item.Citation)
			set(fmt.Sprintf("F%d", row), item.Formula)
			set(fmt.Sprintf("G%d", row), item.TotalCost.InexactFloat64())
			subtotal = subtotal.Add(item.TotalCost)
			itemNum++
			row++
		}

		set(fmt.Sprintf("A%d", row), fmt.Sprintf("Итого по разделу «%s»:", section.Title))
		set(fmt.Sprintf("G%d", row), subtotal.InexactFloat64())
		row++
	}

	row++
	set(fmt.Sprintf("A%d", row), "ИТОГО базовые затраты (СП + СЛ + СК):")
	set(fmt.Sprintf("G%d", row), est.BaseTotal.InexactFloat64())
	row++

	if len(est.AdditionalCosts) > 0 {
		set(fmt.Sprintf("A%d", row), "Дополнительные затраты:")
		row++
		for i, cost := range est.AdditionalCosts {
			set(fmt.Sprintf("A%d", row), fmt.Sprintf("ДЗ-%d", i+1))
			set(fmt.Sprintf("B%d", row), cost.Name)
			set(fmt.Sprintf("C%d", row), "-")
			set(fmt.Sprintf("D%d", row), "-")
			set(fmt.Sprintf("E%d", row), cost.Basis)
			set(fmt.Sprintf("F%d", row), cost.Formula)
			set(fmt.Sprintf("G%d", row), cost.Value.InexactFloat64())
			row++
		}
	}

	set(fmt.Sprintf("A%d", row), "ИТОГО с учетом дополнительных затрат:")
	set(fmt.Sprintf("G%d", row), est.TotalWithAdditions.InexactFloat64())
	row++

	set(fmt.Sprintf("A%d", row), fmt.Sprintf("ИТОГО с индексом пересчёта (%s):", est.PriceIndex.StringFixed(2)))
	indexed := est.TotalWithAdditions.Mul(est.PriceIndex).Round(2)
	set(fmt.Sprintf("G%d", row), indexed.InexactFloat64())
	row++

	if !est.ContractCoefficient.Equal(decimal.NewFromInt(1)) {
		set(fmt.Sprintf("A%d", row), fmt.Sprintf("Коэффициент договорной цены (%s):", est.ContractCoefficient.StringFixed(3)))
		row++
	}

	set(fmt.Sprintf("A%d", row), "ВСЕГО по смете:")
	set(fmt.Sprintf("G%d", row), est.FinalTotal.InexactFloat64())

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 50)
	_ = file.SetColWidth(sheet, "C", "C", 10)
	_ = file.SetColWidth(sheet, "D", "D", 10)
	_ = file.SetColWidth(sheet, "E", "E", 24)
	_ = file.SetColWidth(sheet, "F", "F", 28)
	_ = file.SetColWidth(sheet, "G", "G", 18)
	return nil
}

func itemsByCategory(items []model.WorkItem, category model.WorkCategory) []model.WorkItem {
	result := make([]model.WorkItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			result = append(result, item)
		}
	}
	return result
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}
