package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

type Generator struct {
	fontName string
	fontData []byte
}

// NewGenerator читает шрифт с кириллицей из файла; без него gofpdf
// не может печатать русский текст.
func NewGenerator(fontPath string) (*Generator, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font %s: %w", fontPath, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: "EstimateSans", fontData: data}, nil
}

func (g *Generator) Generate(est model.Estimate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
	pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "ЛОКАЛЬНАЯ СМЕТА", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, "на инженерно-геологические изыскания (НЗ №281/пр)", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	g.addProjectBlock(pdf, est)
	pdf.Ln(3)

	headers := []string{"№", "Наименование работ", "Ед. изм.", "Кол-во", "Обоснование", "Стоимость, руб."}
	colWidths := []float64{10, 110, 22, 20, 65, 40}
	g.drawRow(pdf, headers, colWidths, true)

	itemNum := 1
	for _, section := range []struct {
		Category model.WorkCategory
		Title    string
		Subtotal decimal.Decimal
	}{
		{model.WorkCategoryField, "Полевые работы", est.SubtotalField},
		{model.WorkCategoryLaboratory, "Лабораторные работы", est.SubtotalLaboratory},
		{model.WorkCategoryOffice, "Камеральные работы", est.SubtotalOffice},
	} {
		items := filterItems(est.Items, section.Category)
		if len(items) == 0 {
			continue
		}

		pdf.SetFont(g.fontName, "B", 9)
		pdf.CellFormat(sumWidths(colWidths), 7, section.Title, "1", 1, "L", false, 0, "")

		for _, item := range items {
			g.drawRow(pdf, []string{
				fmt.Sprintf("%d", itemNum),
				item.Name,
				item.Unit,
				item.Quantity.String(),
				item.Citation,
				item.TotalCost.StringFixed(2),
			}, colWidths, false)
			itemNum++
		}

		pdf.SetFont(g.fontName, "B", 9)
		pdf.CellFormat(sumWidths(colWidths[:5]), 7, fmt.Sprintf("Итого: %s", strings.ToLower(section.Title)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 7, section.Subtotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	if len(est.AdditionalCosts) > 0 {
		pdf.SetFont(g.fontName, "B", 9)
		pdf.CellFormat(sumWidths(colWidths), 7, "Дополнительные затраты", "1", 1, "L", false, 0, "")
		for i, cost := range est.AdditionalCosts {
			g.drawRow(pdf, []string{
				fmt.Sprintf("ДЗ-%d", i+1),
				cost.Name,
				"-",
				"-",
				cost.Basis,
				cost.Value.StringFixed(2),
			}, colWidths, false)
		}
	}

	pdf.Ln(3)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Итого базовые затраты (СП + СЛ + СК): %s руб.", est.BaseTotal.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Итого с учётом дополнительных затрат: %s руб.", est.TotalWithAdditions.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Индекс пересчёта: %s, коэффициент договорной цены: %s",
		est.PriceIndex.StringFixed(2), est.ContractCoefficient.StringFixed(3)), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("ВСЕГО по смете: %s руб.", est.FinalTotal.StringFixed(2)), "", 1, "R", false, 0, "")

	pdf.Ln(5)
	pdf.SetFont(g.fontName, "", 10)
	signatureBlock(pdf, g.fontName, "Заказчик", est.Customer)
	signatureBlock(pdf, g.fontName, "Подрядчик", est.Contractor)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) addProjectBlock(pdf *gofpdf.Fpdf, est model.Estimate) {
	pdf.SetFont(g.fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Проект: %s", safeValue(est.ProjectName)),
		fmt.Sprintf("Шифр: %s   Объект: %s", safeValue(est.ProjectCode), safeValue(est.ObjectName)),
		fmt.Sprintf("Заказчик: %s   Подрядчик: %s", safeValue(est.Customer), safeValue(est.Contractor)),
		fmt.Sprintf("Регион: %s   Дата составления: %s", safeValue(est.Region), formatDate(est.DateCreated)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func (g *Generator) drawRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 8)
	for i, col := range cols {
		align := "L"
		if i == 0 || i == 2 || i == 3 {
			align = "C"
		}
		if i == len(cols)-1 {
			align = "R"
		}
		// Длинные наименования обрезаются под ширину колонки.
		pdf.CellFormat(widths[i], 7, truncate(pdf, col, widths[i]), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(pdf *gofpdf.Fpdf, value string, width float64) string {
	for pdf.GetStringWidth(value) > width-2 && len(value) > 0 {
		runes := []rune(value)
		value = string(runes[:len(runes)-1])
	}
	return value
}

func filterItems(items []model.WorkItem, category model.WorkCategory) []model.WorkItem {
	result := make([]model.WorkItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			result = append(result, item)
		}
	}
	return result
}

func sumWidths(widths []float64) float64 {
	total := 0.0
	for _, w := range widths {
		total += w
	}
	return total
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name)), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02.01.2006")
}
