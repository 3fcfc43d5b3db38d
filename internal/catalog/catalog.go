// Package catalog хранит нормативные справочники: виды работ, ценовые
// таблицы и таблицы коэффициентов. Справочники загружаются один раз при
// старте и далее только читаются, поэтому безопасны для параллельного
// доступа без блокировок.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

// CostBand — стоимостной диапазон подытога полевых работ, колонка
// процентной таблицы.
type CostBand string

const (
	BandUpTo300k   CostBand = "up_to_300k"
	BandUpTo500k   CostBand = "up_to_500k"
	BandUpTo1000k  CostBand = "up_to_1000k"
	BandUpTo2000k  CostBand = "up_to_2000k"
	BandUpTo5000k  CostBand = "up_to_5000k"
	BandUpTo10000k CostBand = "up_to_10000k"
	BandOver10000k CostBand = "over_10000k"
)

// BandScheme — набор колонок таблицы. Таблицы проезда с зондированием
// используют укрупнённую сетку диапазонов.
type BandScheme string

const (
	SchemeGeneral BandScheme = "general"
	SchemeTravel  BandScheme = "travel"
)

var generalBands = []struct {
	Band CostBand
	UpTo int64 // рубли
}{
	{BandUpTo300k, 300_000},
	{BandUpTo500k, 500_000},
	{BandUpTo1000k, 1_000_000},
	{BandUpTo2000k, 2_000_000},
	{BandUpTo5000k, 5_000_000},
	{BandUpTo10000k, 10_000_000},
}

var travelBands = []struct {
	Band CostBand
	UpTo int64
}{
	{BandUpTo500k, 500_000},
	{BandUpTo2000k, 2_000_000},
	{BandUpTo5000k, 5_000_000},
	{BandUpTo10000k, 10_000_000},
}

func schemeBands(scheme BandScheme) []CostBand {
	switch scheme {
	case SchemeTravel:
		bands := make([]CostBand, 0, len(travelBands)+1)
		for _, b := range travelBands {
			bands = append(bands, b.Band)
		}
		return append(bands, BandOver10000k)
	default:
		bands := make([]CostBand, 0, len(generalBands)+1)
		for _, b := range generalBands {
			bands = append(bands, b.Band)
		}
		return append(bands, BandOver10000k)
	}
}

// GeneralCostBand выбирает стоимостной диапазон по общей сетке.
func GeneralCostBand(cost decimal.Decimal) CostBand {
	for _, b := range generalBands {
		if cost.LessThanOrEqual(decimal.NewFromInt(b.UpTo)) {
			return b.Band
		}
	}
	return BandOver10000k
}

// TravelCostBand выбирает стоимостной диапазон по сетке таблиц проезда
// с зондированием.
func TravelCostBand(cost decimal.Decimal) CostBand {
	for _, b := range travelBands {
		if cost.LessThanOrEqual(decimal.NewFromInt(b.UpTo)) {
			return b.Band
		}
	}
	return BandOver10000k
}

// CostBandFor — диапазон по схеме таблицы.
func (t *RangeTable) CostBandFor(cost decimal.Decimal) CostBand {
	if t.Scheme == SchemeTravel {
		return TravelCostBand(cost)
	}
	return GeneralCostBand(cost)
}

// RangeRow — строка процентной таблицы: диапазон аргумента (расстояние в км
// либо продолжительность в месяцах), опорная точка для интерполяции и
// проценты по стоимостным диапазонам.
type RangeRow struct {
	Key      string
	From     float64
	To       float64 // 0 — открытый верхний диапазон
	Midpoint float64
	Percents map[CostBand]decimal.Decimal
}

func (r RangeRow) contains(x float64) bool {
	if r.To == 0 {
		return x >= r.From
	}
	return x >= r.From && x < r.To
}

// RangeTable — процентная таблица «диапазон × стоимостной диапазон».
type RangeTable struct {
	Scheme BandScheme
	Rows   []RangeRow
}

// PercentAt — точный табличный процент без интерполяции: строка по
// вхождению x в диапазон, значение по колонке. Выход за пределы таблицы
// прижимается к крайней строке.
func (t *RangeTable) PercentAt(x float64, band CostBand) decimal.Decimal {
	if len(t.Rows) == 0 {
		return decimal.Zero
	}
	for _, row := range t.Rows {
		if row.contains(x) {
			return row.Percents[band]
		}
	}
	if x < t.Rows[0].From {
		return t.Rows[0].Percents[band]
	}
	return t.Rows[len(t.Rows)-1].Percents[band]
}

// Point — опорная точка интерполяции.
type Point struct {
	X float64
	Y decimal.Decimal
}

// Points — опорные точки (середина диапазона, процент) для колонки band.
// Строки без значения в этой колонке пропускаются.
func (t *RangeTable) Points(band CostBand) []Point {
	points := make([]Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		value, ok := row.Percents[band]
		if !ok {
			continue
		}
		points = append(points, Point{X: row.Midpoint, Y: value})
	}
	return points
}

// K1Kind — вид работ для коэффициента К1 (работы по месту постоянной работы).
type K1Kind string

const (
	K1DrillingLe160 K1Kind = "drilling_sounding_le160"
	K1DrillingGt160 K1Kind = "drilling_gt160"
	K1Other         K1Kind = "other"
)

// TravelTable — таблица проезда с реквизитами для обоснования.
type TravelTable struct {
	Table     *RangeTable
	Name      string
	Paragraph string
}

// RegionalShares — доли ФОТ и прочих затрат для районных выплат.
type RegionalShares struct {
	LaborField decimal.Decimal
	OtherField decimal.Decimal
	LaborLab   decimal.Decimal
	OtherLab   decimal.Decimal
}

// TemplateItem — позиция типового шаблона сметы.
type TemplateItem struct {
	WorkID   string          `json:"work_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Template — типовой шаблон сметы.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Items       []TemplateItem `json:"items"`
}

type Catalog struct {
	workTypes map[string]*model.WorkType
	order     []string

	twoComponent map[string]model.PriceComponent
	reportTiers  map[string][]model.ReportTier

	climate       map[string]decimal.Decimal
	localWork     map[K1Kind]decimal.Decimal
	regimePercent decimal.Decimal
	shares        RegionalShares

	regionalCoefficients map[string]decimal.Decimal
	unfavorableDurations map[string]decimal.Decimal

	unfavorable  RangeTable
	travel       map[travelKey]TravelTable
	organization RangeTable

	templates []Template
}

type travelKey struct {
	Mode     model.TransportMode
	Sounding bool
}

// WorkType возвращает вид работы по идентификатору.
func (c *Catalog) WorkType(id string) (*model.WorkType, bool) {
	wt, ok := c.workTypes[id]
	return wt, ok
}

// WorkTypes — виды работ в порядке каталога, опционально по категории.
func (c *Catalog) WorkTypes(category model.WorkCategory) []model.WorkType {
	result := make([]model.WorkType, 0, len(c.order))
	for _, id := range c.order {
		wt := c.workTypes[id]
		if category != "" && wt.Category != category {
			continue
		}
		result = append(result, *wt)
	}
	return result
}

// ClimateCoefficient — К2 по климатической зоне, 1 для неизвестной зоны.
func (c *Catalog) ClimateCoefficient(zone string) decimal.Decimal {
	if value, ok := c.climate[zone]; ok {
		return value
	}
	return decimal.NewFromInt(1)
}

// LocalWorkCoefficient — К1 по виду работ.
func (c *Catalog) LocalWorkCoefficient(kind K1Kind) decimal.Decimal {
	if value, ok := c.localWork[kind]; ok {
		return value
	}
	return decimal.NewFromInt(1)
}

func (c *Catalog) RegimePercent() decimal.Decimal { return c.regimePercent }

func (c *Catalog) Shares() RegionalShares { return c.shares }

// RegionalCoefficient — районный коэффициент ПДЗр. Сначала точное
// совпадение, затем поиск по вхождению базового имени региона;
// 1 — если регион не найден.
func (c *Catalog) RegionalCoefficient(region string) decimal.Decimal {
	if region == "" {
		return decimal.NewFromInt(1)
	}
	if value, ok := c.regionalCoefficients[region]; ok {
		return value
	}
	for name, value := range c.regionalCoefficients {
		if strings.Contains(region, name) || strings.Contains(name, region) {
			return value
		}
	}
	return decimal.NewFromInt(1)
}

// UnfavorableDuration — продолжительность неблагоприятного периода в месяцах,
// 6 по умолчанию.
func (c *Catalog) UnfavorableDuration(region string) decimal.Decimal {
	if value, ok := c.unfavorableDurations[region]; ok {
		return value
	}
	return decimal.NewFromInt(6)
}

// Regions — отсортированный список регионов.
func (c *Catalog) Regions() []string {
	regions := make([]string, 0, len(c.unfavorableDurations))
	for name := range c.unfavorableDurations {
		regions = append(regions, name)
	}
	sort.Strings(regions)
	return regions
}

// TwoComponent — компоненты ПЗ1п/ПЗ2п по ключу ценовой таблицы.
func (c *Catalog) TwoComponent(ref string) (model.PriceComponent, bool) {
	component, ok := c.twoComponent[ref]
	return component, ok
}

// ReportTiers — ступени Таблицы 65 для категории сложности.
func (c *Catalog) ReportTiers(complexity string) []model.ReportTier {
	return c.reportTiers[complexity]
}

// ReportPrice — расценка технического отчёта: первая ступень с верхней
// границей не меньше базы камеральных работ, открытая последняя — запасной
// вариант. Ступенчатая функция, без интерполяции.
func (c *Catalog) ReportPrice(base decimal.Decimal, complexity string) (decimal.Decimal, string, bool) {
	tiers := c.ReportTiers(complexity)
	if len(tiers) == 0 {
		return decimal.Zero, "", false
	}
	for _, tier := range tiers {
		if tier.UpTo.IsZero() {
			continue
		}
		if base.LessThanOrEqual(tier.UpTo) {
			return tier.Price, tier.Label, true
		}
	}
	last := tiers[len(tiers)-1]
	return last.Price, last.Label, true
}

// FindReportEntry — обратный поиск табличной расценки отчёта по точному
// совпадению стоимости; используется для подстановки обоснования.
func (c *Catalog) FindReportEntry(price decimal.Decimal) (*model.WorkType, bool) {
	for _, id := range c.order {
		wt := c.workTypes[id]
		if wt.Group != model.WorkGroupReport || wt.ReportPricing {
			continue
		}
		if wt.BasePrice.Equal(price) {
			return wt, true
		}
	}
	return nil, false
}

func (c *Catalog) UnfavorableTable() *RangeTable { return &c.unfavorable }

// TravelTableFor — таблица проезда по типу транспорта и наличию
// статического зондирования.
func (c *Catalog) TravelTableFor(mode model.TransportMode, sounding bool) TravelTable {
	return c.travel[travelKey{Mode: mode, Sounding: sounding}]
}

func (c *Catalog) OrganizationTable() *RangeTable { return &c.organization }

func (c *Catalog) Templates() []Template { return c.templates }

func (c *Catalog) Template(id string) (Template, bool) {
	for _, tpl := range c.templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}
