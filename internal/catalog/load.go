package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

var complexityCategories = []string{"I", "II", "III"}

type workTypesFile struct {
	WorkTypes []workTypeRaw `json:"work_types"`
}

type workTypeRaw struct {
	ID               string                     `json:"id"`
	Code             string                     `json:"code"`
	Name             string                     `json:"name"`
	Category         model.WorkCategory         `json:"category"`
	Group            model.WorkGroup            `json:"group"`
	Unit             string                     `json:"unit"`
	BasePrice        decimal.Decimal            `json:"base_price"`
	PriceRef         string                     `json:"price_ref"`
	ReportPricing    bool                       `json:"report_pricing"`
	DiameterOver160  bool                       `json:"diameter_over_160"`
	SoilCoefficients map[string]decimal.Decimal `json:"soil_coefficients"`
	Citation         string                     `json:"citation"`
}

type priceTablesFile struct {
	TwoComponent    map[string]model.PriceComponent `json:"two_component"`
	TechnicalReport map[string][]reportTierRaw      `json:"technical_report"`
}

type reportTierRaw struct {
	UpTo  decimal.Decimal `json:"up_to"`
	Price decimal.Decimal `json:"price"`
	Label string          `json:"label"`
}

type coefficientsFile struct {
	ClimateK2   map[string]decimal.Decimal `json:"climate_k2"`
	LocalWorkK1 map[string]decimal.Decimal `json:"local_work_k1"`

	RegimePercent decimal.Decimal `json:"regime_percent"`

	RegionalAllowances struct {
		LaborShareField decimal.Decimal            `json:"labor_share_field"`
		OtherShareField decimal.Decimal            `json:"other_share_field"`
		LaborShareLab   decimal.Decimal            `json:"labor_share_lab"`
		OtherShareLab   decimal.Decimal            `json:"other_share_lab"`
		Coefficients    map[string]decimal.Decimal `json:"coefficients"`
	} `json:"regional_allowances"`

	UnfavorableDurations map[string]decimal.Decimal `json:"unfavorable_durations"`

	UnfavorablePeriod        rangeTableRaw `json:"unfavorable_period"`
	TravelVehicle            rangeTableRaw `json:"travel_vehicle"`
	TravelVehicleSounding    rangeTableRaw `json:"travel_vehicle_sounding"`
	TravelNonVehicle         rangeTableRaw `json:"travel_non_vehicle"`
	TravelNonVehicleSounding rangeTableRaw `json:"travel_non_vehicle_sounding"`
	Organization             rangeTableRaw `json:"organization"`
}

type rangeTableRaw struct {
	Scheme BandScheme    `json:"scheme"`
	Rows   []rangeRowRaw `json:"rows"`
}

type rangeRowRaw struct {
	Key      string                     `json:"key"`
	From     float64                    `json:"from"`
	To       float64                    `json:"to"`
	Midpoint float64                    `json:"midpoint"`
	Percents map[string]decimal.Decimal `json:"percents"`
}

type templatesFile struct {
	Templates []Template `json:"templates"`
}

// Load читает встроенные справочники и валидирует их. Любая ошибка здесь
// фатальна для сервиса: считать по неполному каталогу нельзя.
func Load() (*Catalog, error) {
	var workTypes workTypesFile
	if err := readJSON("data/work_types.json", &workTypes); err != nil {
		return nil, err
	}
	var priceTables priceTablesFile
	if err := readJSON("data/price_tables.json", &priceTables); err != nil {
		return nil, err
	}
	var coefficients coefficientsFile
	if err := readJSON("data/coefficients.json", &coefficients); err != nil {
		return nil, err
	}
	var templates templatesFile
	if err := readJSON("data/templates.json", &templates); err != nil {
		return nil, err
	}
	return build(workTypes, priceTables, coefficients, templates)
}

func readJSON(name string, target interface{}) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func build(workTypes workTypesFile, priceTables priceTablesFile, coefficients coefficientsFile, templates templatesFile) (*Catalog, error) {
	cat := &Catalog{
		workTypes:            make(map[string]*model.WorkType, len(workTypes.WorkTypes)),
		twoComponent:         priceTables.TwoComponent,
		reportTiers:          make(map[string][]model.ReportTier, len(priceTables.TechnicalReport)),
		climate:              coefficients.ClimateK2,
		localWork:            make(map[K1Kind]decimal.Decimal, len(coefficients.LocalWorkK1)),
		regimePercent:        coefficients.RegimePercent,
		regionalCoefficients: coefficients.RegionalAllowances.Coefficients,
		unfavorableDurations: coefficients.UnfavorableDurations,
		travel:               make(map[travelKey]TravelTable, 4),
		templates:            templates.Templates,
	}

	cat.shares = RegionalShares{
		LaborField: coefficients.RegionalAllowances.LaborShareField,
		OtherField: coefficients.RegionalAllowances.OtherShareField,
		LaborLab:   coefficients.RegionalAllowances.LaborShareLab,
		OtherLab:   coefficients.RegionalAllowances.OtherShareLab,
	}

	for _, raw := range workTypes.WorkTypes {
		if raw.ID == "" {
			return nil, fmt.Errorf("work type without id")
		}
		if _, exists := cat.workTypes[raw.ID]; exists {
			return nil, fmt.Errorf("duplicate work type %q", raw.ID)
		}
		switch raw.Category {
		case model.WorkCategoryField, model.WorkCategoryLaboratory, model.WorkCategoryOffice:
		default:
			return nil, fmt.Errorf("work type %q: unknown category %q", raw.ID, raw.Category)
		}
		if raw.PriceRef != "" {
			if _, ok := priceTables.TwoComponent[raw.PriceRef]; !ok {
				return nil, fmt.Errorf("work type %q: price_ref %q not found", raw.ID, raw.PriceRef)
			}
		}
		if raw.BasePrice.IsNegative() {
			return nil, fmt.Errorf("work type %q: negative base price", raw.ID)
		}
		wt := &model.WorkType{
			ID:               raw.ID,
			Code:             raw.Code,
			Name:             raw.Name,
			Category:         raw.Category,
			Group:            raw.Group,
			Unit:             raw.Unit,
			BasePrice:        raw.BasePrice,
			PriceRef:         raw.PriceRef,
			ReportPricing:    raw.ReportPricing,
			DiameterOver160:  raw.DiameterOver160,
			SoilCoefficients: raw.SoilCoefficients,
			Citation:         raw.Citation,
		}
		cat.workTypes[raw.ID] = wt
		cat.order = append(cat.order, raw.ID)
	}

	for ref, component := range priceTables.TwoComponent {
		if component.Fixed.IsNegative() || component.PerUnit.IsNegative() {
			return nil, fmt.Errorf("two-component price %q: negative component", ref)
		}
	}

	for _, complexity := range complexityCategories {
		rawTiers, ok := priceTables.TechnicalReport[complexity]
		if !ok || len(rawTiers) == 0 {
			return nil, fmt.Errorf("technical report tiers missing for category %s", complexity)
		}
		tiers := make([]model.ReportTier, 0, len(rawTiers))
		previous := decimal.Zero
		for i, raw := range rawTiers {
			open := raw.UpTo.IsZero()
			if open && i != len(rawTiers)-1 {
				return nil, fmt.Errorf("technical report %s: open tier before the last row", complexity)
			}
			if !open && raw.UpTo.LessThanOrEqual(previous) {
				return nil, fmt.Errorf("technical report %s: tier bounds must ascend", complexity)
			}
			if !open {
				previous = raw.UpTo
			}
			tiers = append(tiers, model.ReportTier{UpTo: raw.UpTo, Price: raw.Price, Label: raw.Label})
		}
		cat.reportTiers[complexity] = tiers
	}

	for key, value := range coefficients.LocalWorkK1 {
		kind := K1Kind(key)
		switch kind {
		case K1DrillingLe160, K1DrillingGt160, K1Other:
			cat.localWork[kind] = value
		default:
			return nil, fmt.Errorf("local_work_k1: unknown kind %q", key)
		}
	}

	tables := []struct {
		name   string
		raw    rangeTableRaw
		target *RangeTable
	}{
		{"unfavorable_period", coefficients.UnfavorablePeriod, &cat.unfavorable},
		{"organization", coefficients.Organization, &cat.organization},
	}
	for _, t := range tables {
		table, err := buildRangeTable(t.name, t.raw)
		if err != nil {
			return nil, err
		}
		*t.target = table
	}

	travelTables := []struct {
		name      string
		raw       rangeTableRaw
		key       travelKey
		label     string
		paragraph string
	}{
		{"travel_vehicle", coefficients.TravelVehicle, travelKey{model.TransportVehicle, false}, "Таблица 4", "п.29"},
		{"travel_vehicle_sounding", coefficients.TravelVehicleSounding, travelKey{model.TransportVehicle, true}, "Таблица 5", "п.30"},
		{"travel_non_vehicle", coefficients.TravelNonVehicle, travelKey{model.TransportNonVehicle, false}, "Таблица 6", "п.33"},
		{"travel_non_vehicle_sounding", coefficients.TravelNonVehicleSounding, travelKey{model.TransportNonVehicle, true}, "Таблица 7", "п.34"},
	}
	for _, t := range travelTables {
		table, err := buildRangeTable(t.name, t.raw)
		if err != nil {
			return nil, err
		}
		stored := table
		cat.travel[t.key] = TravelTable{Table: &stored, Name: t.label, Paragraph: t.paragraph}
	}

	for _, tpl := range cat.templates {
		for _, item := range tpl.Items {
			if _, ok := cat.workTypes[item.WorkID]; !ok {
				return nil, fmt.Errorf("template %q: unknown work type %q", tpl.ID, item.WorkID)
			}
		}
	}

	return cat, nil
}

func buildRangeTable(name string, raw rangeTableRaw) (RangeTable, error) {
	switch raw.Scheme {
	case SchemeGeneral, SchemeTravel:
	default:
		return RangeTable{}, fmt.Errorf("table %s: unknown band scheme %q", name, raw.Scheme)
	}
	if len(raw.Rows) == 0 {
		return RangeTable{}, fmt.Errorf("table %s: no rows", name)
	}

	allowed := make(map[CostBand]struct{})
	for _, band := range schemeBands(raw.Scheme) {
		allowed[band] = struct{}{}
	}

	table := RangeTable{Scheme: raw.Scheme, Rows: make([]RangeRow, 0, len(raw.Rows))}
	previousTo := 0.0
	for i, row := range raw.Rows {
		open := row.To == 0
		if open && i != len(raw.Rows)-1 {
			return RangeTable{}, fmt.Errorf("table %s: open row %q before the last", name, row.Key)
		}
		if row.From != previousTo {
			return RangeTable{}, fmt.Errorf("table %s: row %q does not continue previous range", name, row.Key)
		}
		if !open {
			previousTo = row.To
		}
		percents := make(map[CostBand]decimal.Decimal, len(row.Percents))
		for key, value := range row.Percents {
			band := CostBand(key)
			if _, ok := allowed[band]; !ok {
				return RangeTable{}, fmt.Errorf("table %s, row %q: unknown cost band %q", name, row.Key, key)
			}
			percents[band] = value
		}
		table.Rows = append(table.Rows, RangeRow{
			Key:      row.Key,
			From:     row.From,
			To:       row.To,
			Midpoint: row.Midpoint,
			Percents: percents,
		})
	}
	return table, nil
}
