package model

import "github.com/shopspring/decimal"

type WorkCategory string

const (
	WorkCategoryField      WorkCategory = "field"
	WorkCategoryLaboratory WorkCategory = "laboratory"
	WorkCategoryOffice     WorkCategory = "office"
)

type WorkGroup string

const (
	WorkGroupReconnaissance WorkGroup = "reconnaissance"
	WorkGroupDrilling       WorkGroup = "drilling"
	WorkGroupFieldTests     WorkGroup = "field_tests"
	WorkGroupLaboratory     WorkGroup = "laboratory"
	WorkGroupCameral        WorkGroup = "cameral"
	WorkGroupProgram        WorkGroup = "program"
	WorkGroupReport         WorkGroup = "report"
)

// WorkType — справочная позиция каталога видов работ. Создаётся при загрузке
// каталога и далее не изменяется.
type WorkType struct {
	ID       string       `json:"id"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Category WorkCategory `json:"category"`
	Group    WorkGroup    `json:"group"`
	Unit     string       `json:"unit"`

	// Ровно один из трёх способов ценообразования:
	// фиксированная расценка, ссылка на двухкомпонентную таблицу (ПЗ1п/ПЗ2п)
	// или расчёт по Таблице 65 (технический отчёт).
	BasePrice     decimal.Decimal `json:"base_price"`
	PriceRef      string          `json:"price_ref,omitempty"`
	ReportPricing bool            `json:"report_pricing,omitempty"`

	// Диаметр свыше 160 мм меняет коэффициент К1 для буровых работ.
	DiameterOver160 bool `json:"diameter_over_160,omitempty"`

	SoilCoefficients map[string]decimal.Decimal `json:"soil_coefficients,omitempty"`
	Citation         string                     `json:"citation"`
}

// PriceComponent — компоненты двухкомпонентной формулы:
// стоимость = Fixed + PerUnit × количество.
type PriceComponent struct {
	Fixed   decimal.Decimal `json:"fixed"`
	PerUnit decimal.Decimal `json:"per_unit"`
}

// ReportTier — ступень Таблицы 65: верхняя граница базы камеральных работ
// (ноль — открытая последняя ступень), расценка и подпись диапазона.
type ReportTier struct {
	UpTo  decimal.Decimal `json:"up_to"`
	Price decimal.Decimal `json:"price"`
	Label string          `json:"label"`
}
