package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkItem — рассчитанная позиция сметы. Принадлежит одной смете,
// пересчитывается заново при каждом вычислении.
type WorkItem struct {
	WorkID   string       `json:"work_id"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Category WorkCategory `json:"category"`
	Unit     string       `json:"unit"`

	Quantity         decimal.Decimal            `json:"quantity"`
	BasePrice        decimal.Decimal            `json:"base_price"`
	Coefficients     map[string]decimal.Decimal `json:"coefficients,omitempty"`
	TotalCoefficient decimal.Decimal            `json:"total_coefficient"`
	UnitCost         decimal.Decimal            `json:"unit_cost"`
	TotalCost        decimal.Decimal            `json:"total_cost"`

	Citation string `json:"citation"`
	Formula  string `json:"formula,omitempty"`
}

// AdditionalCost — одна строка дополнительных затрат (ДЗ):
// процент от соответствующего подытога с обоснованием и формулой для печати.
type AdditionalCost struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
	Basis   string          `json:"basis"`
	Formula string          `json:"formula"`
}

type Estimate struct {
	ID          uuid.UUID `json:"id"`
	ProjectName string    `json:"project_name"`
	ProjectCode string    `json:"project_code,omitempty"`
	ObjectName  string    `json:"object_name,omitempty"`
	Customer    string    `json:"customer,omitempty"`
	Contractor  string    `json:"contractor,omitempty"`
	Region      string    `json:"region,omitempty"`
	BaseCity    string    `json:"base_city,omitempty"`
	DateCreated time.Time `json:"date_created"`

	Items           []WorkItem       `json:"items"`
	AdditionalCosts []AdditionalCost `json:"additional_costs"`

	PriceIndex          decimal.Decimal `json:"price_index"`
	ContractCoefficient decimal.Decimal `json:"contract_coefficient"`

	SubtotalField      decimal.Decimal `json:"subtotal_field"`
	SubtotalLaboratory decimal.Decimal `json:"subtotal_laboratory"`
	SubtotalOffice     decimal.Decimal `json:"subtotal_office"`
	BaseTotal          decimal.Decimal `json:"base_total"`
	TotalWithAdditions decimal.Decimal `json:"total_with_additions"`
	FinalTotal         decimal.Decimal `json:"final_total"`

	CreatedByOrgID  uuid.UUID `json:"created_by_org_id,omitempty"`
	CreatedByUserID uuid.UUID `json:"created_by_user_id,omitempty"`
}

// AdditionsTotal — сумма всех строк ДЗ.
func (e *Estimate) AdditionsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, cost := range e.AdditionalCosts {
		total = total.Add(cost.Value)
	}
	return total
}
