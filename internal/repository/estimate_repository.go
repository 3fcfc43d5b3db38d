package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glavgeo/igi-estimates/internal/model"
)

// estimatePayload — состав сметы, хранимый одним JSONB-полем. Реквизиты
// и итоги дублируются колонками заголовка для фильтрации и списков.
type estimatePayload struct {
	Items           []model.WorkItem       `json:"items"`
	AdditionalCosts []model.AdditionalCost `json:"additional_costs"`
}

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

type estimateRow struct {
	ID                  uuid.UUID
	ProjectName         string
	ProjectCode         string
	ObjectName          string
	Customer            string
	Contractor          string
	Region              string
	BaseCity            string
	DateCreated         time.Time
	PriceIndex          decimal.Decimal
	ContractCoefficient decimal.Decimal
	SubtotalField       decimal.Decimal
	SubtotalLaboratory  decimal.Decimal
	SubtotalOffice      decimal.Decimal
	BaseTotal           decimal.Decimal
	TotalWithAdditions  decimal.Decimal
	FinalTotal          decimal.Decimal
	Payload             []byte
	CreatedByOrgID      uuid.UUID
	CreatedByUserID     uuid.UUID
}

const estimateColumns = `
	id,
	project_name,
	COALESCE(project_code, '') AS project_code,
	COALESCE(object_name, '') AS object_name,
	COALESCE(customer, '') AS customer,
	COALESCE(contractor, '') AS contractor,
	COALESCE(region, '') AS region,
	COALESCE(base_city, '') AS base_city,
	date_created,
	price_index,
	contract_coefficient,
	subtotal_field,
	subtotal_laboratory,
	subtotal_office,
	base_total,
	total_with_additions,
	final_total,
	payload,
	created_by_org_id,
	created_by_user_id
`

func (r *EstimateRepository) Save(ctx context.Context, est model.Estimate) (*model.Estimate, error) {
	payload, err := json.Marshal(estimatePayload{
		Items:           est.Items,
		AdditionalCosts: est.AdditionalCosts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	err = r.db.WithContext(ctx).Raw(`
		INSERT INTO estimates (
			id,
			project_name,
			project_code,
			object_name,
			customer,
			contractor,
			region,
			base_city,
			date_created,
			price_index,
			contract_coefficient,
			subtotal_field,
			subtotal_laboratory,
			subtotal_office,
			base_total,
			total_with_additions,
			final_total,
			payload,
			created_by_org_id,
			created_by_user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		est.ID,
		est.ProjectName,
		est.ProjectCode,
		est.ObjectName,
		est.Customer,
		est.Contractor,
		est.Region,
		est.BaseCity,
		est.DateCreated,
		est.PriceIndex,
		est.ContractCoefficient,
		est.SubtotalField,
		est.SubtotalLaboratory,
		est.SubtotalOffice,
		est.BaseTotal,
		est.TotalWithAdditions,
		est.FinalTotal,
		payload,
		est.CreatedByOrgID,
		est.CreatedByUserID,
	).Scan(&id).Error
	if err != nil {
		return nil, err
	}

	est.ID = id
	return &est, nil
}

func (r *EstimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var row estimateRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+estimateColumns+`
		FROM estimates
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToEstimate(row)
}

// ListFilter — параметры выборки смет организации.
type ListFilter struct {
	OrgID       uuid.UUID
	ProjectName string
	Limit       int
	Offset      int
}

func (r *EstimateRepository) List(ctx context.Context, filter ListFilter) ([]model.Estimate, error) {
	query := `
		SELECT ` + estimateColumns + `
		FROM estimates
		WHERE created_by_org_id = ?
	`
	args := []interface{}{filter.OrgID}

	if name := strings.TrimSpace(filter.ProjectName); name != "" {
		query += " AND project_name ILIKE ?"
		args = append(args, "%"+name+"%")
	}

	query += " ORDER BY date_created DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	var rows []estimateRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	estimates := make([]model.Estimate, 0, len(rows))
	for _, row := range rows {
		est, err := rowToEstimate(row)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, *est)
	}
	return estimates, nil
}

func (r *EstimateRepository) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM estimates WHERE id = ? AND created_by_org_id = ?
	`, id, orgID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func rowToEstimate(row estimateRow) (*model.Estimate, error) {
	var payload estimatePayload
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	return &model.Estimate{
		ID:                  row.ID,
		ProjectName:         row.ProjectName,
		ProjectCode:         row.ProjectCode,
		ObjectName:          row.ObjectName,
		Customer:            row.Customer,
		Contractor:          row.Contractor,
		Region:              row.Region,
		BaseCity:            row.BaseCity,
		DateCreated:         row.DateCreated,
		Items:               payload.Items,
		AdditionalCosts:     payload.AdditionalCosts,
		PriceIndex:          row.PriceIndex,
		ContractCoefficient: row.ContractCoefficient,
		SubtotalField:       row.SubtotalField,
		SubtotalLaboratory:  row.SubtotalLaboratory,
		SubtotalOffice:      row.SubtotalOffice,
		BaseTotal:           row.BaseTotal,
		TotalWithAdditions:  row.TotalWithAdditions,
		FinalTotal:          row.FinalTotal,
		CreatedByOrgID:      row.CreatedByOrgID,
		CreatedByUserID:     row.CreatedByUserID,
	}, nil
}
