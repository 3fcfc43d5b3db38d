package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glavgeo/igi-estimates/internal/calc"
	"github.com/glavgeo/igi-estimates/internal/config"
	"github.com/glavgeo/igi-estimates/internal/model"
	"github.com/glavgeo/igi-estimates/internal/repository"
)

type EstimateRepo interface {
	Save(ctx context.Context, est model.Estimate) (*model.Estimate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	List(ctx context.Context, filter repository.ListFilter) ([]model.Estimate, error)
	Delete(ctx context.Context, id, orgID uuid.UUID) error
}

type ExcelGenerator interface {
	Generate(est model.Estimate) ([]byte, error)
}

type PDFGenerator interface {
	Generate(est model.Estimate) ([]byte, error)
}

type EstimateService struct {
	repo     EstimateRepo
	engine   *calc.Engine
	excel    ExcelGenerator
	pdf      PDFGenerator
	baseCity string
	log      zerolog.Logger
}

func NewEstimateService(
	repo EstimateRepo,
	engine *calc.Engine,
	excel ExcelGenerator,
	pdf PDFGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *EstimateService {
	return &EstimateService{
		repo:     repo,
		engine:   engine,
		excel:    excel,
		pdf:      pdf,
		baseCity: cfg.Estimates.BaseCity,
		log:      log,
	}
}

// ItemInput — одна позиция запроса на расчёт.
type ItemInput struct {
	WorkID            string
	Quantity          decimal.Decimal
	ExtraCoefficients map[string]decimal.Decimal
}

type CalculateInput struct {
	ProjectName string
	ProjectCode string
	ObjectName  string
	Customer    string
	Contractor  string

	// TemplateID подставляет позиции типового шаблона перед позициями
	// запроса; AutoCompanions добавляет сопутствующие камеральные работы.
	TemplateID     string
	Items          []ItemInput
	AutoCompanions bool

	Context model.ProjectContext

	// Nil — «не задано», единица по умолчанию; явный нулевой индекс допустим.
	PriceIndex          *decimal.Decimal
	ContractCoefficient *decimal.Decimal
}

// Calculate рассчитывает смету без сохранения.
func (s *EstimateService) Calculate(ctx context.Context, input CalculateInput) (*model.Estimate, error) {
	items := input.Items
	if input.TemplateID != "" {
		tpl, ok := s.engine.Catalog().Template(input.TemplateID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidInput, input.TemplateID)
		}
		templated := make([]ItemInput, 0, len(tpl.Items)+len(items))
		for _, tplItem := range tpl.Items {
			templated = append(templated, ItemInput{WorkID: tplItem.WorkID, Quantity: tplItem.Quantity})
		}
		items = append(templated, items...)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one work item is required", ErrInvalidInput)
	}
	if err := s.validate(items, input); err != nil {
		return nil, err
	}

	if input.AutoCompanions {
		items = s.ExpandRequests(items)
	}

	requests := make([]calc.ItemRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, calc.ItemRequest{
			WorkID:            item.WorkID,
			Quantity:          item.Quantity,
			ExtraCoefficients: item.ExtraCoefficients,
		})
	}

	est := s.engine.ComputeEstimate(calc.EstimateRequest{
		ProjectName:         input.ProjectName,
		ProjectCode:         input.ProjectCode,
		ObjectName:          input.ObjectName,
		Customer:            input.Customer,
		Contractor:          input.Contractor,
		BaseCity:            s.baseCity,
		Items:               requests,
		Context:             input.Context,
		PriceIndex:          input.PriceIndex,
		ContractCoefficient: input.ContractCoefficient,
	})
	return &est, nil
}

// Save рассчитывает и сохраняет смету за организацией участника.
func (s *EstimateService) Save(ctx context.Context, input CalculateInput, principal model.Principal) (*model.Estimate, error) {
	if !principal.CanModify() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.ProjectName) == "" {
		return nil, fmt.Errorf("%w: project_name is required", ErrInvalidInput)
	}

	est, err := s.Calculate(ctx, input)
	if err != nil {
		return nil, err
	}
	est.CreatedByOrgID = principal.OrgID
	est.CreatedByUserID = principal.UserID

	saved, err := s.repo.Save(ctx, *est)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("estimate_id", saved.ID.String()).Str("project", saved.ProjectName).Msg("estimate saved")
	return saved, nil
}

func (s *EstimateService) Get(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error) {
	est, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Чужая смета неотличима от несуществующей.
	if est.CreatedByOrgID != principal.OrgID {
		return nil, ErrNotFound
	}
	return est, nil
}

type ListInput struct {
	ProjectName string
	Limit       int
	Offset      int
}

func (s *EstimateService) List(ctx context.Context, input ListInput, principal model.Principal) ([]model.Estimate, error) {
	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, repository.ListFilter{
		OrgID:       principal.OrgID,
		ProjectName: input.ProjectName,
		Limit:       limit,
		Offset:      input.Offset,
	})
}

func (s *EstimateService) Delete(ctx context.Context, id uuid.UUID, principal model.Principal) error {
	if !principal.CanModify() {
		return ErrPermissionDenied
	}
	err := s.repo.Delete(ctx, id, principal.OrgID)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	return err
}

type ExportFormat string

const (
	ExportExcel ExportFormat = "xlsx"
	ExportPDF   ExportFormat = "pdf"
)

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Export выгружает сохранённую смету в Excel или PDF.
func (s *EstimateService) Export(ctx context.Context, id uuid.UUID, format ExportFormat, principal model.Principal) (*ExportResult, error) {
	est, err := s.Get(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	return s.render(*est, format)
}

// ExportCalculation рассчитывает смету и сразу выгружает её без сохранения.
func (s *EstimateService) ExportCalculation(ctx context.Context, input CalculateInput, format ExportFormat) (*ExportResult, error) {
	est, err := s.Calculate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.render(*est, format)
}

func (s *EstimateService) render(est model.Estimate, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportExcel:
		content, err := s.excel.Generate(est)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    s.buildFileName(est, "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	case ExportPDF:
		content, err := s.pdf.Generate(est)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    s.buildFileName(est, "pdf"),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
	}
}

// Программа ИГИ, добавляемая автоподбором перед отчётом.
const autoProgramWorkID = "program_igi_10m"

// ExpandRequests добавляет сопутствующие камеральные позиции: бурение
// влечёт камеральную обработку буровых материалов, статическое
// зондирование — обработку материалов зондирования. Объём сопутствующей
// позиции равен суммарному объёму породивших её работ; уже добавленная
// вручную позиция только наращивает объём. Кроме того, в смету без
// программы ИГИ вставляется программа: перед позицией отчёта, если
// отчёт есть, иначе в конец.
func (s *EstimateService) ExpandRequests(items []ItemInput) []ItemInput {
	extra := map[string]decimal.Decimal{}

	for _, item := range items {
		wt, ok := s.engine.Catalog().WorkType(item.WorkID)
		if !ok {
			continue
		}
		companion := ""
		switch {
		case wt.Group == model.WorkGroupDrilling:
			companion = "cameral_borehole_cat2"
		case item.WorkID == "static_sounding":
			companion = "cameral_cpt"
		}
		if companion == "" {
			continue
		}
		extra[companion] = extra[companion].Add(item.Quantity)
	}

	result := make([]ItemInput, len(items))
	copy(result, items)
	for i, item := range result {
		add, ok := extra[item.WorkID]
		if !ok {
			continue
		}
		result[i].Quantity = item.Quantity.Add(add)
		delete(extra, item.WorkID)
	}

	// Детерминированный порядок: сначала скважины, затем зондирование.
	for _, companion := range []string{"cameral_borehole_cat2", "cameral_cpt"} {
		if qty, ok := extra[companion]; ok {
			result = append(result, ItemInput{WorkID: companion, Quantity: qty})
		}
	}

	return s.insertProgram(result)
}

// insertProgram добавляет программу ИГИ, если её ещё нет: порядок в смете
// программа → камеральные → отчёт.
func (s *EstimateService) insertProgram(items []ItemInput) []ItemInput {
	reportIdx := -1
	for i, item := range items {
		wt, ok := s.engine.Catalog().WorkType(item.WorkID)
		if !ok {
			continue
		}
		if wt.Group == model.WorkGroupProgram {
			return items
		}
		if wt.Group == model.WorkGroupReport && reportIdx < 0 {
			reportIdx = i
		}
	}

	program := ItemInput{WorkID: autoProgramWorkID, Quantity: decimal.NewFromInt(1)}
	if reportIdx < 0 {
		return append(items, program)
	}

	result := make([]ItemInput, 0, len(items)+1)
	result = append(result, items[:reportIdx]...)
	result = append(result, program)
	return append(result, items[reportIdx:]...)
}

// validate отклоняет заведомо бессмысленные запросы. Неизвестный вид
// работы и неположительное количество запрос не валят: движок обнуляет
// такие позиции с предупреждением, частичная смета полезнее отказа.
func (s *EstimateService) validate(items []ItemInput, input CalculateInput) error {
	for _, item := range items {
		if _, ok := s.engine.Catalog().WorkType(item.WorkID); !ok {
			s.log.Warn().Str("work_id", item.WorkID).Msg("unknown work type in request, item will be zeroed")
		}
		for name, value := range item.ExtraCoefficients {
			if !value.IsPositive() {
				return fmt.Errorf("%w: coefficient %q must be positive for %q", ErrInvalidInput, name, item.WorkID)
			}
		}
	}

	if input.PriceIndex != nil && input.PriceIndex.IsNegative() {
		return fmt.Errorf("%w: price_index must not be negative", ErrInvalidInput)
	}
	if input.ContractCoefficient != nil && !input.ContractCoefficient.IsPositive() {
		return fmt.Errorf("%w: contract_coefficient must be positive", ErrInvalidInput)
	}
	if input.Context.Transport != model.TransportVehicle && input.Context.Transport != model.TransportNonVehicle {
		return fmt.Errorf("%w: unknown transport mode %q", ErrInvalidInput, input.Context.Transport)
	}
	if input.Context.DistanceKm < 0 {
		return fmt.Errorf("%w: distance_km must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *EstimateService) buildFileName(est model.Estimate, ext string) string {
	name := sanitizeFileName(est.ProjectName)
	if name == "" {
		name = est.ID.String()
	}
	return fmt.Sprintf("smeta-%s-%s.%s", name, est.DateCreated.Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
