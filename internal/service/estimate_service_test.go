package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glavgeo/igi-estimates/internal/calc"
	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/config"
	"github.com/glavgeo/igi-estimates/internal/model"
	"github.com/glavgeo/igi-estimates/internal/repository"
)

type fakeRepo struct {
	saved     []model.Estimate
	estimates map[uuid.UUID]model.Estimate
	deleted   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{estimates: map[uuid.UUID]model.Estimate{}}
}

func (r *fakeRepo) Save(_ context.Context, est model.Estimate) (*model.Estimate, error) {
	r.saved = append(r.saved, est)
	r.estimates[est.ID] = est
	return &est, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Estimate, error) {
	est, ok := r.estimates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &est, nil
}

func (r *fakeRepo) List(_ context.Context, filter repository.ListFilter) ([]model.Estimate, error) {
	var result []model.Estimate
	for _, est := range r.estimates {
		if est.CreatedByOrgID == filter.OrgID {
			result = append(result, est)
		}
	}
	return result, nil
}

func (r *fakeRepo) Delete(_ context.Context, id, orgID uuid.UUID) error {
	est, ok := r.estimates[id]
	if !ok || est.CreatedByOrgID != orgID {
		return gorm.ErrRecordNotFound
	}
	delete(r.estimates, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeGenerator struct {
	content []byte
	calls   int
}

func (g *fakeGenerator) Generate(model.Estimate) ([]byte, error) {
	g.calls++
	return g.content, nil
}

func newTestService(t *testing.T, repo EstimateRepo) *EstimateService {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	engine := calc.NewEngine(cat, zerolog.Nop())
	cfg := &config.Config{}
	cfg.Estimates.BaseCity = "г. Санкт-Петербург"
	return NewEstimateService(
		repo,
		engine,
		&fakeGenerator{content: []byte("xlsx")},
		&fakeGenerator{content: []byte("pdf")},
		cfg,
		zerolog.Nop(),
	)
}

func estimator() model.Principal {
	return model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleEstimator}
}

func calcInput(items ...ItemInput) CalculateInput {
	return CalculateInput{
		ProjectName: "Изыскания под ЖК",
		Items:       items,
		Context:     model.DefaultProjectContext(),
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())
	est, err := svc.Calculate(context.Background(), calcInput(
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	))
	require.NoError(t, err)
	require.Len(t, est.Items, 1)
	require.Equal(t, "5000.00", est.SubtotalField.StringFixed(2))
	require.Equal(t, "г. Санкт-Петербург", est.BaseCity)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCalculateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())
	ctx := context.Background()

	_, err := svc.Calculate(ctx, calcInput())
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Calculate(ctx, calcInput(
		ItemInput{
			WorkID:            "pit_excavation",
			Quantity:          decimal.NewFromInt(1),
			ExtraCoefficients: map[string]decimal.Decimal{"K_urgency": decimal.Zero},
		},
	))
	require.ErrorIs(t, err, ErrInvalidInput)

	bad := calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(1)})
	bad.PriceIndex = decPtr("-1")
	_, err = svc.Calculate(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	bad = calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(1)})
	bad.ContractCoefficient = decPtr("0")
	_, err = svc.Calculate(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	bad = calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(1)})
	bad.Context.Transport = "teleport"
	_, err = svc.Calculate(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateZeroesBrokenItems(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())

	// Неизвестный вид работы и неположительное количество не валят расчёт:
	// такие позиции обнуляются, остальная смета считается.
	est, err := svc.Calculate(context.Background(), calcInput(
		ItemInput{WorkID: "no_such_work", Quantity: decimal.NewFromInt(1)},
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(-1)},
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	))
	require.NoError(t, err)
	require.Len(t, est.Items, 3)
	require.True(t, est.Items[0].TotalCost.IsZero())
	require.True(t, est.Items[1].TotalCost.IsZero())
	require.Equal(t, "5000.00", est.Items[2].TotalCost.StringFixed(2))
	require.Equal(t, "5000.00", est.SubtotalField.StringFixed(2))
}

func TestCalculateFromTemplate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())
	input := calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(2)})
	input.TemplateID = "tpl_building_5floor"

	est, err := svc.Calculate(context.Background(), input)
	require.NoError(t, err)
	// Позиции шаблона идут перед позициями запроса.
	require.Equal(t, "recon_route", est.Items[0].WorkID)
	require.Equal(t, "pit_excavation", est.Items[len(est.Items)-1].WorkID)

	input.TemplateID = "tpl_missing"
	_, err = svc.Calculate(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpandRequests(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())

	expanded := svc.ExpandRequests([]ItemInput{
		{WorkID: "drill_core_le160_cat2", Quantity: decimal.NewFromInt(120)},
		{WorkID: "drill_core_gt160_cat2", Quantity: decimal.NewFromInt(80)},
		{WorkID: "static_sounding", Quantity: decimal.NewFromInt(15)},
	})

	require.Len(t, expanded, 6)
	require.Equal(t, "cameral_borehole_cat2", expanded[3].WorkID)
	require.Equal(t, "200", expanded[3].Quantity.String())
	require.Equal(t, "cameral_cpt", expanded[4].WorkID)
	require.Equal(t, "15", expanded[4].Quantity.String())
	// Без отчёта программа ИГИ добавляется последней.
	require.Equal(t, "program_igi_10m", expanded[5].WorkID)
	require.Equal(t, "1", expanded[5].Quantity.String())
}

func TestExpandRequestsBumpsExisting(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())

	expanded := svc.ExpandRequests([]ItemInput{
		{WorkID: "drill_core_le160_cat2", Quantity: decimal.NewFromInt(100)},
		{WorkID: "cameral_borehole_cat2", Quantity: decimal.NewFromInt(30)},
	})

	// Ручная позиция наращивается, дубликат не добавляется.
	require.Len(t, expanded, 3)
	require.Equal(t, "130", expanded[1].Quantity.String())
	require.Equal(t, "program_igi_10m", expanded[2].WorkID)
}

func TestExpandRequestsInsertsProgramBeforeReport(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())

	expanded := svc.ExpandRequests([]ItemInput{
		{WorkID: "cameral_borehole_cat2", Quantity: decimal.NewFromInt(300)},
		{WorkID: "report_igi", Quantity: decimal.NewFromInt(1)},
	})

	// Порядок: программа → камеральные → отчёт.
	require.Len(t, expanded, 3)
	require.Equal(t, "cameral_borehole_cat2", expanded[0].WorkID)
	require.Equal(t, "program_igi_10m", expanded[1].WorkID)
	require.Equal(t, "report_igi", expanded[2].WorkID)

	// Явно добавленная программа не дублируется.
	expanded = svc.ExpandRequests([]ItemInput{
		{WorkID: "program_igi_10m", Quantity: decimal.NewFromInt(1)},
		{WorkID: "report_igi", Quantity: decimal.NewFromInt(1)},
	})
	require.Len(t, expanded, 2)
}

func TestSave(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(t, repo)
	principal := estimator()

	est, err := svc.Save(context.Background(), calcInput(
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	), principal)
	require.NoError(t, err)
	require.Equal(t, principal.OrgID, est.CreatedByOrgID)
	require.Equal(t, principal.UserID, est.CreatedByUserID)
	require.Len(t, repo.saved, 1)
}

func TestSavePermissions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())
	viewer := estimator()
	viewer.Role = model.RoleViewer

	_, err := svc.Save(context.Background(), calcInput(
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	), viewer)
	require.ErrorIs(t, err, ErrPermissionDenied)

	input := calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)})
	input.ProjectName = "   "
	_, err = svc.Save(context.Background(), input, estimator())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetHidesForeignEstimates(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(t, repo)
	owner := estimator()

	saved, err := svc.Save(context.Background(), calcInput(
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	), owner)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), saved.ID, owner)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)

	_, err = svc.Get(context.Background(), saved.ID, estimator())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.New(), owner)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc := newTestService(t, repo)
	owner := estimator()

	saved, err := svc.Save(context.Background(), calcInput(
		ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)},
	), owner)
	require.NoError(t, err)

	viewer := owner
	viewer.Role = model.RoleViewer
	require.ErrorIs(t, svc.Delete(context.Background(), saved.ID, viewer), ErrPermissionDenied)

	require.ErrorIs(t, svc.Delete(context.Background(), saved.ID, estimator()), ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), saved.ID, owner))
}

func TestExportCalculation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo())
	input := calcInput(ItemInput{WorkID: "pit_excavation", Quantity: decimal.NewFromInt(5)})

	result, err := svc.ExportCalculation(context.Background(), input, ExportExcel)
	require.NoError(t, err)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	require.Equal(t, []byte("xlsx"), result.Content)

	result, err = svc.ExportCalculation(context.Background(), input, ExportPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)

	_, err = svc.ExportCalculation(context.Background(), input, ExportFormat("doc"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildFileName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ZHK-Severnyj-2", sanitizeFileName("ZHK Severnyj 2"))
	require.Equal(t, "", sanitizeFileName("Жилой дом"))
}
