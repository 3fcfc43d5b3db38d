package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/http/middleware"
	"github.com/glavgeo/igi-estimates/internal/model"
	"github.com/glavgeo/igi-estimates/internal/service"
)

type Handler struct {
	estimates *service.EstimateService
	cat       *catalog.Catalog
	log       zerolog.Logger
}

func NewHandler(estimates *service.EstimateService, cat *catalog.Catalog, log zerolog.Logger) *Handler {
	return &Handler{estimates: estimates, cat: cat, log: log}
}

type itemRequest struct {
	WorkID            string                     `json:"work_id" binding:"required"`
	Quantity          decimal.Decimal            `json:"quantity"`
	ExtraCoefficients map[string]decimal.Decimal `json:"extra_coefficients"`
}

type calculateRequest struct {
	ProjectName string `json:"project_name"`
	ProjectCode string `json:"project_code"`
	ObjectName  string `json:"object_name"`
	Customer    string `json:"customer"`
	Contractor  string `json:"contractor"`

	TemplateID     string        `json:"template_id"`
	Items          []itemRequest `json:"items"`
	AutoCompanions bool          `json:"auto_companions"`

	SoilCategory      string  `json:"soil_category"`
	ClimateZone       string  `json:"climate_zone"`
	Complexity        string  `json:"complexity"`
	Region            string  `json:"region"`
	DistanceKm        float64 `json:"distance_km"`
	Transport         string  `json:"transport"`
	HasStaticSounding bool    `json:"has_static_sounding"`
	UseInterpolation  *bool   `json:"use_interpolation"`
	LocalWork         bool    `json:"local_work"`
	UnfavorablePeriod bool    `json:"unfavorable_period"`
	RegimeObject      bool    `json:"regime_object"`
	LabAtBase         *bool   `json:"lab_at_base"`

	PriceIndex          *decimal.Decimal `json:"price_index"`
	ContractCoefficient *decimal.Decimal `json:"contract_coefficient"`
}

func (r calculateRequest) toInput() service.CalculateInput {
	ctx := model.DefaultProjectContext()
	if r.SoilCategory != "" {
		ctx.SoilCategory = r.SoilCategory
	}
	if r.ClimateZone != "" {
		ctx.ClimateZone = r.ClimateZone
	}
	if r.Complexity != "" {
		ctx.Complexity = r.Complexity
	}
	ctx.Region = r.Region
	ctx.DistanceKm = r.DistanceKm
	if r.Transport != "" {
		ctx.Transport = model.TransportMode(r.Transport)
	}
	ctx.HasStaticSounding = r.HasStaticSounding
	if r.UseInterpolation != nil {
		ctx.UseInterpolation = *r.UseInterpolation
	}
	ctx.LocalWork = r.LocalWork
	ctx.UnfavorablePeriod = r.UnfavorablePeriod
	ctx.RegimeObject = r.RegimeObject
	if r.LabAtBase != nil {
		ctx.LabAtBase = *r.LabAtBase
	}

	items := make([]service.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.ItemInput{
			WorkID:            item.WorkID,
			Quantity:          item.Quantity,
			ExtraCoefficients: item.ExtraCoefficients,
		})
	}

	return service.CalculateInput{
		ProjectName:         r.ProjectName,
		ProjectCode:         r.ProjectCode,
		ObjectName:          r.ObjectName,
		Customer:            r.Customer,
		Contractor:          r.Contractor,
		TemplateID:          r.TemplateID,
		Items:               items,
		AutoCompanions:      r.AutoCompanions,
		Context:             ctx,
		PriceIndex:          r.PriceIndex,
		ContractCoefficient: r.ContractCoefficient,
	}
}

func (h *Handler) calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := h.estimates.Calculate(c.Request.Context(), req.toInput())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *Handler) save(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := h.estimates.Save(c.Request.Context(), req.toInput(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, est)
}

func (h *Handler) list(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	estimates, err := h.estimates.List(c.Request.Context(), service.ListInput{
		ProjectName: c.Query("project_name"),
		Limit:       limit,
		Offset:      offset,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

func (h *Handler) get(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate id"})
		return
	}

	est, err := h.estimates.Get(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *Handler) remove(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate id"})
		return
	}

	if err := h.estimates.Delete(c.Request.Context(), id, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) export(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate id"})
		return
	}

	format, err := parseExportFormat(c.DefaultQuery("format", "xlsx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format"})
		return
	}

	result, err := h.estimates.Export(c.Request.Context(), id, format, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	writeAttachment(c, result)
}

type exportCalculationRequest struct {
	calculateRequest
	Format string `json:"format"`
}

func (h *Handler) exportCalculation(c *gin.Context) {
	var req exportCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := parseExportFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format"})
		return
	}

	result, err := h.estimates.ExportCalculation(c.Request.Context(), req.toInput(), format)
	if err != nil {
		h.handleError(c, err)
		return
	}
	writeAttachment(c, result)
}

func (h *Handler) workTypes(c *gin.Context) {
	category := model.WorkCategory(c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"work_types": h.cat.WorkTypes(category)})
}

func (h *Handler) regions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regions": h.cat.Regions()})
}

func (h *Handler) templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.cat.Templates()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("estimate request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseExportFormat(raw string) (service.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "xlsx", "excel":
		return service.ExportExcel, nil
	case "pdf":
		return service.ExportPDF, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func writeAttachment(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
