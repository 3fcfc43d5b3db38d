package main

import (
	"fmt"
	"os"

	"github.com/glavgeo/igi-estimates/internal/auth"
	"github.com/glavgeo/igi-estimates/internal/calc"
	"github.com/glavgeo/igi-estimates/internal/catalog"
	"github.com/glavgeo/igi-estimates/internal/config"
	"github.com/glavgeo/igi-estimates/internal/db"
	"github.com/glavgeo/igi-estimates/internal/excel"
	httphandler "github.com/glavgeo/igi-estimates/internal/http"
	"github.com/glavgeo/igi-estimates/internal/http/middleware"
	"github.com/glavgeo/igi-estimates/internal/logger"
	"github.com/glavgeo/igi-estimates/internal/pdf"
	"github.com/glavgeo/igi-estimates/internal/repository"
	"github.com/glavgeo/igi-estimates/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reference catalog")
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	estimateRepo := repository.NewEstimateRepository(database)
	engine := calc.NewEngine(cat, log)
	excelGenerator := excel.NewGenerator()
	pdfGenerator, err := pdf.NewGenerator(cfg.Estimates.PDFFontPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	estimateService := service.NewEstimateService(estimateRepo, engine, excelGenerator, pdfGenerator, cfg, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(estimateService, cat, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting estimate service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
