package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taxmill/taxmill/internal/api"
	v1 "github.com/taxmill/taxmill/internal/api/v1"
	"github.com/taxmill/taxmill/internal/config"
	"github.com/taxmill/taxmill/internal/domain/taxcode"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/repository"
	"github.com/taxmill/taxmill/internal/service"
	"github.com/taxmill/taxmill/internal/validator"
	"go.uber.org/fx"
)

// @title Taxmill API
// @version 1.0
// @description Tax engine and filing lifecycle service
// @BasePath /v1

func init() {
	// all period math and effective-date comparisons are UTC
	time.Local = time.UTC
}

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			postgres.NewClient,

			repository.NewTaxProfileRepository,
			repository.NewTaxCodeRepository,
			repository.NewTaxRateRepository,
			repository.NewTaxSnapshotRepository,
			repository.NewTaxFilingRepository,

			provideJurisdictionRegistry,

			service.NewServiceParams,
			service.NewTaxProfileService,
			service.NewTaxCatalogService,
			service.NewTaxCalculationService,
			service.NewTaxSnapshotService,
			service.NewVatPeriodService,
			service.NewTaxFilingService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideJurisdictionRegistry(taxCodeRepo taxcode.Repository, taxRateRepo taxrate.Repository) *jurisdiction.Registry {
	return jurisdiction.NewRegistry(
		jurisdiction.NewGermanPack(taxCodeRepo, taxRateRepo),
	)
}

func provideHandlers(
	logger *logger.Logger,
	taxProfileService service.TaxProfileService,
	taxCatalogService service.TaxCatalogService,
	calculationService service.TaxCalculationService,
	taxSnapshotService service.TaxSnapshotService,
	vatPeriodService service.VatPeriodService,
	taxFilingService service.TaxFilingService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(logger),
		TaxProfile:  v1.NewTaxProfileHandler(taxProfileService, logger),
		TaxCatalog:  v1.NewTaxCatalogHandler(taxCatalogService, logger),
		Calculation: v1.NewTaxCalculationHandler(calculationService, logger),
		TaxSnapshot: v1.NewTaxSnapshotHandler(taxSnapshotService, logger),
		VatPeriod:   v1.NewVatPeriodHandler(vatPeriodService, logger),
		TaxFiling:   v1.NewTaxFilingHandler(taxFilingService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
