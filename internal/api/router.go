package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	v1 "github.com/taxmill/taxmill/internal/api/v1"
	"github.com/taxmill/taxmill/internal/rest/middleware"
)

type Handlers struct {
	Health      *v1.HealthHandler
	TaxProfile  *v1.TaxProfileHandler
	TaxCatalog  *v1.TaxCatalogHandler
	Calculation *v1.TaxCalculationHandler
	TaxSnapshot *v1.TaxSnapshotHandler
	VatPeriod   *v1.VatPeriodHandler
	TaxFiling   *v1.TaxFilingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.ErrorHandler(),
	)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", handlers.Health.Health)

	// v1 routes require a tenant scope
	v1Group := router.Group("/v1", middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	tax := router.Group("/tax")

	profiles := tax.Group("/profiles")
	{
		profiles.POST("", handlers.TaxProfile.CreateTaxProfile)
		profiles.GET("", handlers.TaxProfile.ListTaxProfiles)
		profiles.GET("/resolve", handlers.TaxProfile.ResolveTaxProfile)
		profiles.GET("/:id", handlers.TaxProfile.GetTaxProfile)
		profiles.DELETE("/:id", handlers.TaxProfile.DeleteTaxProfile)
	}

	codes := tax.Group("/codes")
	{
		codes.POST("", handlers.TaxCatalog.CreateTaxCode)
		codes.GET("", handlers.TaxCatalog.ListTaxCodes)
		codes.GET("/:id", handlers.TaxCatalog.GetTaxCode)
		codes.POST("/:id/deactivate", handlers.TaxCatalog.DeactivateTaxCode)
		codes.GET("/:id/rates", handlers.TaxCatalog.ListTaxRates)
	}

	tax.POST("/rates", handlers.TaxCatalog.CreateTaxRate)

	tax.POST("/calculate", handlers.Calculation.Calculate)

	snapshots := tax.Group("/snapshots")
	{
		snapshots.POST("", handlers.TaxSnapshot.FreezeSnapshot)
		snapshots.GET("", handlers.TaxSnapshot.ListSnapshots)
		snapshots.GET("/source/:source_type/:source_id", handlers.TaxSnapshot.GetSnapshotBySource)
		snapshots.GET("/:id", handlers.TaxSnapshot.GetSnapshot)
	}

	periods := tax.Group("/periods")
	{
		periods.GET("", handlers.VatPeriod.ListPeriods)
		periods.GET("/:period_key/aggregate", handlers.VatPeriod.AggregatePeriod)
	}

	filings := tax.Group("/filings")
	{
		filings.POST("", handlers.TaxFiling.CreateFiling)
		filings.GET("", handlers.TaxFiling.ListFilings)
		filings.GET("/:id", handlers.TaxFiling.GetFiling)
		filings.POST("/:id/submit", handlers.TaxFiling.SubmitFiling)
		filings.POST("/:id/pay", handlers.TaxFiling.MarkFilingPaid)
		filings.GET("/:id/items", handlers.TaxFiling.ListFilingItems)
	}
}
