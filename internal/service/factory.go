package service

import (
	"github.com/taxmill/taxmill/internal/config"
	"github.com/taxmill/taxmill/internal/domain/taxcode"
	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	"github.com/taxmill/taxmill/internal/jurisdiction"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	TaxProfileRepo  taxprofile.Repository
	TaxCodeRepo     taxcode.Repository
	TaxRateRepo     taxrate.Repository
	TaxSnapshotRepo taxsnapshot.Repository
	TaxFilingRepo   taxfiling.Repository

	// Jurisdictions holds the registered country packs
	Jurisdictions *jurisdiction.Registry
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	taxProfileRepo taxprofile.Repository,
	taxCodeRepo taxcode.Repository,
	taxRateRepo taxrate.Repository,
	taxSnapshotRepo taxsnapshot.Repository,
	taxFilingRepo taxfiling.Repository,
	jurisdictions *jurisdiction.Registry,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		TaxProfileRepo:  taxProfileRepo,
		TaxCodeRepo:     taxCodeRepo,
		TaxRateRepo:     taxRateRepo,
		TaxSnapshotRepo: taxSnapshotRepo,
		TaxFilingRepo:   taxFilingRepo,
		Jurisdictions:   jurisdictions,
	}
}
