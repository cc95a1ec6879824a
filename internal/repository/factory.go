package repository

import (
	"github.com/taxmill/taxmill/internal/domain/taxcode"
	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	postgresRepo "github.com/taxmill/taxmill/internal/repository/postgres"
)

func NewTaxProfileRepository(db postgres.IClient, logger *logger.Logger) taxprofile.Repository {
	return postgresRepo.NewTaxProfileRepository(db, logger)
}

func NewTaxCodeRepository(db postgres.IClient, logger *logger.Logger) taxcode.Repository {
	return postgresRepo.NewTaxCodeRepository(db, logger)
}

func NewTaxRateRepository(db postgres.IClient, logger *logger.Logger) taxrate.Repository {
	return postgresRepo.NewTaxRateRepository(db, logger)
}

func NewTaxSnapshotRepository(db postgres.IClient, logger *logger.Logger) taxsnapshot.Repository {
	return postgresRepo.NewTaxSnapshotRepository(db, logger)
}

func NewTaxFilingRepository(db postgres.IClient, logger *logger.Logger) taxfiling.Repository {
	return postgresRepo.NewTaxFilingRepository(db, logger)
}
