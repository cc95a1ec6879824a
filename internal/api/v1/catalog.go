package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/service"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxCatalogHandler struct {
	service service.TaxCatalogService
	logger  *logger.Logger
}

func NewTaxCatalogHandler(service service.TaxCatalogService, logger *logger.Logger) *TaxCatalogHandler {
	return &TaxCatalogHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a tax code
// @Description Create a tax code catalog entry
// @Tags Tax Catalog
// @Accept json
// @Produce json
// @Param tax_code body dto.CreateTaxCodeRequest true "Tax code to create"
// @Success 201 {object} dto.TaxCodeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /tax/codes [post]
func (h *TaxCatalogHandler) CreateTaxCode(c *gin.Context) {
	var req dto.CreateTaxCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTaxCode(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tax code
// @Description Get a tax code by ID
// @Tags Tax Catalog
// @Produce json
// @Param id path string true "Tax code ID"
// @Success 200 {object} dto.TaxCodeResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/codes/{id} [get]
func (h *TaxCatalogHandler) GetTaxCode(c *gin.Context) {
	resp, err := h.service.GetTaxCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tax codes
// @Description List tax code catalog entries
// @Tags Tax Catalog
// @Produce json
// @Param filter query types.TaxCodeFilter true "Filter"
// @Success 200 {object} dto.ListTaxCodesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax/codes [get]
func (h *TaxCatalogHandler) ListTaxCodes(c *gin.Context) {
	var filter types.TaxCodeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListTaxCodes(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Deactivate a tax code
// @Description Stop a tax code from being applied to new calculations
// @Tags Tax Catalog
// @Produce json
// @Param id path string true "Tax code ID"
// @Success 200 {object} dto.TaxCodeResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/codes/{id}/deactivate [post]
func (h *TaxCatalogHandler) DeactivateTaxCode(c *gin.Context) {
	resp, err := h.service.DeactivateTaxCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Create a tax rate
// @Description Add a time-ranged rate to a tax code
// @Tags Tax Catalog
// @Accept json
// @Produce json
// @Param tax_rate body dto.CreateTaxRateRequest true "Tax rate to create"
// @Success 201 {object} dto.TaxRateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /tax/rates [post]
func (h *TaxCatalogHandler) CreateTaxRate(c *gin.Context) {
	var req dto.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTaxRate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List tax rates
// @Description List the rates of a tax code
// @Tags Tax Catalog
// @Produce json
// @Param id path string true "Tax code ID"
// @Success 200 {object} dto.ListTaxRatesResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/codes/{id}/rates [get]
func (h *TaxCatalogHandler) ListTaxRates(c *gin.Context) {
	resp, err := h.service.ListTaxRates(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
