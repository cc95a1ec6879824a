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

type TaxFilingHandler struct {
	service service.TaxFilingService
	logger  *logger.Logger
}

func NewTaxFilingHandler(service service.TaxFilingService, logger *logger.Logger) *TaxFilingHandler {
	return &TaxFilingHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a tax filing
// @Description Open a filing for a reporting period with aggregated totals
// @Tags Tax Filings
// @Accept json
// @Produce json
// @Param filing body dto.CreateTaxFilingRequest true "Filing to create"
// @Success 201 {object} dto.TaxFilingResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /tax/filings [post]
func (h *TaxFilingHandler) CreateFiling(c *gin.Context) {
	var req dto.CreateTaxFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateFiling(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tax filing
// @Description Get a tax filing by ID
// @Tags Tax Filings
// @Produce json
// @Param id path string true "Tax filing ID"
// @Success 200 {object} dto.TaxFilingResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/filings/{id} [get]
func (h *TaxFilingHandler) GetFiling(c *gin.Context) {
	resp, err := h.service.GetFiling(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tax filings
// @Description List tax filings
// @Tags Tax Filings
// @Produce json
// @Param filter query types.TaxFilingFilter true "Filter"
// @Success 200 {object} dto.ListTaxFilingsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax/filings [get]
func (h *TaxFilingHandler) ListFilings(c *gin.Context) {
	var filter types.TaxFilingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListFilings(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Submit a tax filing
// @Description Hand an OPEN filing to the tax authority
// @Tags Tax Filings
// @Accept json
// @Produce json
// @Param id path string true "Tax filing ID"
// @Param submission body dto.SubmitTaxFilingRequest true "Submission details"
// @Success 200 {object} dto.TaxFilingResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /tax/filings/{id}/submit [post]
func (h *TaxFilingHandler) SubmitFiling(c *gin.Context) {
	var req dto.SubmitTaxFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SubmitFiling(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a tax filing paid
// @Description Settle a SUBMITTED filing
// @Tags Tax Filings
// @Accept json
// @Produce json
// @Param id path string true "Tax filing ID"
// @Param payment body dto.MarkFilingPaidRequest true "Payment details"
// @Success 200 {object} dto.TaxFilingResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /tax/filings/{id}/pay [post]
func (h *TaxFilingHandler) MarkFilingPaid(c *gin.Context) {
	var req dto.MarkFilingPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.MarkFilingPaid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List filing line items
// @Description List the snapshot rows backing a filing's totals
// @Tags Tax Filings
// @Produce json
// @Param id path string true "Tax filing ID"
// @Param filter query dto.FilingLineItemsFilter true "Filter"
// @Success 200 {object} dto.ListFilingItemsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/filings/{id}/items [get]
func (h *TaxFilingHandler) ListFilingItems(c *gin.Context) {
	var filter dto.FilingLineItemsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListFilingItems(c.Request.Context(), c.Param("id"), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
