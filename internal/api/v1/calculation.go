package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/service"
)

type TaxCalculationHandler struct {
	service service.TaxCalculationService
	logger  *logger.Logger
}

func NewTaxCalculationHandler(service service.TaxCalculationService, logger *logger.Logger) *TaxCalculationHandler {
	return &TaxCalculationHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Calculate tax
// @Description Calculate a tax breakdown for document lines under the rules effective on the document date
// @Tags Tax Calculation
// @Accept json
// @Produce json
// @Param calculation body dto.CalculateTaxRequest true "Lines to calculate"
// @Success 200 {object} dto.TaxBreakdownResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/calculate [post]
func (h *TaxCalculationHandler) Calculate(c *gin.Context) {
	var req dto.CalculateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
