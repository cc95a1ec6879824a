package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/service"
)

type VatPeriodHandler struct {
	service service.VatPeriodService
	logger  *logger.Logger
}

func NewVatPeriodHandler(service service.VatPeriodService, logger *logger.Logger) *VatPeriodHandler {
	return &VatPeriodHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary List VAT periods
// @Description List the statutory reporting periods of a calendar year
// @Tags VAT Periods
// @Produce json
// @Param year query int true "Calendar year"
// @Success 200 {object} dto.VatPeriodsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/periods [get]
func (h *VatPeriodHandler) ListPeriods(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("The year parameter must be a calendar year").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPeriods(c.Request.Context(), year)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Aggregate a VAT period
// @Description Sum the frozen snapshots of one reporting period
// @Tags VAT Periods
// @Produce json
// @Param period_key path string true "Period key (YYYY, YYYY-MM or YYYY-Qn)"
// @Success 200 {object} dto.VatPeriodAggregateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax/periods/{period_key}/aggregate [get]
func (h *VatPeriodHandler) AggregatePeriod(c *gin.Context) {
	resp, err := h.service.AggregatePeriod(c.Request.Context(), c.Param("period_key"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
