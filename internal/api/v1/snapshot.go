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

type TaxSnapshotHandler struct {
	service service.TaxSnapshotService
	logger  *logger.Logger
}

func NewTaxSnapshotHandler(service service.TaxSnapshotService, logger *logger.Logger) *TaxSnapshotHandler {
	return &TaxSnapshotHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Freeze a tax snapshot
// @Description Attach an immutable tax breakdown to a source document
// @Tags Tax Snapshots
// @Accept json
// @Produce json
// @Param snapshot body dto.FreezeSnapshotRequest true "Breakdown to freeze"
// @Success 201 {object} dto.TaxSnapshotResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /tax/snapshots [post]
func (h *TaxSnapshotHandler) FreezeSnapshot(c *gin.Context) {
	var req dto.FreezeSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.FreezeSnapshot(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tax snapshot
// @Description Get a tax snapshot by ID
// @Tags Tax Snapshots
// @Produce json
// @Param id path string true "Tax snapshot ID"
// @Success 200 {object} dto.TaxSnapshotResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/snapshots/{id} [get]
func (h *TaxSnapshotHandler) GetSnapshot(c *gin.Context) {
	resp, err := h.service.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the snapshot of a source document
// @Description Get the frozen snapshot for a source document
// @Tags Tax Snapshots
// @Produce json
// @Param source_type path string true "Source type (INVOICE or EXPENSE)"
// @Param source_id path string true "Source document ID"
// @Success 200 {object} dto.TaxSnapshotResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/snapshots/source/{source_type}/{source_id} [get]
func (h *TaxSnapshotHandler) GetSnapshotBySource(c *gin.Context) {
	sourceType := types.SourceType(c.Param("source_type"))

	resp, err := h.service.GetSnapshotBySource(c.Request.Context(), sourceType, c.Param("source_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tax snapshots
// @Description List frozen tax snapshots
// @Tags Tax Snapshots
// @Produce json
// @Param filter query types.TaxSnapshotFilter true "Filter"
// @Success 200 {object} dto.ListTaxSnapshotsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax/snapshots [get]
func (h *TaxSnapshotHandler) ListSnapshots(c *gin.Context) {
	var filter types.TaxSnapshotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListSnapshots(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
