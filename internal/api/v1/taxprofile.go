package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taxmill/taxmill/internal/api/dto"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/service"
	"github.com/taxmill/taxmill/internal/types"
)

type TaxProfileHandler struct {
	service service.TaxProfileService
	logger  *logger.Logger
}

func NewTaxProfileHandler(service service.TaxProfileService, logger *logger.Logger) *TaxProfileHandler {
	return &TaxProfileHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a tax profile
// @Description Create a tax profile for a jurisdiction
// @Tags Tax Profiles
// @Accept json
// @Produce json
// @Param tax_profile body dto.CreateTaxProfileRequest true "Tax profile to create"
// @Success 201 {object} dto.TaxProfileResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /tax/profiles [post]
func (h *TaxProfileHandler) CreateTaxProfile(c *gin.Context) {
	var req dto.CreateTaxProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTaxProfile(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a tax profile
// @Description Get a tax profile by ID
// @Tags Tax Profiles
// @Produce json
// @Param id path string true "Tax profile ID"
// @Success 200 {object} dto.TaxProfileResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/profiles/{id} [get]
func (h *TaxProfileHandler) GetTaxProfile(c *gin.Context) {
	resp, err := h.service.GetTaxProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List tax profiles
// @Description List tax profiles
// @Tags Tax Profiles
// @Produce json
// @Param filter query types.TaxProfileFilter true "Filter"
// @Success 200 {object} dto.ListTaxProfilesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tax/profiles [get]
func (h *TaxProfileHandler) ListTaxProfiles(c *gin.Context) {
	var filter types.TaxProfileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	resp, err := h.service.ListTaxProfiles(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a tax profile
// @Description Archive a tax profile
// @Tags Tax Profiles
// @Produce json
// @Param id path string true "Tax profile ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/profiles/{id} [delete]
func (h *TaxProfileHandler) DeleteTaxProfile(c *gin.Context) {
	if err := h.service.DeleteTaxProfile(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tax profile deleted successfully"})
}

// @Summary Resolve the active tax profile
// @Description Resolve the profile effective for a country at a date
// @Tags Tax Profiles
// @Produce json
// @Param country query string false "ISO country code"
// @Param at query string false "RFC 3339 timestamp, defaults to now"
// @Success 200 {object} dto.TaxProfileResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tax/profiles/resolve [get]
func (h *TaxProfileHandler) ResolveTaxProfile(c *gin.Context) {
	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("The at parameter must be an RFC 3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		at = parsed
	}

	profile, err := h.service.ResolveActiveProfile(c.Request.Context(), c.Query("country"), at)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.TaxProfileResponse{TaxProfile: profile})
}
