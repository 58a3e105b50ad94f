package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/sites"
	"go.uber.org/zap"
)

type siteCreatePayload struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type sitePatchPayload struct {
	Name        field.Optional[string]  `json:"name"`
	Description field.Optional[string]  `json:"description"`
	Latitude    field.Optional[float64] `json:"latitude"`
	Longitude   field.Optional[float64] `json:"longitude"`
}

func (h *httpHandler) handleSitesList(c *gin.Context) {
	page, err := intQuery(c, "page")
	if err != nil {
		jsonError(c, err)
		return
	}
	pageSize, err := intQuery(c, "pageSize")
	if err != nil {
		jsonError(c, err)
		return
	}

	request, err := sites.NewListRequest(sites.ListRequestConfig{
		Page:      page,
		PageSize:  pageSize,
		Search:    c.Query("search"),
		OwnerOnly: boolQuery(c, "ownerOnly"),
		OrderBy:   c.Query("orderBy"),
		OrderDir:  c.Query("orderDir"),
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	result, err := h.sites.List(c.Request.Context(), callerID(c), request)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, result)
}

func (h *httpHandler) handleSitesGet(c *gin.Context) {
	siteID, err := sites.ParseID(c.Param("siteId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.sites.GetByID(c.Request.Context(), callerID(c), siteID)
	if err != nil {
		jsonError(c, err)
		return
	}
	if dto == nil {
		jsonError(c, apperr.NotFound("sites.get.not_found", "site not found"))
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleSitesCreate(c *gin.Context) {
	var payload siteCreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("sites.create.payload", "request body must be valid JSON"))
		return
	}

	input, err := sites.NewCreateInput(sites.CreateConfig{
		Name:        payload.Name,
		Description: payload.Description,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.sites.Create(c.Request.Context(), callerID(c), input)
	if err != nil {
		jsonError(c, err)
		return
	}
	h.logger.Info("site created", zap.String("site_id", dto.ID), zap.String("caller", callerID(c)))
	jsonOK(c, http.StatusCreated, dto)
}

func (h *httpHandler) handleSitesPatch(c *gin.Context) {
	siteID, err := sites.ParseID(c.Param("siteId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	var payload sitePatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("sites.patch.payload", "request body must be valid JSON"))
		return
	}

	patch, err := sites.NewPatchInput(sites.PatchConfig{
		Name:        payload.Name,
		Description: payload.Description,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.sites.Update(c.Request.Context(), callerID(c), siteID, patch)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleSitesRemove(c *gin.Context) {
	siteID, err := sites.ParseID(c.Param("siteId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	if err := h.sites.Remove(c.Request.Context(), callerID(c), siteID); err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, gin.H{"deleted": siteID})
}

func (h *httpHandler) handleMapSites(c *gin.Context) {
	pins, err := h.sites.MapPins(c.Request.Context(), callerID(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, pins)
}
