package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/locations"
)

type locationCreatePayload struct {
	SiteID      string  `json:"siteId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type locationPatchPayload struct {
	Name        field.Optional[string] `json:"name"`
	Description field.Optional[string] `json:"description"`
}

func (h *httpHandler) handleLocationsList(c *gin.Context) {
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

	request, err := locations.NewListRequest(locations.ListRequestConfig{
		Page:      page,
		PageSize:  pageSize,
		SiteID:    c.Query("siteId"),
		Search:    c.Query("search"),
		OwnerOnly: boolQuery(c, "ownerOnly"),
		OrderBy:   c.Query("orderBy"),
		OrderDir:  c.Query("orderDir"),
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	result, err := h.locations.List(c.Request.Context(), callerID(c), request)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, result)
}

func (h *httpHandler) handleLocationsGet(c *gin.Context) {
	locationID, err := locations.ParseID(c.Param("locationId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.locations.GetByID(c.Request.Context(), callerID(c), locationID)
	if err != nil {
		jsonError(c, err)
		return
	}
	if dto == nil {
		jsonError(c, apperr.NotFound("locations.get.not_found", "dig location not found"))
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleLocationsCreate(c *gin.Context) {
	var payload locationCreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("locations.create.payload", "request body must be valid JSON"))
		return
	}

	input, err := locations.NewCreateInput(locations.CreateConfig{
		SiteID:      payload.SiteID,
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.locations.Create(c.Request.Context(), callerID(c), input)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusCreated, dto)
}

func (h *httpHandler) handleLocationsPatch(c *gin.Context) {
	locationID, err := locations.ParseID(c.Param("locationId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	var payload locationPatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("locations.patch.payload", "request body must be valid JSON"))
		return
	}

	patch, err := locations.NewPatchInput(locations.PatchConfig{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.locations.Update(c.Request.Context(), callerID(c), locationID, patch)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleLocationsRemove(c *gin.Context) {
	locationID, err := locations.ParseID(c.Param("locationId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	if err := h.locations.Remove(c.Request.Context(), callerID(c), locationID); err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, gin.H{"deleted": locationID})
}
