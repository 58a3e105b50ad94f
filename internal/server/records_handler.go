package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/records"
)

type recordCreatePayload struct {
	SiteID        string   `json:"siteId"`
	DigLocationID *string  `json:"digLocationId"`
	Title         string   `json:"title"`
	Notes         *string  `json:"notes"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	RecordedAt    *string  `json:"recordedAt"`
}

type recordPatchPayload struct {
	SiteID        field.Optional[string]  `json:"siteId"`
	DigLocationID field.Optional[string]  `json:"digLocationId"`
	Title         field.Optional[string]  `json:"title"`
	Notes         field.Optional[string]  `json:"notes"`
	Latitude      field.Optional[float64] `json:"latitude"`
	Longitude     field.Optional[float64] `json:"longitude"`
	RecordedAt    field.Optional[string]  `json:"recordedAt"`
}

func (h *httpHandler) handleRecordsList(c *gin.Context) {
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

	request, err := records.NewListRequest(records.ListRequestConfig{
		Page:          page,
		PageSize:      pageSize,
		SiteID:        c.Query("siteId"),
		DigLocationID: c.Query("digLocationId"),
		Search:        c.Query("search"),
		OwnerOnly:     boolQuery(c, "ownerOnly"),
		OrderBy:       c.Query("orderBy"),
		OrderDir:      c.Query("orderDir"),
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	result, err := h.records.List(c.Request.Context(), callerID(c), request)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, result)
}

func (h *httpHandler) handleRecordsGet(c *gin.Context) {
	recordID, err := records.ParseID(c.Param("recordId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.records.GetByID(c.Request.Context(), callerID(c), recordID)
	if err != nil {
		jsonError(c, err)
		return
	}
	if dto == nil {
		jsonError(c, apperr.NotFound("records.get.not_found", "detail record not found"))
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleRecordsCreate(c *gin.Context) {
	var payload recordCreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("records.create.payload", "request body must be valid JSON"))
		return
	}

	input, err := records.NewCreateInput(records.CreateConfig{
		SiteID:        payload.SiteID,
		DigLocationID: payload.DigLocationID,
		Title:         payload.Title,
		Notes:         payload.Notes,
		Latitude:      payload.Latitude,
		Longitude:     payload.Longitude,
		RecordedAt:    payload.RecordedAt,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.records.Create(c.Request.Context(), callerID(c), input)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusCreated, dto)
}

func (h *httpHandler) handleRecordsPatch(c *gin.Context) {
	recordID, err := records.ParseID(c.Param("recordId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	var payload recordPatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		jsonError(c, apperr.Validation("records.patch.payload", "request body must be valid JSON"))
		return
	}

	patch, err := records.NewPatchInput(records.PatchConfig{
		SiteID:        payload.SiteID,
		DigLocationID: payload.DigLocationID,
		Title:         payload.Title,
		Notes:         payload.Notes,
		Latitude:      payload.Latitude,
		Longitude:     payload.Longitude,
		RecordedAt:    payload.RecordedAt,
	})
	if err != nil {
		jsonError(c, err)
		return
	}

	dto, err := h.records.Update(c.Request.Context(), callerID(c), recordID, patch)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, dto)
}

func (h *httpHandler) handleRecordsRemove(c *gin.Context) {
	recordID, err := records.ParseID(c.Param("recordId"))
	if err != nil {
		jsonError(c, err)
		return
	}

	if err := h.records.Remove(c.Request.Context(), callerID(c), recordID); err != nil {
		jsonError(c, err)
		return
	}
	jsonOK(c, http.StatusOK, gin.H{"deleted": recordID})
}
