package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/locations"
	"github.com/substrata-labs/fieldbook/internal/records"
	"github.com/substrata-labs/fieldbook/internal/sites"
	"go.uber.org/zap"
)

const callerContextKey = "fieldbook_caller_id"

var (
	errMissingTokenManager     = errors.New("token manager dependency required")
	errMissingSitesService     = errors.New("sites service dependency required")
	errMissingRecordsService   = errors.New("records service dependency required")
	errMissingLocationsService = errors.New("locations service dependency required")
	errInvalidAuthorization    = errors.New("authorization header missing or invalid")
)

// TokenValidator checks a bearer token and returns the caller subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// IdentityRegistry records authenticated callers as they are seen.
type IdentityRegistry interface {
	Touch(subject string) (string, error)
}

// Dependencies wires the HTTP boundary to the resource services.
type Dependencies struct {
	TokenManager TokenValidator
	Sites        *sites.Service
	Records      *records.Service
	Locations    *locations.Service
	Identities   IdentityRegistry
	Logger       *zap.Logger
}

// NewHTTPHandler builds the API router. All /api routes require a bearer
// token; /healthz does not.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Sites == nil {
		return nil, errMissingSitesService
	}
	if deps.Records == nil {
		return nil, errMissingRecordsService
	}
	if deps.Locations == nil {
		return nil, errMissingLocationsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:     deps.TokenManager,
		sites:      deps.Sites,
		records:    deps.Records,
		locations:  deps.Locations,
		identities: deps.Identities,
		logger:     logger,
	}

	router.GET("/healthz", handler.handleHealth)

	api := router.Group("/api")
	api.Use(handler.authorizeRequest)

	api.GET("/sites", handler.handleSitesList)
	api.POST("/sites", handler.handleSitesCreate)
	api.GET("/sites/:siteId", handler.handleSitesGet)
	api.PATCH("/sites/:siteId", handler.handleSitesPatch)
	api.DELETE("/sites/:siteId", handler.handleSitesRemove)
	api.GET("/map/sites", handler.handleMapSites)

	api.GET("/detail-records", handler.handleRecordsList)
	api.POST("/detail-records", handler.handleRecordsCreate)
	api.GET("/detail-records/:recordId", handler.handleRecordsGet)
	api.PATCH("/detail-records/:recordId", handler.handleRecordsPatch)
	api.DELETE("/detail-records/:recordId", handler.handleRecordsRemove)

	api.GET("/dig-locations", handler.handleLocationsList)
	api.POST("/dig-locations", handler.handleLocationsCreate)
	api.GET("/dig-locations/:locationId", handler.handleLocationsGet)
	api.PATCH("/dig-locations/:locationId", handler.handleLocationsPatch)
	api.DELETE("/dig-locations/:locationId", handler.handleLocationsRemove)

	return router, nil
}

type httpHandler struct {
	tokens     TokenValidator
	sites      *sites.Service
	records    *records.Service
	locations  *locations.Service
	identities IdentityRegistry
	logger     *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope(errInvalidAuthorization.Error()))
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope(errInvalidAuthorization.Error()))
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("unauthorized"))
		return
	}
	if h.identities != nil {
		resolved, err := h.identities.Touch(subject)
		if err != nil {
			h.logger.Warn("identity registration failed", zap.Error(err), zap.String("subject", subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("unauthorized"))
			return
		}
		subject = resolved
	}
	c.Set(callerContextKey, subject)
	c.Next()
}

func callerID(c *gin.Context) string {
	return c.GetString(callerContextKey)
}

func jsonOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"ok": true, "data": data})
}

func errorEnvelope(message string) gin.H {
	return gin.H{"ok": false, "error": gin.H{"message": message}}
}

func jsonError(c *gin.Context, err error) {
	c.JSON(statusOf(err), errorEnvelope(apperr.MessageOf(err)))
}

func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
