package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/substrata-labs/fieldbook/internal/apperr"
)

// intQuery reads an optional positive-integer query parameter. A missing or
// blank parameter yields nil so the schema layer applies its default.
func intQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("params."+name, name+" must be an integer")
	}
	return &value, nil
}

func boolQuery(c *gin.Context, name string) bool {
	raw := strings.TrimSpace(c.Query(name))
	return raw == "true" || raw == "1"
}
