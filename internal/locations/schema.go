package locations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/query"
	"github.com/substrata-labs/fieldbook/internal/validate"
)

const defaultOrderColumn = "updated_at"

var orderColumns = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"name":       "name",
}

// ListRequestConfig carries raw list parameters before validation.
type ListRequestConfig struct {
	Page      *int
	PageSize  *int
	SiteID    string
	Search    string
	OwnerOnly bool
	OrderBy   string
	OrderDir  string
}

// ListRequest is a validated, normalized list query.
type ListRequest struct {
	Window    query.Window
	SiteID    string
	Search    string
	OwnerOnly bool
	OrderBy   string
	OrderDir  query.Direction
}

// NewListRequest validates raw list parameters into a ListRequest.
func NewListRequest(cfg ListRequestConfig) (ListRequest, error) {
	window, err := query.NewWindow(cfg.Page, cfg.PageSize)
	if err != nil {
		return ListRequest{}, err
	}

	siteID := strings.TrimSpace(cfg.SiteID)
	if siteID != "" {
		if _, err := uuid.Parse(siteID); err != nil {
			return ListRequest{}, apperr.Validation("locations.list.site_id", "siteId must be a valid UUID")
		}
	}

	orderBy := strings.TrimSpace(cfg.OrderBy)
	if orderBy == "" {
		orderBy = defaultOrderColumn
	}
	column, ok := orderColumns[orderBy]
	if !ok {
		return ListRequest{}, apperr.Validation("locations.list.order_by", fmt.Sprintf("orderBy must be one of updated_at, created_at, name; got %q", cfg.OrderBy))
	}

	direction, err := query.ParseDirection(cfg.OrderDir)
	if err != nil {
		return ListRequest{}, err
	}

	return ListRequest{
		Window:    window,
		SiteID:    siteID,
		Search:    query.NormalizeSearch(cfg.Search),
		OwnerOnly: cfg.OwnerOnly,
		OrderBy:   column,
		OrderDir:  direction,
	}, nil
}

// CreateConfig carries raw create fields before validation.
type CreateConfig struct {
	SiteID      string
	Name        string
	Description *string
}

// CreateInput is a validated, normalized create payload.
type CreateInput struct {
	SiteID      string
	Name        string
	Description *string
}

type createShape struct {
	SiteID      string  `validate:"required,uuid"`
	Name        string  `validate:"required,max=120"`
	Description *string `validate:"omitempty,max=2000"`
}

// NewCreateInput validates raw create fields into a CreateInput.
func NewCreateInput(cfg CreateConfig) (CreateInput, error) {
	shape := createShape{
		SiteID:      strings.TrimSpace(cfg.SiteID),
		Name:        strings.TrimSpace(cfg.Name),
		Description: normalizeText(cfg.Description),
	}

	violation, err := validate.Struct(shape)
	if err != nil {
		return CreateInput{}, apperr.Storage("locations.create.validate", err)
	}
	if violation != nil {
		return CreateInput{}, apperr.Validation("locations.create."+violation.Field, violation.Message())
	}

	return CreateInput{
		SiteID:      shape.SiteID,
		Name:        shape.Name,
		Description: shape.Description,
	}, nil
}

// PatchConfig carries raw patch fields with wire presence preserved. The
// site binding of a dig location is immutable; moving work between sites
// happens on the detail records themselves.
type PatchConfig struct {
	Name        field.Optional[string]
	Description field.Optional[string]
}

// PatchInput is a validated partial update.
type PatchInput struct {
	Name        field.Optional[string]
	Description field.Optional[string]
}

// NewPatchInput validates raw patch fields into a PatchInput.
func NewPatchInput(cfg PatchConfig) (PatchInput, error) {
	patch := PatchInput{Name: cfg.Name, Description: cfg.Description}

	if cfg.Name.Null() {
		return PatchInput{}, apperr.Validation("locations.patch.name", "name cannot be null")
	}
	if value, ok := cfg.Name.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if violation := validate.Var("name", trimmed, "required,max=120"); violation != nil {
			return PatchInput{}, apperr.Validation("locations.patch.name", violation.Message())
		}
		patch.Name = field.Set(trimmed)
	}

	if value, ok := cfg.Description.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			patch.Description = field.Null[string]()
		} else {
			if violation := validate.Var("description", trimmed, "max=2000"); violation != nil {
				return PatchInput{}, apperr.Validation("locations.patch.description", violation.Message())
			}
			patch.Description = field.Set(trimmed)
		}
	}

	return patch, nil
}

// ParseID validates a dig location identifier path parameter.
func ParseID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", apperr.Validation("locations.id.invalid", "locationId must be a valid UUID")
	}
	return trimmed, nil
}

func normalizeText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
