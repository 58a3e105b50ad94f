package sites

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

// orderColumns is the allow-list of sortable storage columns.
var orderColumns = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"name":       "name",
}

// ListRequestConfig carries raw list parameters before validation.
type ListRequestConfig struct {
	Page      *int
	PageSize  *int
	Search    string
	OwnerOnly bool
	OrderBy   string
	OrderDir  string
}

// ListRequest is a validated, normalized list query.
type ListRequest struct {
	Window    query.Window
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

	orderBy := strings.TrimSpace(cfg.OrderBy)
	if orderBy == "" {
		orderBy = defaultOrderColumn
	}
	column, ok := orderColumns[orderBy]
	if !ok {
		return ListRequest{}, apperr.Validation("sites.list.order_by", fmt.Sprintf("orderBy must be one of updated_at, created_at, name; got %q", cfg.OrderBy))
	}

	direction, err := query.ParseDirection(cfg.OrderDir)
	if err != nil {
		return ListRequest{}, err
	}

	return ListRequest{
		Window:    window,
		Search:    query.NormalizeSearch(cfg.Search),
		OwnerOnly: cfg.OwnerOnly,
		OrderBy:   column,
		OrderDir:  direction,
	}, nil
}

// CreateConfig carries raw create fields before validation.
type CreateConfig struct {
	Name        string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

// CreateInput is a validated, normalized create payload.
type CreateInput struct {
	Name        string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

type createShape struct {
	Name        string   `validate:"required,max=120"`
	Description *string  `validate:"omitempty,max=2000"`
	Latitude    *float64 `validate:"omitempty,latitude"`
	Longitude   *float64 `validate:"omitempty,longitude"`
}

// NewCreateInput validates raw create fields into a CreateInput.
func NewCreateInput(cfg CreateConfig) (CreateInput, error) {
	shape := createShape{
		Name:        strings.TrimSpace(cfg.Name),
		Description: normalizeText(cfg.Description),
		Latitude:    cfg.Latitude,
		Longitude:   cfg.Longitude,
	}

	violation, err := validate.Struct(shape)
	if err != nil {
		return CreateInput{}, apperr.Storage("sites.create.validate", err)
	}
	if violation != nil {
		return CreateInput{}, apperr.Validation("sites.create."+violation.Field, violation.Message())
	}

	return CreateInput{
		Name:        shape.Name,
		Description: shape.Description,
		Latitude:    shape.Latitude,
		Longitude:   shape.Longitude,
	}, nil
}

// PatchConfig carries raw patch fields. Field presence, including explicit
// null, is preserved from the wire payload.
type PatchConfig struct {
	Name        field.Optional[string]
	Description field.Optional[string]
	Latitude    field.Optional[float64]
	Longitude   field.Optional[float64]
}

// PatchInput is a validated partial update. Absent fields stay untouched,
// null fields clear the column.
type PatchInput struct {
	Name        field.Optional[string]
	Description field.Optional[string]
	Latitude    field.Optional[float64]
	Longitude   field.Optional[float64]
}

// NewPatchInput validates raw patch fields into a PatchInput.
func NewPatchInput(cfg PatchConfig) (PatchInput, error) {
	patch := PatchInput{
		Name:        cfg.Name,
		Description: cfg.Description,
		Latitude:    cfg.Latitude,
		Longitude:   cfg.Longitude,
	}

	if cfg.Name.Null() {
		return PatchInput{}, apperr.Validation("sites.patch.name", "name cannot be null")
	}
	if value, ok := cfg.Name.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if violation := validate.Var("name", trimmed, "required,max=120"); violation != nil {
			return PatchInput{}, apperr.Validation("sites.patch.name", violation.Message())
		}
		patch.Name = field.Set(trimmed)
	}

	if value, ok := cfg.Description.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			patch.Description = field.Null[string]()
		} else {
			if violation := validate.Var("description", trimmed, "max=2000"); violation != nil {
				return PatchInput{}, apperr.Validation("sites.patch.description", violation.Message())
			}
			patch.Description = field.Set(trimmed)
		}
	}

	if value, ok := cfg.Latitude.Value(); ok {
		if violation := validate.Var("latitude", value, "latitude"); violation != nil {
			return PatchInput{}, apperr.Validation("sites.patch.latitude", violation.Message())
		}
	}
	if value, ok := cfg.Longitude.Value(); ok {
		if violation := validate.Var("longitude", value, "longitude"); violation != nil {
			return PatchInput{}, apperr.Validation("sites.patch.longitude", violation.Message())
		}
	}

	return patch, nil
}

// ParseID validates a site identifier path parameter.
func ParseID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", apperr.Validation("sites.id.invalid", "siteId must be a valid UUID")
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
