package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/query"
	"github.com/substrata-labs/fieldbook/internal/validate"
)

const defaultOrderColumn = "updated_at"

var orderColumns = map[string]string{
	"updated_at":  "updated_at",
	"created_at":  "created_at",
	"recorded_at": "recorded_at",
	"title":       "title",
}

// ListRequestConfig carries raw list parameters before validation.
type ListRequestConfig struct {
	Page          *int
	PageSize      *int
	SiteID        string
	DigLocationID string
	Search        string
	OwnerOnly     bool
	OrderBy       string
	OrderDir      string
}

// ListRequest is a validated, normalized list query.
type ListRequest struct {
	Window        query.Window
	SiteID        string
	DigLocationID string
	Search        string
	OwnerOnly     bool
	OrderBy       string
	OrderDir      query.Direction
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
			return ListRequest{}, apperr.Validation("records.list.site_id", "siteId must be a valid UUID")
		}
	}
	digLocationID := strings.TrimSpace(cfg.DigLocationID)
	if digLocationID != "" {
		if _, err := uuid.Parse(digLocationID); err != nil {
			return ListRequest{}, apperr.Validation("records.list.dig_location_id", "digLocationId must be a valid UUID")
		}
	}

	orderBy := strings.TrimSpace(cfg.OrderBy)
	if orderBy == "" {
		orderBy = defaultOrderColumn
	}
	column, ok := orderColumns[orderBy]
	if !ok {
		return ListRequest{}, apperr.Validation("records.list.order_by", fmt.Sprintf("orderBy must be one of updated_at, created_at, recorded_at, title; got %q", cfg.OrderBy))
	}

	direction, err := query.ParseDirection(cfg.OrderDir)
	if err != nil {
		return ListRequest{}, err
	}

	return ListRequest{
		Window:        window,
		SiteID:        siteID,
		DigLocationID: digLocationID,
		Search:        query.NormalizeSearch(cfg.Search),
		OwnerOnly:     cfg.OwnerOnly,
		OrderBy:       column,
		OrderDir:      direction,
	}, nil
}

// CreateConfig carries raw create fields before validation. RecordedAt is
// the wire-level ISO-8601 string; empty normalizes to null.
type CreateConfig struct {
	SiteID        string
	DigLocationID *string
	Title         string
	Notes         *string
	Latitude      *float64
	Longitude     *float64
	RecordedAt    *string
}

// CreateInput is a validated, normalized create payload.
type CreateInput struct {
	SiteID        string
	DigLocationID *string
	Title         string
	Notes         *string
	Latitude      *float64
	Longitude     *float64
	RecordedAt    *time.Time
}

type createShape struct {
	SiteID        string   `validate:"required,uuid"`
	DigLocationID *string  `validate:"omitempty,uuid"`
	Title         string   `validate:"required,max=200"`
	Notes         *string  `validate:"omitempty,max=10000"`
	Latitude      *float64 `validate:"omitempty,latitude"`
	Longitude     *float64 `validate:"omitempty,longitude"`
}

// NewCreateInput validates raw create fields into a CreateInput.
func NewCreateInput(cfg CreateConfig) (CreateInput, error) {
	shape := createShape{
		SiteID:        strings.TrimSpace(cfg.SiteID),
		DigLocationID: normalizeText(cfg.DigLocationID),
		Title:         strings.TrimSpace(cfg.Title),
		Notes:         normalizeText(cfg.Notes),
		Latitude:      cfg.Latitude,
		Longitude:     cfg.Longitude,
	}

	violation, err := validate.Struct(shape)
	if err != nil {
		return CreateInput{}, apperr.Storage("records.create.validate", err)
	}
	if violation != nil {
		return CreateInput{}, apperr.Validation("records.create."+violation.Field, violation.Message())
	}

	var recordedAt *time.Time
	if cfg.RecordedAt != nil {
		recordedAt, err = validate.ISOTime(*cfg.RecordedAt)
		if err != nil {
			return CreateInput{}, apperr.Validation("records.create.recorded_at", "recordedAt must be an ISO-8601 timestamp")
		}
	}

	return CreateInput{
		SiteID:        shape.SiteID,
		DigLocationID: shape.DigLocationID,
		Title:         shape.Title,
		Notes:         shape.Notes,
		Latitude:      shape.Latitude,
		Longitude:     shape.Longitude,
		RecordedAt:    recordedAt,
	}, nil
}

// PatchConfig carries raw patch fields with wire presence preserved.
// RecordedAt arrives as its ISO-8601 string form.
type PatchConfig struct {
	SiteID        field.Optional[string]
	DigLocationID field.Optional[string]
	Title         field.Optional[string]
	Notes         field.Optional[string]
	Latitude      field.Optional[float64]
	Longitude     field.Optional[float64]
	RecordedAt    field.Optional[string]
}

// PatchInput is a validated partial update. Absent fields stay untouched,
// null fields clear their column.
type PatchInput struct {
	SiteID        field.Optional[string]
	DigLocationID field.Optional[string]
	Title         field.Optional[string]
	Notes         field.Optional[string]
	Latitude      field.Optional[float64]
	Longitude     field.Optional[float64]
	RecordedAt    field.Optional[time.Time]
}

// NewPatchInput validates raw patch fields into a PatchInput.
func NewPatchInput(cfg PatchConfig) (PatchInput, error) {
	patch := PatchInput{
		SiteID:        cfg.SiteID,
		DigLocationID: cfg.DigLocationID,
		Title:         cfg.Title,
		Notes:         cfg.Notes,
		Latitude:      cfg.Latitude,
		Longitude:     cfg.Longitude,
	}

	if cfg.SiteID.Null() {
		return PatchInput{}, apperr.Validation("records.patch.site_id", "siteId cannot be null; a record always belongs to a site")
	}
	if value, ok := cfg.SiteID.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if _, err := uuid.Parse(trimmed); err != nil {
			return PatchInput{}, apperr.Validation("records.patch.site_id", "siteId must be a valid UUID")
		}
		patch.SiteID = field.Set(trimmed)
	}

	if value, ok := cfg.DigLocationID.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if _, err := uuid.Parse(trimmed); err != nil {
			return PatchInput{}, apperr.Validation("records.patch.dig_location_id", "digLocationId must be a valid UUID")
		}
		patch.DigLocationID = field.Set(trimmed)
	}

	if cfg.Title.Null() {
		return PatchInput{}, apperr.Validation("records.patch.title", "title cannot be null")
	}
	if value, ok := cfg.Title.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if violation := validate.Var("title", trimmed, "required,max=200"); violation != nil {
			return PatchInput{}, apperr.Validation("records.patch.title", violation.Message())
		}
		patch.Title = field.Set(trimmed)
	}

	if value, ok := cfg.Notes.Value(); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			patch.Notes = field.Null[string]()
		} else {
			if violation := validate.Var("notes", trimmed, "max=10000"); violation != nil {
				return PatchInput{}, apperr.Validation("records.patch.notes", violation.Message())
			}
			patch.Notes = field.Set(trimmed)
		}
	}

	if value, ok := cfg.Latitude.Value(); ok {
		if violation := validate.Var("latitude", value, "latitude"); violation != nil {
			return PatchInput{}, apperr.Validation("records.patch.latitude", violation.Message())
		}
	}
	if value, ok := cfg.Longitude.Value(); ok {
		if violation := validate.Var("longitude", value, "longitude"); violation != nil {
			return PatchInput{}, apperr.Validation("records.patch.longitude", violation.Message())
		}
	}

	if cfg.RecordedAt.Null() {
		patch.RecordedAt = field.Null[time.Time]()
	} else if value, ok := cfg.RecordedAt.Value(); ok {
		parsed, err := validate.ISOTime(value)
		if err != nil {
			return PatchInput{}, apperr.Validation("records.patch.recorded_at", "recordedAt must be an ISO-8601 timestamp")
		}
		if parsed == nil {
			patch.RecordedAt = field.Null[time.Time]()
		} else {
			patch.RecordedAt = field.Set(*parsed)
		}
	}

	return patch, nil
}

// ParseID validates a detail record identifier path parameter.
func ParseID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", apperr.Validation("records.id.invalid", "recordId must be a valid UUID")
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
