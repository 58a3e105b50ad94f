package sites

import (
	"context"
	"fmt"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"go.uber.org/zap"
)

const (
	opList    = "sites.list"
	opGet     = "sites.get"
	opCreate  = "sites.create"
	opUpdate  = "sites.update"
	opRemove  = "sites.remove"
	opMapPins = "sites.map_pins"
)

var noOpLogger = zap.NewNop()

// DependentCounter reports how many rows of a dependent resource still
// reference a site. Site removal is blocked while any remain.
type DependentCounter interface {
	CountBySite(ctx context.Context, siteID string) (int64, error)
}

// ServiceConfig describes the dependencies of the site service.
type ServiceConfig struct {
	Store      *Store
	Dependents []DependentCounter
	Logger     *zap.Logger
}

// Service wraps the gateway with ownership enforcement and DTO shaping.
// Every mutation passes through the fetch-then-authorize sequence here;
// nothing else calls the gateway's mutating operations.
type Service struct {
	store      *Store
	dependents []DependentCounter
	logger     *zap.Logger
}

// NewService constructs the site service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("sites: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{store: cfg.Store, dependents: cfg.Dependents, logger: logger}, nil
}

// ListResult is one page of DTOs plus the total match count.
type ListResult struct {
	Rows  []DTO `json:"rows"`
	Total int64 `json:"total"`
}

// List returns matching sites with isOwner derived per row. Ownership
// never filters reads unless ownerOnly was requested.
func (s *Service) List(ctx context.Context, callerID string, request ListRequest) (ListResult, error) {
	if err := requireCaller(callerID, opList); err != nil {
		return ListResult{}, err
	}

	rows, total, err := s.store.List(ctx, callerID, request)
	if err != nil {
		s.logError(opList, err)
		return ListResult{}, err
	}

	dtos := make([]DTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, newDTO(row, callerID))
	}
	return ListResult{Rows: dtos, Total: total}, nil
}

// GetByID returns a single DTO, or nil when the id matches nothing. The
// boundary decides how to surface the missing case.
func (s *Service) GetByID(ctx context.Context, callerID, siteID string) (*DTO, error) {
	if err := requireCaller(callerID, opGet); err != nil {
		return nil, err
	}

	row, err := s.store.GetByID(ctx, siteID)
	if err != nil {
		s.logError(opGet, err, zap.String("site_id", siteID))
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	dto := newDTO(*row, callerID)
	return &dto, nil
}

// Create inserts a new site owned by the caller.
func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (DTO, error) {
	if err := requireCaller(callerID, opCreate); err != nil {
		return DTO{}, err
	}

	row, err := s.store.Create(ctx, callerID, input)
	if err != nil {
		s.logError(opCreate, err)
		return DTO{}, err
	}
	return newDTO(*row, callerID), nil
}

// Update applies a partial patch after verifying the caller created the
// site. The fetch-then-check sequence is not atomic with concurrent
// owner writes; last write wins.
func (s *Service) Update(ctx context.Context, callerID, siteID string, patch PatchInput) (DTO, error) {
	if err := requireCaller(callerID, opUpdate); err != nil {
		return DTO{}, err
	}

	existing, err := s.store.GetByID(ctx, siteID)
	if err != nil {
		s.logError(opUpdate, err, zap.String("site_id", siteID))
		return DTO{}, err
	}
	if existing == nil {
		return DTO{}, apperr.NotFound(opUpdate+".not_found", "site not found")
	}
	if existing.CreatedBy != callerID {
		return DTO{}, apperr.Forbidden(opUpdate+".forbidden", "read-only: only the creator can update this site")
	}

	row, err := s.store.Update(ctx, siteID, patch)
	if err != nil {
		s.logError(opUpdate, err, zap.String("site_id", siteID))
		return DTO{}, err
	}
	return newDTO(*row, callerID), nil
}

// Remove deletes a site after verifying ownership and the absence of
// dependent rows.
func (s *Service) Remove(ctx context.Context, callerID, siteID string) error {
	if err := requireCaller(callerID, opRemove); err != nil {
		return err
	}

	existing, err := s.store.GetByID(ctx, siteID)
	if err != nil {
		s.logError(opRemove, err, zap.String("site_id", siteID))
		return err
	}
	if existing == nil {
		return apperr.NotFound(opRemove+".not_found", "site not found")
	}
	if existing.CreatedBy != callerID {
		return apperr.Forbidden(opRemove+".forbidden", "read-only: only the creator can delete this site")
	}

	for _, counter := range s.dependents {
		count, err := counter.CountBySite(ctx, siteID)
		if err != nil {
			wrapped := apperr.Storage(opRemove+".dependents_failed", err)
			s.logError(opRemove, wrapped, zap.String("site_id", siteID))
			return wrapped
		}
		if count > 0 {
			return apperr.Conflict(opRemove+".dependents_exist", "site still has dependent records; remove them first")
		}
	}

	if err := s.store.Remove(ctx, siteID); err != nil {
		s.logError(opRemove, err, zap.String("site_id", siteID))
		return err
	}
	return nil
}

// MapPins returns all sites in the trimmed map projection.
func (s *Service) MapPins(ctx context.Context, callerID string) ([]MapPin, error) {
	if err := requireCaller(callerID, opMapPins); err != nil {
		return nil, err
	}

	rows, err := s.store.MapPins(ctx)
	if err != nil {
		s.logError(opMapPins, err)
		return nil, err
	}

	pins := make([]MapPin, 0, len(rows))
	for _, row := range rows {
		pins = append(pins, MapPin{
			ID:        row.ID,
			Name:      row.Name,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			IsOwner:   row.CreatedBy == callerID,
		})
	}
	return pins, nil
}

func requireCaller(callerID, operation string) error {
	if callerID == "" {
		return apperr.Unauthorized(operation+".missing_caller", "caller identity required")
	}
	return nil
}

func (s *Service) logError(operation string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.Error(err),
	}
	attrs = append(attrs, fields...)
	s.logger.Error("sites service error", attrs...)
}
