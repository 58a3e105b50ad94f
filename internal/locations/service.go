package locations

import (
	"context"
	"fmt"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"go.uber.org/zap"
)

const (
	opList   = "locations.list"
	opGet    = "locations.get"
	opCreate = "locations.create"
	opUpdate = "locations.update"
	opRemove = "locations.remove"
)

var noOpLogger = zap.NewNop()

// DependentCounter reports how many rows of a dependent resource still
// reference a dig location.
type DependentCounter interface {
	CountByDigLocation(ctx context.Context, locationID string) (int64, error)
}

// ServiceConfig describes the dependencies of the dig location service.
type ServiceConfig struct {
	Store      *Store
	Dependents []DependentCounter
	Logger     *zap.Logger
}

// Service wraps the gateway with ownership enforcement and DTO shaping.
type Service struct {
	store      *Store
	dependents []DependentCounter
	logger     *zap.Logger
}

// NewService constructs the dig location service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("locations: store is required")
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

// List returns matching dig locations with isOwner derived per row.
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

// GetByID returns a single DTO, or nil when the id matches nothing.
func (s *Service) GetByID(ctx context.Context, callerID, locationID string) (*DTO, error) {
	if err := requireCaller(callerID, opGet); err != nil {
		return nil, err
	}

	row, err := s.store.GetByID(ctx, locationID)
	if err != nil {
		s.logError(opGet, err, zap.String("location_id", locationID))
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	dto := newDTO(*row, callerID)
	return &dto, nil
}

// Create inserts a new dig location owned by the caller.
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
// dig location.
func (s *Service) Update(ctx context.Context, callerID, locationID string, patch PatchInput) (DTO, error) {
	if err := requireCaller(callerID, opUpdate); err != nil {
		return DTO{}, err
	}

	existing, err := s.store.GetByID(ctx, locationID)
	if err != nil {
		s.logError(opUpdate, err, zap.String("location_id", locationID))
		return DTO{}, err
	}
	if existing == nil {
		return DTO{}, apperr.NotFound(opUpdate+".not_found", "dig location not found")
	}
	if existing.CreatedBy != callerID {
		return DTO{}, apperr.Forbidden(opUpdate+".forbidden", "read-only: only the creator can update this dig location")
	}

	row, err := s.store.Update(ctx, locationID, patch)
	if err != nil {
		s.logError(opUpdate, err, zap.String("location_id", locationID))
		return DTO{}, err
	}
	return newDTO(*row, callerID), nil
}

// Remove deletes a dig location after verifying ownership and the absence
// of detail records still pinned to it.
func (s *Service) Remove(ctx context.Context, callerID, locationID string) error {
	if err := requireCaller(callerID, opRemove); err != nil {
		return err
	}

	existing, err := s.store.GetByID(ctx, locationID)
	if err != nil {
		s.logError(opRemove, err, zap.String("location_id", locationID))
		return err
	}
	if existing == nil {
		return apperr.NotFound(opRemove+".not_found", "dig location not found")
	}
	if existing.CreatedBy != callerID {
		return apperr.Forbidden(opRemove+".forbidden", "read-only: only the creator can delete this dig location")
	}

	for _, counter := range s.dependents {
		count, err := counter.CountByDigLocation(ctx, locationID)
		if err != nil {
			wrapped := apperr.Storage(opRemove+".dependents_failed", err)
			s.logError(opRemove, wrapped, zap.String("location_id", locationID))
			return wrapped
		}
		if count > 0 {
			return apperr.Conflict(opRemove+".dependents_exist", "dig location still has dependent records; remove them first")
		}
	}

	if err := s.store.Remove(ctx, locationID); err != nil {
		s.logError(opRemove, err, zap.String("location_id", locationID))
		return err
	}
	return nil
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
	s.logger.Error("dig locations service error", attrs...)
}
