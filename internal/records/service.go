package records

import (
	"context"
	"fmt"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"go.uber.org/zap"
)

const (
	opList   = "records.list"
	opGet    = "records.get"
	opCreate = "records.create"
	opUpdate = "records.update"
	opRemove = "records.remove"
)

var noOpLogger = zap.NewNop()

// ServiceConfig describes the dependencies of the detail record service.
type ServiceConfig struct {
	Store  *Store
	Logger *zap.Logger
}

// Service wraps the gateway with ownership enforcement and DTO shaping.
// Every mutation passes through the fetch-then-authorize sequence here.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService constructs the detail record service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("records: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{store: cfg.Store, logger: logger}, nil
}

// ListResult is one page of DTOs plus the total match count.
type ListResult struct {
	Rows  []DTO `json:"rows"`
	Total int64 `json:"total"`
}

// List returns matching detail records with isOwner derived per row.
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
func (s *Service) GetByID(ctx context.Context, callerID, recordID string) (*DTO, error) {
	if err := requireCaller(callerID, opGet); err != nil {
		return nil, err
	}

	row, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		s.logError(opGet, err, zap.String("record_id", recordID))
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	dto := newDTO(*row, callerID)
	return &dto, nil
}

// Create inserts a new detail record owned by the caller. Whether the
// referenced site exists is the store constraint's call, not re-checked
// here.
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
// record.
func (s *Service) Update(ctx context.Context, callerID, recordID string, patch PatchInput) (DTO, error) {
	if err := requireCaller(callerID, opUpdate); err != nil {
		return DTO{}, err
	}

	existing, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		s.logError(opUpdate, err, zap.String("record_id", recordID))
		return DTO{}, err
	}
	if existing == nil {
		return DTO{}, apperr.NotFound(opUpdate+".not_found", "detail record not found")
	}
	if existing.CreatedBy != callerID {
		return DTO{}, apperr.Forbidden(opUpdate+".forbidden", "read-only: only the creator can update this record")
	}

	row, err := s.store.Update(ctx, recordID, patch)
	if err != nil {
		s.logError(opUpdate, err, zap.String("record_id", recordID))
		return DTO{}, err
	}
	return newDTO(*row, callerID), nil
}

// Remove deletes a detail record after verifying ownership.
func (s *Service) Remove(ctx context.Context, callerID, recordID string) error {
	if err := requireCaller(callerID, opRemove); err != nil {
		return err
	}

	existing, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		s.logError(opRemove, err, zap.String("record_id", recordID))
		return err
	}
	if existing == nil {
		return apperr.NotFound(opRemove+".not_found", "detail record not found")
	}
	if existing.CreatedBy != callerID {
		return apperr.Forbidden(opRemove+".forbidden", "read-only: only the creator can delete this record")
	}

	if err := s.store.Remove(ctx, recordID); err != nil {
		s.logError(opRemove, err, zap.String("record_id", recordID))
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
	s.logger.Error("detail records service error", attrs...)
}
