package locations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/ids"
	"github.com/substrata-labs/fieldbook/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnID          = "id"
	columnName        = "name"
	columnDescription = "description"
	columnUpdatedAt   = "updated_at"

	queryByID      = columnID + " = ?"
	queryBySite    = "site_id = ?"
	queryByCreator = "created_by = ?"
	searchClause   = `name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
)

// StoreConfig describes the dependencies of the dig location gateway.
type StoreConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider ids.Provider
}

// Store translates validated dig location requests into storage queries.
type Store struct {
	db    *gorm.DB
	clock func() time.Time
	ids   ids.Provider
}

// NewStore constructs the dig location gateway.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("locations: database handle is required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("locations: id provider is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{db: cfg.Database, clock: clock, ids: cfg.IDProvider}, nil
}

// List returns one page of matching rows plus the total match count.
func (s *Store) List(ctx context.Context, callerID string, request ListRequest) ([]DigLocation, int64, error) {
	var total int64
	if err := s.filtered(ctx, callerID, request).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("locations.list.count_failed", err)
	}

	var rows []DigLocation
	err := s.filtered(ctx, callerID, request).
		Order(request.OrderBy + " " + request.OrderDir.SQL()).
		Order(columnID + " ASC").
		Offset(request.Window.Offset()).
		Limit(request.Window.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperr.Storage("locations.list.query_failed", err)
	}

	return rows, total, nil
}

func (s *Store) filtered(ctx context.Context, callerID string, request ListRequest) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&DigLocation{})
	if request.SiteID != "" {
		tx = tx.Where(queryBySite, request.SiteID)
	}
	if request.Search != "" {
		pattern := query.LikePattern(request.Search)
		tx = tx.Where(searchClause, pattern, pattern)
	}
	if request.OwnerOnly {
		tx = tx.Where(queryByCreator, callerID)
	}
	return tx
}

// GetByID fetches a single row, returning nil without error when absent.
func (s *Store) GetByID(ctx context.Context, locationID string) (*DigLocation, error) {
	var row DigLocation
	err := s.db.WithContext(ctx).Where(queryByID, locationID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("locations.get.query_failed", err)
	}
	return &row, nil
}

// Create inserts a new row with createdBy forced to the caller.
func (s *Store) Create(ctx context.Context, callerID string, input CreateInput) (*DigLocation, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return nil, apperr.Storage("locations.create.id_generation_failed", err)
	}

	now := s.clock().UTC()
	row := DigLocation{
		ID:          id,
		SiteID:      input.SiteID,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return nil, apperr.Storage("locations.create.insert_failed", err)
	}
	return &row, nil
}

// Update applies only the fields explicitly present in the patch, always
// advancing updated_at.
func (s *Store) Update(ctx context.Context, locationID string, patch PatchInput) (*DigLocation, error) {
	changes := map[string]interface{}{
		columnUpdatedAt: s.clock().UTC(),
	}
	if value, ok := patch.Name.Value(); ok {
		changes[columnName] = value
	}
	field.Assign(changes, columnDescription, patch.Description)

	result := s.db.WithContext(ctx).Model(&DigLocation{}).Where(queryByID, locationID).Updates(changes)
	if result.Error != nil {
		return nil, apperr.Storage("locations.update.update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("locations.update.not_found", "dig location not found")
	}

	row, err := s.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.NotFound("locations.update.not_found", "dig location not found")
	}
	return row, nil
}

// Remove deletes the row if present.
func (s *Store) Remove(ctx context.Context, locationID string) error {
	result := s.db.WithContext(ctx).Where(queryByID, locationID).Delete(&DigLocation{})
	if result.Error != nil {
		return apperr.Storage("locations.remove.delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("locations.remove.not_found", "dig location not found")
	}
	return nil
}

// CountBySite reports how many dig locations still belong to a site.
// Implements the site service's dependent check.
func (s *Store) CountBySite(ctx context.Context, siteID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&DigLocation{}).Where(queryBySite, siteID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
