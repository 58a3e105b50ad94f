package records

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
	columnSiteID      = "site_id"
	columnDigLocation = "dig_location_id"
	columnTitle       = "title"
	columnNotes       = "notes"
	columnLatitude    = "latitude"
	columnLongitude   = "longitude"
	columnRecordedAt  = "recorded_at"
	columnUpdatedAt   = "updated_at"

	queryByID          = columnID + " = ?"
	queryBySite        = columnSiteID + " = ?"
	queryByDigLocation = columnDigLocation + " = ?"
	queryByCreator     = "created_by = ?"
	searchClause       = `title LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\'`
)

// StoreConfig describes the dependencies of the detail record gateway.
type StoreConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider ids.Provider
}

// Store translates validated detail record requests into storage queries.
// Referential integrity against sites and dig locations belongs to the
// backing store's constraints, not to query logic here.
type Store struct {
	db    *gorm.DB
	clock func() time.Time
	ids   ids.Provider
}

// NewStore constructs the detail record gateway.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("records: database handle is required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("records: id provider is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{db: cfg.Database, clock: clock, ids: cfg.IDProvider}, nil
}

// List returns one page of matching rows plus the total match count.
func (s *Store) List(ctx context.Context, callerID string, request ListRequest) ([]DetailRecord, int64, error) {
	var total int64
	if err := s.filtered(ctx, callerID, request).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("records.list.count_failed", err)
	}

	var rows []DetailRecord
	err := s.filtered(ctx, callerID, request).
		Order(request.OrderBy + " " + request.OrderDir.SQL()).
		Order(columnID + " ASC").
		Offset(request.Window.Offset()).
		Limit(request.Window.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperr.Storage("records.list.query_failed", err)
	}

	return rows, total, nil
}

func (s *Store) filtered(ctx context.Context, callerID string, request ListRequest) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&DetailRecord{})
	if request.SiteID != "" {
		tx = tx.Where(queryBySite, request.SiteID)
	}
	if request.DigLocationID != "" {
		tx = tx.Where(queryByDigLocation, request.DigLocationID)
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
func (s *Store) GetByID(ctx context.Context, recordID string) (*DetailRecord, error) {
	var row DetailRecord
	err := s.db.WithContext(ctx).Where(queryByID, recordID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("records.get.query_failed", err)
	}
	return &row, nil
}

// Create inserts a new row with createdBy forced to the caller.
func (s *Store) Create(ctx context.Context, callerID string, input CreateInput) (*DetailRecord, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return nil, apperr.Storage("records.create.id_generation_failed", err)
	}

	now := s.clock().UTC()
	row := DetailRecord{
		ID:            id,
		SiteID:        input.SiteID,
		DigLocationID: input.DigLocationID,
		Title:         input.Title,
		Notes:         input.Notes,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		RecordedAt:    input.RecordedAt,
		CreatedBy:     callerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return nil, apperr.Storage("records.create.insert_failed", err)
	}
	return &row, nil
}

// Update applies only the fields explicitly present in the patch, always
// advancing updated_at.
func (s *Store) Update(ctx context.Context, recordID string, patch PatchInput) (*DetailRecord, error) {
	changes := map[string]interface{}{
		columnUpdatedAt: s.clock().UTC(),
	}
	if value, ok := patch.SiteID.Value(); ok {
		changes[columnSiteID] = value
	}
	if value, ok := patch.Title.Value(); ok {
		changes[columnTitle] = value
	}
	field.Assign(changes, columnDigLocation, patch.DigLocationID)
	field.Assign(changes, columnNotes, patch.Notes)
	field.Assign(changes, columnLatitude, patch.Latitude)
	field.Assign(changes, columnLongitude, patch.Longitude)
	field.Assign(changes, columnRecordedAt, patch.RecordedAt)

	result := s.db.WithContext(ctx).Model(&DetailRecord{}).Where(queryByID, recordID).Updates(changes)
	if result.Error != nil {
		return nil, apperr.Storage("records.update.update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("records.update.not_found", "detail record not found")
	}

	row, err := s.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.NotFound("records.update.not_found", "detail record not found")
	}
	return row, nil
}

// Remove deletes the row if present.
func (s *Store) Remove(ctx context.Context, recordID string) error {
	result := s.db.WithContext(ctx).Where(queryByID, recordID).Delete(&DetailRecord{})
	if result.Error != nil {
		return apperr.Storage("records.remove.delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("records.remove.not_found", "detail record not found")
	}
	return nil
}

// CountBySite reports how many detail records still belong to a site.
// Implements the site service's dependent check.
func (s *Store) CountBySite(ctx context.Context, siteID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&DetailRecord{}).Where(queryBySite, siteID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByDigLocation reports how many detail records are still pinned to
// a dig location. Implements the dig location service's dependent check.
func (s *Store) CountByDigLocation(ctx context.Context, locationID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&DetailRecord{}).Where(queryByDigLocation, locationID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
