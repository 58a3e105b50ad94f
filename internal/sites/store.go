package sites

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
)

const (
	columnID          = "id"
	columnName        = "name"
	columnDescription = "description"
	columnLatitude    = "latitude"
	columnLongitude   = "longitude"
	columnUpdatedAt   = "updated_at"

	queryByID      = columnID + " = ?"
	queryByCreator = "created_by = ?"
	searchClause   = `name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
	mapPinColumns  = "id, name, latitude, longitude, created_by, updated_at"
)

// StoreConfig describes the dependencies of the site gateway.
type StoreConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider ids.Provider
}

// Store translates validated site requests into storage queries. It owns
// id and timestamp assignment; authorization stays one layer up.
type Store struct {
	db    *gorm.DB
	clock func() time.Time
	ids   ids.Provider
}

// NewStore constructs the site gateway.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("sites: database handle is required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("sites: id provider is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{db: cfg.Database, clock: clock, ids: cfg.IDProvider}, nil
}

// List returns one page of matching rows plus the total match count.
func (s *Store) List(ctx context.Context, callerID string, request ListRequest) ([]Site, int64, error) {
	var total int64
	if err := s.filtered(ctx, callerID, request).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage("sites.list.count_failed", err)
	}

	var rows []Site
	err := s.filtered(ctx, callerID, request).
		Order(request.OrderBy + " " + request.OrderDir.SQL()).
		Order(columnID + " ASC").
		Offset(request.Window.Offset()).
		Limit(request.Window.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperr.Storage("sites.list.query_failed", err)
	}

	return rows, total, nil
}

func (s *Store) filtered(ctx context.Context, callerID string, request ListRequest) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&Site{})
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
func (s *Store) GetByID(ctx context.Context, siteID string) (*Site, error) {
	var row Site
	err := s.db.WithContext(ctx).Where(queryByID, siteID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("sites.get.query_failed", err)
	}
	return &row, nil
}

// Create inserts a new row. createdBy is forced to the caller regardless
// of anything the payload carried.
func (s *Store) Create(ctx context.Context, callerID string, input CreateInput) (*Site, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return nil, apperr.Storage("sites.create.id_generation_failed", err)
	}

	now := s.clock().UTC()
	row := Site{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, apperr.Storage("sites.create.insert_failed", err)
	}
	return &row, nil
}

// Update applies only the fields explicitly present in the patch, always
// advancing updated_at.
func (s *Store) Update(ctx context.Context, siteID string, patch PatchInput) (*Site, error) {
	changes := map[string]interface{}{
		columnUpdatedAt: s.clock().UTC(),
	}
	if value, ok := patch.Name.Value(); ok {
		changes[columnName] = value
	}
	field.Assign(changes, columnDescription, patch.Description)
	field.Assign(changes, columnLatitude, patch.Latitude)
	field.Assign(changes, columnLongitude, patch.Longitude)

	result := s.db.WithContext(ctx).Model(&Site{}).Where(queryByID, siteID).Updates(changes)
	if result.Error != nil {
		return nil, apperr.Storage("sites.update.update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("sites.update.not_found", "site not found")
	}

	row, err := s.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.NotFound("sites.update.not_found", "site not found")
	}
	return row, nil
}

// Remove deletes the row if present.
func (s *Store) Remove(ctx context.Context, siteID string) error {
	result := s.db.WithContext(ctx).Where(queryByID, siteID).Delete(&Site{})
	if result.Error != nil {
		return apperr.Storage("sites.remove.delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("sites.remove.not_found", "site not found")
	}
	return nil
}

// MapPins returns every site in map projection order.
func (s *Store) MapPins(ctx context.Context) ([]Site, error) {
	var rows []Site
	err := s.db.WithContext(ctx).
		Select(mapPinColumns).
		Order(columnUpdatedAt + " DESC").
		Order(columnID + " ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Storage("sites.map_pins.query_failed", err)
	}
	return rows, nil
}
