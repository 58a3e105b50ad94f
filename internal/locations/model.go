package locations

import (
	"time"

	"github.com/substrata-labs/fieldbook/internal/sites"
)

// DigLocation is a named sub-location within an investigation site.
type DigLocation struct {
	ID          string    `gorm:"column:id;primaryKey;size:36;not null"`
	SiteID      string    `gorm:"column:site_id;size:36;not null;index"`
	Name        string    `gorm:"column:name;size:120;not null"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedBy   string    `gorm:"column:created_by;size:190;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;index"`

	Site *sites.Site `gorm:"foreignKey:SiteID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName provides the explicit table binding for GORM.
func (DigLocation) TableName() string {
	return "dig_locations"
}

// DTO is the caller-facing dig location representation.
type DTO struct {
	ID          string    `json:"id"`
	SiteID      string    `json:"siteId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsOwner     bool      `json:"isOwner"`
}

func newDTO(row DigLocation, callerID string) DTO {
	return DTO{
		ID:          row.ID,
		SiteID:      row.SiteID,
		Name:        row.Name,
		Description: row.Description,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		IsOwner:     row.CreatedBy == callerID,
	}
}
