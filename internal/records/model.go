package records

import (
	"time"

	"github.com/substrata-labs/fieldbook/internal/locations"
	"github.com/substrata-labs/fieldbook/internal/sites"
)

// DetailRecord is a persisted field note. It cannot exist without a
// parent site; the dig location binding is optional and independent.
type DetailRecord struct {
	ID            string     `gorm:"column:id;primaryKey;size:36;not null"`
	SiteID        string     `gorm:"column:site_id;size:36;not null;index"`
	DigLocationID *string    `gorm:"column:dig_location_id;size:36;index"`
	Title         string     `gorm:"column:title;size:200;not null"`
	Notes         *string    `gorm:"column:notes;type:text"`
	Latitude      *float64   `gorm:"column:latitude"`
	Longitude     *float64   `gorm:"column:longitude"`
	RecordedAt    *time.Time `gorm:"column:recorded_at"`
	CreatedBy     string     `gorm:"column:created_by;size:190;not null;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;index"`

	Site        *sites.Site            `gorm:"foreignKey:SiteID;references:ID;constraint:OnDelete:RESTRICT"`
	DigLocation *locations.DigLocation `gorm:"foreignKey:DigLocationID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName provides the explicit table binding for GORM.
func (DetailRecord) TableName() string {
	return "detail_records"
}

// DTO is the caller-facing detail record representation.
type DTO struct {
	ID            string     `json:"id"`
	SiteID        string     `json:"siteId"`
	DigLocationID *string    `json:"digLocationId"`
	Title         string     `json:"title"`
	Notes         *string    `json:"notes"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	RecordedAt    *time.Time `json:"recordedAt"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	IsOwner       bool       `json:"isOwner"`
}

func newDTO(row DetailRecord, callerID string) DTO {
	return DTO{
		ID:            row.ID,
		SiteID:        row.SiteID,
		DigLocationID: row.DigLocationID,
		Title:         row.Title,
		Notes:         row.Notes,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		RecordedAt:    row.RecordedAt,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		IsOwner:       row.CreatedBy == callerID,
	}
}
