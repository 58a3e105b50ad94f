package sites

import "time"

// Site is the persisted investigation site row. Ownership metadata lives
// on the row; the derived isOwner flag never does.
type Site struct {
	ID          string    `gorm:"column:id;primaryKey;size:36;not null"`
	Name        string    `gorm:"column:name;size:120;not null"`
	Description *string   `gorm:"column:description;type:text"`
	Latitude    *float64  `gorm:"column:latitude"`
	Longitude   *float64  `gorm:"column:longitude"`
	CreatedBy   string    `gorm:"column:created_by;size:190;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;index"`
}

// TableName provides the explicit table binding for GORM.
func (Site) TableName() string {
	return "investigation_sites"
}

// DTO is the caller-facing site representation.
type DTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsOwner     bool      `json:"isOwner"`
}

func newDTO(row Site, callerID string) DTO {
	return DTO{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		IsOwner:     row.CreatedBy == callerID,
	}
}

// MapPin is the trimmed site projection served to the map view.
type MapPin struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsOwner   bool     `json:"isOwner"`
}
