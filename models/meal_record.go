package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealRecord is one saved entry in a user's meal log. Records are
// append-only: no update or delete path exists anywhere in the API.
type MealRecord struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     string  `gorm:"type:uuid;index;not null" json:"owner_id"`
	Description string  `gorm:"not null" json:"description"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	// Stored as a string so the wire shape is stable RFC3339.
	CreatedAt string `json:"created_at"`
}

func (m *MealRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return nil
}
