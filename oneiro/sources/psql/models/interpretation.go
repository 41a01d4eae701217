// oneiro/sources/psql/models/interpretation.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interpretation is the persisted analysis result for one dream. Symbols
// and Insights are stored as JSON text so the row round-trips without a
// join table.
type Interpretation struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DreamID       uuid.UUID `json:"dream_id" gorm:"type:uuid;not null"`
	Dream         Dream     `json:"-" gorm:"foreignKey:DreamID;references:ID;constraint:OnDelete:CASCADE"`
	Symbols       string    `json:"symbols" gorm:"type:text;not null"`
	Insights      string    `json:"insights" gorm:"type:text;not null"`
	EmotionalTone string    `json:"emotional_tone" gorm:"type:varchar(64)"`
	Summary       string    `json:"summary" gorm:"type:text;not null"`
	Feedback      *string   `json:"feedback,omitempty" gorm:"type:varchar(16)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Interpretation) TableName() string {
	return "interpretations"
}

func (i *Interpretation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
