// oneiro/sources/psql/models/dream.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dream is one captured narrative as the user submitted it.
type Dream struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Locale    string    `json:"locale" gorm:"type:varchar(16);default:'en'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Dream) TableName() string {
	return "dreams"
}

func (d *Dream) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
