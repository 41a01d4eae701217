// oneiro/sources/psql/dao/dao.dream.go
package dao

import (
	"context"

	"oneiro/oneiro/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DreamDAO struct {
	DB *gorm.DB
}

func NewDreamDAO(db *gorm.DB) *DreamDAO {
	return &DreamDAO{DB: db}
}

// CreateDreamWithInterpretation stores the narrative and its analysis in
// one transaction so a dream never exists without its interpretation.
func (dao *DreamDAO) CreateDreamWithInterpretation(ctx context.Context, dream *models.Dream, interp *models.Interpretation) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dream).Error; err != nil {
			return err
		}
		interp.DreamID = dream.ID
		return tx.Create(interp).Error
	})
}

func (dao *DreamDAO) GetDreamByID(ctx context.Context, id uuid.UUID) (*models.Dream, error) {
	var dream models.Dream
	err := dao.DB.WithContext(ctx).First(&dream, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dream, nil
}

func (dao *DreamDAO) GetInterpretationByID(ctx context.Context, id uuid.UUID) (*models.Interpretation, error) {
	var interp models.Interpretation
	err := dao.DB.WithContext(ctx).First(&interp, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interp, nil
}

func (dao *DreamDAO) ListDreamsByUser(ctx context.Context, userID int) ([]models.Dream, error) {
	var dreams []models.Dream
	err := dao.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&dreams).Error
	if err != nil {
		return nil, err
	}
	return dreams, nil
}

// SetFeedback overwrites any previous rating on the interpretation.
func (dao *DreamDAO) SetFeedback(ctx context.Context, interpretationID uuid.UUID, kind string) error {
	return dao.DB.WithContext(ctx).
		Model(&models.Interpretation{}).
		Where("id = ?", interpretationID).
		Update("feedback", kind).Error
}
