package dao

import (
	"context"

	"oneiro/oneiro/sources/psql/models"

	"gorm.io/gorm"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

func (dao *MessageDAO) SaveMessage(ctx context.Context, sessionID string, userID int, role, content string) (*models.ConversationMessage, error) {
	msg := models.ConversationMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
	}
	if err := dao.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *MessageDAO) GetHistoryBySession(ctx context.Context, sessionID string) ([]models.ConversationMessage, error) {
	var history []models.ConversationMessage
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp asc").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
