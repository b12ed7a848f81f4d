package dao

import (
	"context"

	"mentormate/mentormate/sources/psql/models"

	"gorm.io/gorm"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

// Append persists one utterance and returns the stored row with its
// server-assigned id and timestamp.
func (dao *MessageDAO) Append(ctx context.Context, userID int, role, text string) (*models.Message, error) {
	msg := models.Message{
		UserID: userID,
		Role:   role,
		Text:   text,
	}
	if err := dao.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByUser returns the full conversation for one user, oldest first.
// Ties on created_at fall back to seq so insertion order holds.
func (dao *MessageDAO) ListByUser(ctx context.Context, userID int) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, seq ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
