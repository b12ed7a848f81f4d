package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser   = "user"
	RoleMentor = "mentor"
)

// Message is one persisted utterance, user or mentor. Audio is never
// stored; it only rides along on the in-flight turn response.
type Message struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Seq       int64     `json:"-" gorm:"autoIncrement;uniqueIndex"`
	UserID    int       `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
