package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is one signed-in device of a user. Ch names the device's private
// notification channel, PushToken is set when the device registered for Expo
// push delivery.
type Session struct {
	UserID    uint           `json:"user_id" gorm:"primaryKey"`
	IP        string         `json:"ip" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Ch        string         `json:"-"`
	PushToken string         `json:"-"`
}
