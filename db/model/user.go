package model

type User struct {
	Base
	Email    string    `gorm:"uniqueIndex;size:254" json:"email"`
	Username string    `gorm:"size:64" json:"username"`
	Pass     string    `json:"-"`
	IsOnline bool      `json:"is_online"`
	Sessions []Session `json:"-"`
}
