package db

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/db/model"
)

var db *gorm.DB

// Setup opens the connection and migrates the schema. Must be called once
// from main before any store is constructed.
func Setup(conn string) error {
	var err error
	db, err = gorm.Open(postgres.Open(conn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Relationship{},
		&model.StatusEvent{},
		&model.Message{},
	)
}

func GetDB(ctx context.Context) *gorm.DB {
	return db.WithContext(ctx)
}

// Get returns the raw handle for store constructors.
func Get() *gorm.DB {
	return db
}
