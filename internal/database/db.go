package database

import (
	"log"

	"crm-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Account{},
		&model.Contact{},
		&model.Pipeline{},
		&model.Stage{},
		&model.Deal{},
		&model.StageChange{},
		&model.Lead{},
		&model.Note{},
		&model.Activity{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
