package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openscholar/paperview/internal/infrastructure/database/models"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
}

func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PaperSnapshot{},
		&models.ProposalSnapshot{},
	)
}
