package store

import (
	"github.com/prakritea/decomposr/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the database and returns the handle. The handle is
// passed down to handlers explicitly rather than held as a package global
// so tests can substitute their own.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Project{},
		&models.Epic{},
		&models.Task{},
		&models.Notification{},
	}

	migrator := db.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := db.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
