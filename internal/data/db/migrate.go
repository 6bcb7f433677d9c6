package db

import (
	"gorm.io/gorm"

	"github.com/notebook-buddy/backend/internal/domain"
)

// AutoMigrateAll migrates every table the application owns. It is shared
// between the Postgres service and the test harness so both agree on the
// schema.
func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.TextBlock{},
	)
}
