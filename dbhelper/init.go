package dbhelper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dripmateapi/config"
	"dripmateapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DatabaseConfig) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on")
	default:
		dialector = postgres.Open(
			fmt.Sprintf(
				"postgres://%s:%s@%s:%s/%s",
				cfg.Username,
				cfg.Password,
				cfg.Host,
				cfg.Port,
				cfg.Name,
			),
		)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(300)
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
	}

	Migrate(db, &models.UserAccount{})
	Migrate(db, &models.UserPushToken{})
	Migrate(db, &models.WardrobeItem{})
	Migrate(db, &models.FavoriteOutfit{})

	return db
}

// SetupTestDB opens a throwaway sqlite database so tests need no running
// postgres.
func SetupTestDB() *gorm.DB {
	dir, err := os.MkdirTemp("", "dripmate-test-")
	if err != nil {
		panic(err)
	}
	os.Setenv("JWT_SECRET", TestJWTSecret)
	return SetupDB(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "test.db"),
	})
}

const TestJWTSecret = "test-secret"
