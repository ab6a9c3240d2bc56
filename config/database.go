package config

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/engcard-api/models"
)

// Connect opens the configured database and migrates the card table.
func Connect(env *Environment) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch env.DBDriver {
	case "sqlite", "":
		dialector = sqlite.Open(env.DBPath)
	case "postgres":
		if env.DBURL == "" {
			return nil, errors.New("DB_URL is required for the postgres driver")
		}
		dialector = postgres.Open(env.DBURL)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", env.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if isMemorySQLite(env) {
		// every new connection to :memory: is a fresh, empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.Card{}); err != nil {
		return nil, errors.Wrap(err, "failed to auto migrate database")
	}

	return db, nil
}

func isMemorySQLite(env *Environment) bool {
	if env.DBDriver != "sqlite" && env.DBDriver != "" {
		return false
	}
	return env.DBPath == ":memory:" || env.DBPath == "file::memory:"
}
