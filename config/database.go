package config

import (
	"github.com/chaperone-app/chaperone-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the database and migrates the schema. Postgres is used when
// DBURL is set, otherwise the SQLite file from the config.
func Connect(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DBURL != "" {
		dialector = postgres.Open(cfg.DBURL)
	} else {
		dialector = sqlite.Open(cfg.SQLiteFile)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&models.User{}, &models.Vocabulary{}, &models.Association{}, &models.Option{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
