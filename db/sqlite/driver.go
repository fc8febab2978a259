package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open creates a GORM *DB backed by SQLite (mattn/go-sqlite3, requires CGO).
// File databases get WAL journaling and a single writer connection;
// "file:" URIs and ":memory:" are passed through untouched.
func Open(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	dsn := path
	file := isPlainFile(path)
	if file {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create dir: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if file {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func isPlainFile(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}
