// Package testutil provides an in-memory database with the production schema for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/gooners/backend/internal/models"
	"github.com/anonto42/gooners/backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database and migrates every model.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given id and a username derived from it.
func CreateUser(t testing.TB, db *gorm.DB, id string) *models.User {
	t.Helper()
	email := id + "@example.com"
	user := &models.User{
		ID:       id,
		Email:    &email,
		Username: strings.ToLower(strings.NewReplacer(":", "_", "-", "_").Replace(id)),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return user
}

// Clock is a settable time source for code that takes a now func.
type Clock struct {
	t time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t.UTC()}
}

func (c *Clock) Now() time.Time {
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}
