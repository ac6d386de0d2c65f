// Package testutil opens throwaway in-memory databases for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/multisite_shop/pkg/db"
)

// OpenDB returns a migrated in-memory SQLite database private to t. The pool is limited to one
// connection so that every statement sees the same memory database.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := db.GormConfig()
	cfg.PrepareStmt = false
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	gdb, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared&_pragma=foreign_keys(1)"), cfg)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(context.Background(), gdb, db.SuperAdmin{}))
	return gdb
}
