package db

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	pkg_hash "github.com/Skotchmaster/multisite_shop/pkg/hash"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := GormConfig()
	cfg.PrepareStmt = false
	gdb, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), cfg)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func TestMigrate_SeedsRolesAndSuperAdmin(t *testing.T) {
	gdb := openSQLite(t)
	ctx := context.Background()
	admin := SuperAdmin{Username: "root", Password: "Secret123"}

	require.NoError(t, Migrate(ctx, gdb, admin))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, gdb, admin))

	var roles []models.Role
	require.NoError(t, gdb.Order("id").Find(&roles).Error)
	require.Len(t, roles, 3)
	assert.Equal(t, models.RoleSuperAdmin, roles[0].Name)

	var users []models.User
	require.NoError(t, gdb.Preload("Role").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.Nil(t, users[0].WebsiteID)
	assert.Equal(t, models.RoleSuperAdmin, users[0].RoleName())
	assert.True(t, users[0].Active)
	assert.True(t, pkg_hash.CheckPassword(users[0].PasswordHash, "Secret123"))
}

func TestMigrate_WithoutSuperAdmin(t *testing.T) {
	gdb := openSQLite(t)

	require.NoError(t, Migrate(context.Background(), gdb, SuperAdmin{}))

	var count int64
	require.NoError(t, gdb.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
