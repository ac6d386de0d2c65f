package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	pkg_hash "github.com/Skotchmaster/multisite_shop/pkg/hash"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

func Entities() []any {
	return []any{
		&models.Role{},
		&models.Company{},
		&models.Website{},
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.AnonymousCart{},
		&models.Order{},
		&models.OrderDetail{},
	}
}

type SuperAdmin struct {
	Username string
	Password string
	Email    string
}

// Migrate creates the schema and seeds the roles. The super-admin user is created only when
// both credentials are set and no user with that name exists yet.
func Migrate(ctx context.Context, db *gorm.DB, admin SuperAdmin) error {
	l := logging.FromContext(ctx).With("component", "db.migrate")

	if err := db.WithContext(ctx).AutoMigrate(Entities()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := make(map[string]models.Role, len(models.RoleNames))
		for _, name := range models.RoleNames {
			role := models.Role{Name: name}
			if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			roles[name] = role
		}

		if admin.Username == "" || admin.Password == "" {
			l.Info("superadmin_seed_skipped", "reason", "credentials not configured")
			return nil
		}

		var existing models.User
		err := tx.Where("username = ?", admin.Username).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup superadmin: %w", err)
		}

		pwHash, err := pkg_hash.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("hash superadmin password: %w", err)
		}
		email := admin.Email
		if email == "" {
			email = admin.Username + "@localhost"
		}
		user := models.User{
			Base:         models.Base{Active: true},
			Username:     admin.Username,
			Email:        email,
			FirstName:    "Super",
			LastName:     "Admin",
			PasswordHash: pwHash,
			RoleID:       roles[models.RoleSuperAdmin].ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}
		l.Info("superadmin_seeded", "username", admin.Username)
		return nil
	})
}
