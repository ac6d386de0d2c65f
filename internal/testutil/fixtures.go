package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	pkg_hash "github.com/Skotchmaster/multisite_shop/pkg/hash"
)

func Website(t testing.TB, gdb *gorm.DB, name string) *models.Website {
	t.Helper()

	company := models.Company{Base: models.Base{Active: true}, Name: name + " Inc"}
	require.NoError(t, gdb.Create(&company).Error)

	site := models.Website{
		Base:      models.Base{Active: true},
		CompanyID: company.ID,
		Name:      name,
		UrlPath:   name,
		SecretKey: uuid.NewString(),
	}
	require.NoError(t, gdb.Create(&site).Error)
	return &site
}

func Role(t testing.TB, gdb *gorm.DB, name string) models.Role {
	t.Helper()

	var role models.Role
	require.NoError(t, gdb.Where("name = ?", name).First(&role).Error)
	return role
}

func User(t testing.TB, gdb *gorm.DB, websiteID *uint, role, username, password string) *models.User {
	t.Helper()

	pwHash, err := pkg_hash.HashPassword(password)
	require.NoError(t, err)

	r := Role(t, gdb, role)
	user := models.User{
		Base:         models.Base{Active: true},
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Tester",
		PasswordHash: pwHash,
		RoleID:       r.ID,
		WebsiteID:    websiteID,
		Role:         &r,
	}
	require.NoError(t, gdb.Omit("Role").Create(&user).Error)
	return &user
}

func Category(t testing.TB, gdb *gorm.DB, websiteID uint, name string, parentID *uint) *models.Category {
	t.Helper()

	c := models.Category{
		Base:      models.Base{Active: true},
		WebsiteID: websiteID,
		Name:      name,
		ParentID:  parentID,
	}
	require.NoError(t, gdb.Create(&c).Error)
	return &c
}

func Product(t testing.TB, gdb *gorm.DB, websiteID, categoryID uint, name string, price int64, quantity int) *models.Product {
	t.Helper()

	p := models.Product{
		Base:       models.Base{Active: true},
		WebsiteID:  websiteID,
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Discount:   decimal.Zero,
		Quantity:   quantity,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return &p
}

func CartLine(t testing.TB, gdb *gorm.DB, websiteID, userID, productID uint, quantity int) *models.Cart {
	t.Helper()

	c := models.Cart{
		Base:      models.Base{Active: true},
		WebsiteID: websiteID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	require.NoError(t, gdb.Create(&c).Error)
	return &c
}

func Reload[T any](t testing.TB, gdb *gorm.DB, id uint) T {
	t.Helper()

	var out T
	require.NoError(t, gdb.First(&out, id).Error)
	return out
}
