package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/tokens"
)

func newAuth(s *shop) *service.AuthService {
	return &service.AuthService{
		UOW:           s.uow,
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func TestAuthService_Login(t *testing.T) {
	s := newShop(t)
	svc := newAuth(s)
	ctx := context.Background()

	_, err := svc.Login(ctx, transport.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
	assert.True(t, errors.Is(err, service.ErrBadCredentials))
	assert.Equal(t, "invalid username or password", service.Message(err))

	res, err := svc.Login(ctx, transport.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	require.NotNil(t, claims.WebsiteID)
	assert.Equal(t, s.site.ID, *claims.WebsiteID)

	var stored models.RefreshToken
	require.NoError(t, s.db.Where("token_hash = ?", tokens.Sha256Hex(res.RefreshToken)).First(&stored).Error)
	assert.Equal(t, s.user.ID, stored.UserID)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	s := newShop(t)
	svc := newAuth(s)
	ctx := context.Background()

	first, err := svc.Login(ctx, transport.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.True(t, errors.Is(err, service.ErrUnauthorized), "a rotated token cannot be reused")

	require.NoError(t, svc.Logout(ctx, second.RefreshToken))
	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.True(t, errors.Is(err, service.ErrUnauthorized))

	_, err = svc.Refresh(ctx, "garbage")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
}

func TestAuthService_Register(t *testing.T) {
	s := newShop(t)
	svc := newAuth(s)
	ctx := context.Background()
	req := transport.RegisterRequest{Username: "carol", Email: "Carol@Example.com", FirstName: "Carol", LastName: "King", Password: "secret1"}

	user, err := svc.Register(ctx, s.site.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.RoleName())

	_, err = svc.Register(ctx, s.site.ID, req)
	assert.True(t, errors.Is(err, service.ErrValidation))

	short := req
	short.Username, short.Email, short.Password = "dave", "dave@example.com", "123"
	_, err = svc.Register(ctx, s.site.ID, short)
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = svc.Register(ctx, s.site.ID+100, req)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestUserService_ChangePassword(t *testing.T) {
	s := newShop(t)
	users := &service.UserService{UOW: s.uow}
	ctx := context.Background()

	err := users.ChangePassword(ctx, s.buyer, transport.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	require.Error(t, err)
	assert.Equal(t, "incorrect password", service.Message(err))

	require.NoError(t, users.ChangePassword(ctx, s.buyer, transport.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))
	_, err = newAuth(s).Login(ctx, transport.LoginRequest{Username: "alice", Password: "secret2"})
	assert.NoError(t, err)
}

func TestUserService_CreateByAdministrator(t *testing.T) {
	s := newShop(t)
	users := &service.UserService{UOW: s.uow}
	ctx := context.Background()

	u, err := users.Create(ctx, s.admin, transport.CreateUserRequest{
		Username: "erin", Email: "erin@example.com", Password: "secret1", Role: models.RoleUser,
	})
	require.NoError(t, err)
	require.NotNil(t, u.WebsiteID)
	assert.Equal(t, s.site.ID, *u.WebsiteID)

	_, err = users.Create(ctx, s.admin, transport.CreateUserRequest{
		Username: "root2", Email: "root2@example.com", Password: "secret1", Role: models.RoleSuperAdmin,
	})
	assert.True(t, errors.Is(err, service.ErrForbidden))

	_, err = users.Create(ctx, s.buyer, transport.CreateUserRequest{
		Username: "frank", Email: "frank@example.com", Password: "secret1", Role: models.RoleUser,
	})
	assert.True(t, errors.Is(err, service.ErrForbidden))

	require.NoError(t, users.Delete(ctx, s.admin, u.ID))
	_, err = users.Get(ctx, s.admin, u.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
