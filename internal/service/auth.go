package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/multisite_shop/pkg/hash"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
	"github.com/Skotchmaster/multisite_shop/pkg/tokens"
)

type AuthService struct {
	UOW           *repo.UnitOfWork
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (r LoginResult) Response() transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:      r.AccessToken,
		RefreshToken:     r.RefreshToken,
		AccessExpiresAt:  r.AccessExp,
		RefreshExpiresAt: r.RefreshExp,
		UserID:           r.User.ID,
		Role:             r.User.RoleName(),
		WebsiteID:        r.User.WebsiteID,
	}
}

// issue signs a token pair for user and stores the refresh token hash. It must run inside uow.Do.
func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	now := time.Now()
	subject := strconv.FormatUint(uint64(user.ID), 10)

	accessExp := now.Add(s.AccessTTL)
	access, err := tokens.SignAccessToken(subject, user.RoleName(), user.WebsiteID, accessExp, s.AccessSecret)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(s.RefreshTTL)
	refresh, jti, err := tokens.SignRefreshToken(subject, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	stored := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: refreshExp.UTC(),
	}
	if err := repo.Repo[models.RefreshToken](s.UOW).Add(ctx, stored); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}

func (s *AuthService) activeUser(ctx context.Context, scopes ...repo.Scope) (*models.User, error) {
	scopes = append(scopes, repo.ActiveOnly(), repo.NotDeleted(), repo.Preload("Role"))
	return repo.Repo[models.User](s.UOW).FindBy(ctx, scopes...)
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)

	var res *LoginResult
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		user, err := s.activeUser(ctx, repo.Eq("username", strings.TrimSpace(req.Username)))
		if err != nil {
			return err
		}
		if user == nil || !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return ErrBadCredentials
		}
		res, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Info("login_success", "user_id", res.User.ID)
	return res, nil
}

// Refresh rotates the refresh token: the presented token is revoked and a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, Unauthorized("invalid refresh token")
	}

	var res *LoginResult
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		tokensRepo := repo.Repo[models.RefreshToken](s.UOW)
		stored, err := tokensRepo.FindBy(ctx, repo.Eq("jti", claims.ID), repo.ForUpdate())
		if err != nil {
			return err
		}
		if stored == nil || stored.TokenHash != tokens.Sha256Hex(refreshToken) || !stored.Usable(time.Now()) {
			l.Warn("refresh_failed", "status", 401, "reason", "token expired or revoked")
			return Unauthorized("refresh token expired or revoked")
		}
		stored.Revoked = true
		if err := tokensRepo.Update(ctx, stored); err != nil {
			return err
		}

		user, err := s.activeUser(ctx, repo.ByID(stored.UserID))
		if err != nil {
			return err
		}
		if user == nil {
			return Unauthorized("user is not active")
		}
		res, err = s.issue(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout revokes the refresh token. Unknown or already revoked tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return Unauthorized("invalid refresh token")
	}
	_, err = repo.Repo[models.RefreshToken](s.UOW).UpdateColumns(ctx,
		map[string]any{"revoked": true},
		repo.Eq("jti", claims.ID), repo.Eq("token_hash", tokens.Sha256Hex(refreshToken)))
	return err
}

// Register creates a customer account in websiteID.
func (s *AuthService) Register(ctx context.Context, websiteID uint, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "website_id", websiteID)

	var user *models.User
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		site, err := repo.Repo[models.Website](s.UOW).FindBy(ctx, repo.ByID(websiteID), repo.ActiveOnly(), repo.NotDeleted())
		if err != nil {
			return err
		}
		if site == nil {
			return NotFound("Website", websiteID)
		}
		user, err = createUser(ctx, s.UOW, newUser{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Password:  req.Password,
			Role:      models.RoleUser,
			WebsiteID: &websiteID,
		})
		return err
	})
	if err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return nil, err
	}
	l.Info("register_success", "user_id", user.ID)
	return user, nil
}
