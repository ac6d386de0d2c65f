package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/multisite_shop/pkg/hash"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

const minPasswordLen = 6

type UserService struct {
	UOW *repo.UnitOfWork
}

type newUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
	Role      string
	WebsiteID *uint
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return Validationf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func roleByName(ctx context.Context, uow *repo.UnitOfWork, name string) (*models.Role, error) {
	role, err := repo.Repo[models.Role](uow).FindBy(ctx, repo.Eq("name", name))
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, Validationf("unknown role %q", name)
	}
	return role, nil
}

// createUser validates and inserts a user. It must run inside uow.Do.
func createUser(ctx context.Context, uow *repo.UnitOfWork, in newUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" {
		return nil, Validationf("username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, Validationf("email %q is not valid", in.Email)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Role == models.RoleSuperAdmin && in.WebsiteID != nil {
		return nil, Validationf("a super admin cannot belong to a website")
	}
	if in.Role != models.RoleSuperAdmin && in.WebsiteID == nil {
		return nil, Validationf("website is required for role %s", in.Role)
	}

	if in.WebsiteID != nil {
		site, err := repo.Repo[models.Website](uow).FindBy(ctx, repo.ByID(*in.WebsiteID), repo.NotDeleted())
		if err != nil {
			return nil, err
		}
		if site == nil {
			return nil, NotFound("Website", *in.WebsiteID)
		}
	}

	users := repo.Repo[models.User](uow)
	taken, err := users.Exists(ctx, repo.Eq("username", in.Username))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, Validationf("user with username %q already exists", in.Username)
	}
	taken, err = users.Exists(ctx, repo.Eq("email", in.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, Validationf("user with email %q already exists", in.Email)
	}

	role, err := roleByName(ctx, uow, in.Role)
	if err != nil {
		return nil, err
	}
	pwHash, err := pkg_hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Base:         models.Base{Active: true},
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		PasswordHash: pwHash,
		RoleID:       role.ID,
		WebsiteID:    in.WebsiteID,
	}
	if err := users.Add(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *UserService) Create(ctx context.Context, caller Caller, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	in := newUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
		WebsiteID: req.WebsiteID,
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	if caller.IsSuperAdmin() {
		if in.WebsiteID == nil && in.Role != models.RoleSuperAdmin {
			in.WebsiteID = caller.WebsiteID
		}
	} else {
		if caller.WebsiteID == nil {
			return nil, Forbidden("administrator has no website")
		}
		if in.Role == models.RoleSuperAdmin {
			return nil, Forbidden("only a super admin can create super admins")
		}
		if in.WebsiteID != nil && *in.WebsiteID != *caller.WebsiteID {
			return nil, Forbidden("cannot create users in another website")
		}
		in.WebsiteID = caller.WebsiteID
	}

	var user *models.User
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = createUser(ctx, s.UOW, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Info("user_created", "user_id", user.ID, "role", in.Role)
	return user, nil
}

// load returns a user visible to caller: the caller itself or, for administrators, users of
// the caller's website.
func (s *UserService) load(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	user, err := repo.Repo[models.User](s.UOW).FindBy(ctx, repo.ByID(id), repo.NotDeleted(), repo.Preload("Role"))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFound("User", id)
	}
	if user.ID == caller.UserID || (caller.IsSuperAdmin() && caller.WebsiteID == nil) {
		return user, nil
	}
	if !caller.IsAdmin() || user.WebsiteID == nil || !caller.CanAccessWebsite(*user.WebsiteID) {
		return nil, NotFound("User", id)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	return s.load(ctx, caller, id)
}

func (s *UserService) Update(ctx context.Context, caller Caller, id uint, req transport.UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.load(ctx, caller, id)
		if err != nil {
			return err
		}

		users := repo.Repo[models.User](s.UOW)
		if req.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*req.Email))
			if _, err := mail.ParseAddress(email); err != nil {
				return Validationf("email %q is not valid", email)
			}
			if email != user.Email {
				taken, err := users.Exists(ctx, repo.Eq("email", email))
				if err != nil {
					return err
				}
				if taken {
					return Validationf("user with email %q already exists", email)
				}
				user.Email = email
			}
		}
		if req.FirstName != nil {
			user.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if req.Active != nil || req.Role != nil {
			if err := caller.RequireAdmin(); err != nil {
				return err
			}
			if user.ID == caller.UserID {
				return Validationf("you cannot change your own role or status")
			}
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
		if req.Role != nil && *req.Role != user.RoleName() {
			if *req.Role == models.RoleSuperAdmin || user.RoleName() == models.RoleSuperAdmin {
				return Validationf("the super admin role cannot be granted or revoked")
			}
			role, err := roleByName(ctx, s.UOW, *req.Role)
			if err != nil {
				return err
			}
			user.RoleID = role.ID
			user.Role = role
		}
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete deactivates the user and revokes every refresh token it holds.
func (s *UserService) Delete(ctx context.Context, caller Caller, id uint) error {
	l := logging.FromContext(ctx).With("svc", "user.delete")
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if id == caller.UserID {
		return Validationf("you cannot delete yourself")
	}
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		user, err := s.load(ctx, caller, id)
		if err != nil {
			return err
		}
		if err := repo.Repo[models.User](s.UOW).SoftRemove(ctx, user); err != nil {
			return err
		}
		_, err = repo.Repo[models.RefreshToken](s.UOW).UpdateColumns(ctx,
			map[string]any{"revoked": true},
			repo.Eq("user_id", user.ID), repo.Eq("revoked", false))
		return err
	})
	if err != nil {
		return err
	}
	l.Info("user_deleted", "user_id", id)
	return nil
}

func (s *UserService) Search(ctx context.Context, caller Caller, text string, paging repo.Paging) (repo.Page[models.User], error) {
	if err := caller.RequireAdmin(); err != nil {
		return repo.Page[models.User]{}, err
	}
	scopes := []repo.Scope{
		repo.NotDeleted(),
		repo.ByOptionalWebsite(caller.WebsiteID),
		repo.Preload("Role"),
	}
	if text = strings.TrimSpace(text); text != "" {
		scopes = append(scopes, repo.Where(
			"LOWER(first_name || ' ' || last_name) LIKE ? ESCAPE '\\' OR LOWER(username) LIKE ? ESCAPE '\\'",
			repo.LikePattern(text), repo.LikePattern(text)))
	}
	return repo.Repo[models.User](s.UOW).Page(ctx, paging, scopes...)
}

func (s *UserService) ChangePassword(ctx context.Context, caller Caller, req transport.ChangePasswordRequest) error {
	l := logging.FromContext(ctx).With("svc", "user.change_password", "user_id", caller.UserID)
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}
	return s.UOW.Do(ctx, func(ctx context.Context) error {
		users := repo.Repo[models.User](s.UOW)
		user, err := users.FindBy(ctx, repo.ByID(caller.UserID), repo.ActiveOnly(), repo.NotDeleted())
		if err != nil {
			return err
		}
		if user == nil {
			return NotFound("User", caller.UserID)
		}
		if !pkg_hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			l.Warn("change_password_error", "status", 400, "reason", "incorrect password")
			return Validationf("incorrect password")
		}
		pwHash, err := pkg_hash.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = pwHash
		return users.Update(ctx, user)
	})
}
