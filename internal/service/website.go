package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/multisite_shop/internal/cache"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/internal/util"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type WebsiteService struct {
	UOW   *repo.UnitOfWork
	Cache WebsiteCache
}

func (s *WebsiteService) repo() *repo.Repository[models.Website] {
	return repo.Repo[models.Website](s.UOW)
}

func newSecretKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *WebsiteService) ensureUnique(ctx context.Context, field, value string, exceptID uint) error {
	scopes := []repo.Scope{repo.Eq(field, value), repo.NotDeleted()}
	if exceptID != 0 {
		scopes = append(scopes, repo.Where("id <> ?", exceptID))
	}
	taken, err := s.repo().Exists(ctx, scopes...)
	if err != nil {
		return err
	}
	if taken {
		return Validationf("website with %s %q already exists", strings.ReplaceAll(field, "_", " "), value)
	}
	return nil
}

func (s *WebsiteService) Create(ctx context.Context, caller Caller, req transport.CreateWebsiteRequest) (*models.Website, error) {
	l := logging.FromContext(ctx).With("svc", "website.create")
	if err := caller.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Validationf("website name is required")
	}
	urlPath := util.Slugify(req.UrlPath)
	if urlPath == "" {
		urlPath = util.Slugify(name)
	}
	if urlPath == "" {
		return nil, Validationf("website url path is required")
	}

	site := models.Website{
		Base:      models.Base{Active: true},
		CompanyID: req.CompanyID,
		Name:      name,
		UrlPath:   urlPath,
		SecretKey: newSecretKey(),
	}
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		company, err := repo.Repo[models.Company](s.UOW).FindBy(ctx, repo.ByID(req.CompanyID), repo.NotDeleted())
		if err != nil {
			return err
		}
		if company == nil {
			return NotFound("Company", req.CompanyID)
		}
		owned, err := s.repo().Exists(ctx, repo.Eq("company_id", company.ID), repo.NotDeleted())
		if err != nil {
			return err
		}
		if owned {
			return Validationf("company %q already has a website", company.Name)
		}
		if err := s.ensureUnique(ctx, "name", name, 0); err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, "url_path", urlPath, 0); err != nil {
			return err
		}
		return s.repo().Add(ctx, &site)
	})
	if err != nil {
		return nil, err
	}
	l.Info("website_created", "website_id", site.ID, "company_id", site.CompanyID)
	return &site, nil
}

// load returns the website when caller is a super-admin or belongs to it.
func (s *WebsiteService) load(ctx context.Context, caller Caller, id uint) (*models.Website, error) {
	if !caller.IsSuperAdmin() && !caller.CanAccessWebsite(id) {
		return nil, NotFound("Website", id)
	}
	site, err := s.repo().FindBy(ctx, repo.ByID(id), repo.NotDeleted())
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, NotFound("Website", id)
	}
	return site, nil
}

func (s *WebsiteService) Get(ctx context.Context, caller Caller, id uint) (*models.Website, error) {
	return s.load(ctx, caller, id)
}

func (s *WebsiteService) GetByURLPath(ctx context.Context, urlPath string) (*models.Website, error) {
	site, err := s.repo().FindBy(ctx, repo.Eq("url_path", util.Slugify(urlPath)), repo.ActiveOnly(), repo.NotDeleted())
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, NotFound("Website", urlPath)
	}
	return site, nil
}

func (s *WebsiteService) Update(ctx context.Context, caller Caller, id uint, req transport.UpdateWebsiteRequest) (*models.Website, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	var site *models.Website
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if site, err = s.load(ctx, caller, id); err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return Validationf("website name is required")
			}
			if err := s.ensureUnique(ctx, "name", name, id); err != nil {
				return err
			}
			site.Name = name
		}
		if req.UrlPath != nil {
			urlPath := util.Slugify(*req.UrlPath)
			if urlPath == "" {
				return Validationf("website url path is required")
			}
			if err := s.ensureUnique(ctx, "url_path", urlPath, id); err != nil {
				return err
			}
			site.UrlPath = urlPath
		}
		if req.Active != nil {
			if !caller.IsSuperAdmin() {
				return Forbidden("only a super admin can activate or deactivate websites")
			}
			site.Active = *req.Active
		}
		return s.repo().Update(ctx, site)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return site, nil
}

func (s *WebsiteService) RegenerateSecretKey(ctx context.Context, caller Caller, id uint) (*models.Website, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	var site *models.Website
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if site, err = s.load(ctx, caller, id); err != nil {
			return err
		}
		site.SecretKey = newSecretKey()
		return s.repo().Update(ctx, site)
	})
	return site, err
}

func (s *WebsiteService) Delete(ctx context.Context, caller Caller, id uint) error {
	l := logging.FromContext(ctx).With("svc", "website.delete")
	if err := caller.RequireSuperAdmin(); err != nil {
		return err
	}
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		site, err := s.load(ctx, caller, id)
		if err != nil {
			return err
		}
		return s.repo().SoftRemove(ctx, site)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	l.Info("website_deleted", "website_id", id)
	return nil
}

func (s *WebsiteService) Search(ctx context.Context, caller Caller, text string, paging repo.Paging) (repo.Page[models.Website], error) {
	if err := caller.RequireSuperAdmin(); err != nil {
		return repo.Page[models.Website]{}, err
	}
	return s.repo().Page(ctx, paging, repo.NotDeleted(), repo.Like("name", text))
}

// Exists reports whether an active website with id exists, consulting the cache first.
func (s *WebsiteService) Exists(ctx context.Context, id uint) (bool, error) {
	if s.Cache != nil {
		if e, ok := s.Cache.Get(ctx, id); ok {
			return e.Active, nil
		}
	}
	site, err := s.repo().FindBy(ctx, repo.ByID(id), repo.NotDeleted())
	if err != nil {
		return false, err
	}
	if site == nil {
		return false, nil
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, cache.WebsiteEntry{ID: site.ID, Name: site.Name, UrlPath: site.UrlPath, Active: site.Active})
	}
	return site.Active, nil
}

func (s *WebsiteService) invalidate(ctx context.Context, id uint) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
}
