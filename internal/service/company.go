package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// CompanyService manages the legal entities owning websites. Every operation is super-admin only.
type CompanyService struct {
	UOW *repo.UnitOfWork
}

func (s *CompanyService) repo() *repo.Repository[models.Company] {
	return repo.Repo[models.Company](s.UOW)
}

func (s *CompanyService) ensureUniqueName(ctx context.Context, name string, exceptID uint) error {
	scopes := []repo.Scope{repo.Eq("name", name), repo.NotDeleted()}
	if exceptID != 0 {
		scopes = append(scopes, repo.Where("id <> ?", exceptID))
	}
	taken, err := s.repo().Exists(ctx, scopes...)
	if err != nil {
		return err
	}
	if taken {
		return Validationf("company with name %q already exists", name)
	}
	return nil
}

func (s *CompanyService) Create(ctx context.Context, caller Caller, req transport.CompanyRequest) (*models.Company, error) {
	l := logging.FromContext(ctx).With("svc", "company.create")
	if err := caller.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, Validationf("company name is required")
	}

	company := req.ToModel()
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		if err := s.ensureUniqueName(ctx, company.Name, 0); err != nil {
			return err
		}
		return s.repo().Add(ctx, &company)
	})
	if err != nil {
		return nil, err
	}
	l.Info("company_created", "company_id", company.ID)
	return &company, nil
}

func (s *CompanyService) load(ctx context.Context, id uint) (*models.Company, error) {
	c, err := s.repo().FindBy(ctx, repo.ByID(id), repo.NotDeleted(), repo.Preload("Website", "deleted_date IS NULL"))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFound("Company", id)
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, caller Caller, id uint) (*models.Company, error) {
	if err := caller.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *CompanyService) Update(ctx context.Context, caller Caller, id uint, req transport.CompanyRequest) (*models.Company, error) {
	if err := caller.RequireSuperAdmin(); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, Validationf("company name is required")
	}

	var company *models.Company
	err := s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if company, err = s.load(ctx, id); err != nil {
			return err
		}
		if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
			return err
		}
		company.Name = req.Name
		company.Description = req.Description
		company.Email = req.Email
		company.Phone = req.Phone
		return s.repo().Update(ctx, company)
	})
	return company, err
}

// Delete soft deletes a company that no longer owns a website.
func (s *CompanyService) Delete(ctx context.Context, caller Caller, id uint) error {
	if err := caller.RequireSuperAdmin(); err != nil {
		return err
	}
	return s.UOW.Do(ctx, func(ctx context.Context) error {
		company, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if company.Website != nil {
			return Validationf("company %q still owns website %q", company.Name, company.Website.Name)
		}
		return s.repo().SoftRemove(ctx, company)
	})
}

func (s *CompanyService) Search(ctx context.Context, caller Caller, text string, paging repo.Paging) (repo.Page[models.Company], error) {
	if err := caller.RequireSuperAdmin(); err != nil {
		return repo.Page[models.Company]{}, err
	}
	return s.repo().Page(ctx, paging, repo.NotDeleted(), repo.Like("name", text), repo.Preload("Website", "deleted_date IS NULL"))
}
