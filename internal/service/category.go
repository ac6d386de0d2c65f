package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// CategoryService keeps the category tree of a website at two levels: roots and their children.
type CategoryService struct {
	UOW *repo.UnitOfWork
}

func (s *CategoryService) repo() *repo.Repository[models.Category] {
	return repo.Repo[models.Category](s.UOW)
}

func (s *CategoryService) find(ctx context.Context, websiteID, id uint) (*models.Category, error) {
	c, err := s.repo().FindBy(ctx, repo.ByID(id), repo.ByWebsite(websiteID), repo.NotDeleted())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFound("Category", id)
	}
	return c, nil
}

func (s *CategoryService) hasChildren(ctx context.Context, id uint) (bool, error) {
	return s.repo().Exists(ctx, repo.Eq("parent_id", id), repo.NotDeleted())
}

func (s *CategoryService) hasProducts(ctx context.Context, id uint) (bool, error) {
	return repo.Repo[models.Product](s.UOW).Exists(ctx, repo.Eq("category_id", id), repo.NotDeleted())
}

// checkParent enforces the two level rule for a category placed under parentID.
func (s *CategoryService) checkParent(ctx context.Context, websiteID, parentID uint) error {
	parent, err := s.find(ctx, websiteID, parentID)
	if err != nil {
		return err
	}
	if !parent.IsRoot() {
		return Validationf("category %q is a subcategory; only two levels of categories are allowed", parent.Name)
	}
	withProducts, err := s.hasProducts(ctx, parent.ID)
	if err != nil {
		return err
	}
	if withProducts {
		return Validationf("category %q holds products and cannot have subcategories", parent.Name)
	}
	return nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, websiteID uint, parentID *uint, name string, exceptID uint) error {
	scopes := []repo.Scope{repo.ByWebsite(websiteID), repo.NotDeleted(), repo.Where("LOWER(name) = ?", strings.ToLower(name))}
	if parentID == nil {
		scopes = append(scopes, repo.Where("parent_id IS NULL"))
	} else {
		scopes = append(scopes, repo.Eq("parent_id", *parentID))
	}
	if exceptID != 0 {
		scopes = append(scopes, repo.Where("id <> ?", exceptID))
	}
	taken, err := s.repo().Exists(ctx, scopes...)
	if err != nil {
		return err
	}
	if taken {
		return Validationf("category %q already exists", name)
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, caller Caller, req transport.CategoryRequest) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.create")
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, Validationf("category name is required")
	}

	category := req.ToModel(websiteID)
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		if category.ParentID != nil {
			if err := s.checkParent(ctx, websiteID, *category.ParentID); err != nil {
				return err
			}
		}
		if err := s.ensureUniqueName(ctx, websiteID, category.ParentID, category.Name, 0); err != nil {
			return err
		}
		return s.repo().Add(ctx, &category)
	})
	if err != nil {
		return nil, err
	}
	l.Info("category_created", "category_id", category.ID, "website_id", websiteID)
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, caller Caller, id uint, req transport.CategoryRequest) (*models.Category, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, Validationf("category name is required")
	}

	var category *models.Category
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if category, err = s.find(ctx, websiteID, id); err != nil {
			return err
		}
		if req.ParentID != nil {
			if *req.ParentID == id {
				return Validationf("category %q cannot be its own parent", category.Name)
			}
			withChildren, err := s.hasChildren(ctx, id)
			if err != nil {
				return err
			}
			if withChildren {
				return Validationf("category %q has subcategories and cannot become a subcategory", category.Name)
			}
			if err := s.checkParent(ctx, websiteID, *req.ParentID); err != nil {
				return err
			}
		}
		if err := s.ensureUniqueName(ctx, websiteID, req.ParentID, req.Name, id); err != nil {
			return err
		}
		category.Name = req.Name
		category.Description = req.Description
		category.ParentID = req.ParentID
		return s.repo().Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, caller Caller, id uint) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return err
	}
	return s.UOW.Do(ctx, func(ctx context.Context) error {
		category, err := s.find(ctx, websiteID, id)
		if err != nil {
			return err
		}
		withChildren, err := s.hasChildren(ctx, id)
		if err != nil {
			return err
		}
		if withChildren {
			return Validationf("category %q has subcategories and cannot be deleted", category.Name)
		}
		withProducts, err := s.hasProducts(ctx, id)
		if err != nil {
			return err
		}
		if withProducts {
			return Validationf("category %q has products and cannot be deleted", category.Name)
		}
		return s.repo().SoftRemove(ctx, category)
	})
}

func (s *CategoryService) Get(ctx context.Context, caller Caller, id uint) (*models.Category, error) {
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	c, err := s.repo().FindBy(ctx, repo.ByID(id), repo.ByWebsite(websiteID), repo.NotDeleted(),
		repo.Preload("Children", "deleted_date IS NULL"))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFound("Category", id)
	}
	return c, nil
}

// Tree returns the root categories of the caller's website with their children.
func (s *CategoryService) Tree(ctx context.Context, caller Caller) ([]models.Category, error) {
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	scopes := []repo.Scope{
		repo.ByWebsite(websiteID),
		repo.NotDeleted(),
		repo.Where("parent_id IS NULL"),
		repo.Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("deleted_date IS NULL").Order("name")
		}),
		repo.OrderBy("name"),
	}
	if !caller.IsAdmin() {
		scopes = append(scopes, repo.ActiveOnly())
	}
	return s.repo().Where(ctx, scopes...)
}

func (s *CategoryService) Search(ctx context.Context, caller Caller, text string, paging repo.Paging) (repo.Page[models.Category], error) {
	websiteID, err := caller.Website()
	if err != nil {
		return repo.Page[models.Category]{}, err
	}
	return s.repo().Page(ctx, paging, repo.ByWebsite(websiteID), repo.NotDeleted(), repo.Like("name", text))
}
