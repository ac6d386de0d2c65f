package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/multisite_shop/internal/events"
	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/repo"
	"github.com/Skotchmaster/multisite_shop/internal/search"
	"github.com/Skotchmaster/multisite_shop/internal/storage"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/internal/util"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ProductService struct {
	UOW    *repo.UnitOfWork
	Events EventPublisher
	Index  ProductIndex
	Files  FileMover
}

type ProductFilter struct {
	Text       string
	CategoryID *uint
	Paging     repo.Paging
}

func (s *ProductService) repo() *repo.Repository[models.Product] {
	return repo.Repo[models.Product](s.UOW)
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("product name is required")
	}
	if p.Price.IsNegative() {
		return Validationf("price of %q cannot be negative", p.Name)
	}
	if p.Discount.IsNegative() || p.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return Validationf("discount of %q must be between 0 and 100", p.Name)
	}
	if p.Quantity < 0 {
		return Validationf("quantity of %q cannot be negative", p.Name)
	}
	return nil
}

// checkLeafCategory makes sure products are only attached to categories without subcategories.
func (s *ProductService) checkLeafCategory(ctx context.Context, websiteID, categoryID uint) error {
	categories := repo.Repo[models.Category](s.UOW)
	c, err := categories.FindBy(ctx, repo.ByID(categoryID), repo.ByWebsite(websiteID), repo.NotDeleted())
	if err != nil {
		return err
	}
	if c == nil {
		return NotFound("Category", categoryID)
	}
	withChildren, err := categories.Exists(ctx, repo.Eq("parent_id", categoryID), repo.NotDeleted())
	if err != nil {
		return err
	}
	if withChildren {
		return Validationf("category %q has subcategories; products must belong to a leaf category", c.Name)
	}
	return nil
}

// afterWrite keeps the search index and the event stream in line with a committed product.
func (s *ProductService) afterWrite(ctx context.Context, eventType string, p models.Product) {
	l := logging.FromContext(ctx)
	if s.Index != nil {
		var err error
		if p.Active && !p.IsDeleted() {
			err = s.Index.Index(ctx, p)
		} else {
			err = s.Index.Delete(ctx, p.ID)
		}
		if err != nil {
			l.Warn("product_index_error", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, events.New(eventType, p.WebsiteID, p.ID, transport.ToProductResponse(p)))
}

func (s *ProductService) Create(ctx context.Context, caller Caller, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}

	product := req.ToModel(websiteID)
	product.Name = strings.TrimSpace(product.Name)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		if err := s.checkLeafCategory(ctx, websiteID, product.CategoryID); err != nil {
			return err
		}
		return s.repo().Add(ctx, &product)
	})
	if err != nil {
		return nil, err
	}
	l.Info("product_created", "product_id", product.ID, "website_id", websiteID)
	s.afterWrite(ctx, "product_created", product)
	return &product, nil
}

func (s *ProductService) find(ctx context.Context, websiteID, id uint, scopes ...repo.Scope) (*models.Product, error) {
	scopes = append([]repo.Scope{repo.ByID(id), repo.ByWebsite(websiteID), repo.NotDeleted()}, scopes...)
	p, err := s.repo().FindBy(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFound("Product", id)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, caller Caller, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if product, err = s.find(ctx, websiteID, id); err != nil {
			return err
		}
		req.Apply(product)
		product.Name = strings.TrimSpace(product.Name)
		if err := validateProduct(*product); err != nil {
			return err
		}
		if req.CategoryID != nil {
			if err := s.checkLeafCategory(ctx, websiteID, product.CategoryID); err != nil {
				return err
			}
		}
		return s.repo().Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_updated", *product)
	return product, nil
}

// Delete deactivates the product. Order history keeps referencing it.
func (s *ProductService) Delete(ctx context.Context, caller Caller, id uint) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return err
	}
	var product *models.Product
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if product, err = s.find(ctx, websiteID, id); err != nil {
			return err
		}
		return s.repo().SoftRemove(ctx, product)
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, "product_deleted", *product)
	return nil
}

func (s *ProductService) Get(ctx context.Context, caller Caller, id uint) (*models.Product, error) {
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	scopes := []repo.Scope{repo.Preload("Category"), repo.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") })}
	if !caller.IsAdmin() {
		scopes = append(scopes, repo.ActiveOnly())
	}
	return s.find(ctx, websiteID, id, scopes...)
}

func (s *ProductService) Search(ctx context.Context, caller Caller, f ProductFilter) (repo.Page[models.Product], error) {
	scopes := []repo.Scope{
		repo.ByOptionalWebsite(caller.WebsiteID),
		repo.NotDeleted(),
		repo.Like("name", f.Text),
		repo.Preload("Category"),
		repo.Preload("Images"),
	}
	if caller.WebsiteID == nil && !caller.IsSuperAdmin() {
		return repo.Page[models.Product]{}, Validationf("website-id header is required")
	}
	if !caller.IsAdmin() {
		scopes = append(scopes, repo.ActiveOnly())
	}
	if f.CategoryID != nil {
		scopes = append(scopes, repo.Eq("category_id", *f.CategoryID))
	}
	return s.repo().Page(ctx, f.Paging, scopes...)
}

// FullTextSearch queries Elasticsearch and loads the matching products in relevance order.
// Without a configured index it falls back to a name search in the database.
func (s *ProductService) FullTextSearch(ctx context.Context, caller Caller, text string, paging repo.Paging) (repo.Page[models.Product], error) {
	if caller.WebsiteID == nil && !caller.IsSuperAdmin() {
		return repo.Page[models.Product]{}, Validationf("website-id header is required")
	}
	if s.Index == nil {
		return s.Search(ctx, caller, ProductFilter{Text: text, Paging: paging})
	}

	page, size := util.Normalize(paging.PageNumber, paging.PageSize)
	from, _ := util.Calculate(page, size)
	res, err := s.Index.Search(ctx, search.Query{
		WebsiteID: caller.WebsiteID,
		Text:      text,
		From:      from,
		Size:      size,
	})
	if errors.Is(err, search.ErrDisabled) {
		return s.Search(ctx, caller, ProductFilter{Text: text, Paging: paging})
	}
	if err != nil {
		return repo.Page[models.Product]{}, err
	}

	out := repo.Page[models.Product]{
		Total:      res.Total,
		PageNumber: page,
		PageSize:   size,
		TotalPages: util.TotalPages(res.Total, size),
	}
	if len(res.IDs) == 0 {
		return out, nil
	}

	scopes := []repo.Scope{repo.ByIDs(res.IDs), repo.NotDeleted(), repo.ActiveOnly(), repo.ByOptionalWebsite(caller.WebsiteID), repo.Preload("Images")}
	found, err := s.repo().Where(ctx, scopes...)
	if err != nil {
		return repo.Page[models.Product]{}, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range res.IDs {
		if p, ok := byID[id]; ok {
			out.Items = append(out.Items, p)
		}
	}
	return out, nil
}

// UploadImage stores an image in the temporary area and returns its key for AddImages.
func (s *ProductService) UploadImage(ctx context.Context, caller Caller, filename string, body io.Reader, size int64, contentType string) (string, error) {
	if err := caller.RequireAdmin(); err != nil {
		return "", err
	}
	if s.Files == nil {
		return "", errors.New("image storage is not configured")
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExt[ext] {
		return "", Validationf("file type %q is not allowed", ext)
	}
	key := storage.TempPrefix + uuid.NewString() + ext
	if err := s.Files.Put(ctx, key, body, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// AddImages moves uploaded files from the temporary area to products/{website}/{product}/.
func (s *ProductService) AddImages(ctx context.Context, caller Caller, id uint, keys []string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.add_images", "product_id", id)
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, Validationf("no images to add")
	}
	if s.Files == nil {
		return nil, errors.New("image storage is not configured")
	}
	for _, k := range keys {
		clean, err := storage.CleanKey(k)
		if err != nil || !storage.IsTemp(clean) {
			return nil, Validationf("image %q is not an uploaded file", k)
		}
	}

	var (
		product *models.Product
		moved   []imageMove
	)
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		var err error
		if product, err = s.find(ctx, websiteID, id, repo.Preload("Images")); err != nil {
			return err
		}
		position := len(product.Images)
		images := make([]models.ProductImage, 0, len(keys))
		for _, k := range keys {
			clean, _ := storage.CleanKey(k)
			dst := storage.ProductImageKey(websiteID, product.ID, clean)
			if err := s.Files.Move(ctx, clean, dst); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return Validationf("uploaded image %q not found", k)
				}
				return err
			}
			moved = append(moved, imageMove{from: clean, to: dst})
			position++
			images = append(images, models.ProductImage{ProductID: product.ID, Path: dst, Position: position})
		}
		if err := repo.Repo[models.ProductImage](s.UOW).AddRange(ctx, images); err != nil {
			return err
		}
		product.Images = append(product.Images, images...)
		return nil
	})
	if err != nil {
		l.Warn("add_images_error", "error", err)
		s.restoreUploads(ctx, moved)
		return nil, err
	}
	return product, nil
}

type imageMove struct{ from, to string }

// restoreUploads puts files moved by a failed AddImages back into the temporary area.
func (s *ProductService) restoreUploads(ctx context.Context, moved []imageMove) {
	for i := len(moved) - 1; i >= 0; i-- {
		m := moved[i]
		if err := s.Files.Move(ctx, m.to, m.from); err != nil {
			logging.FromContext(ctx).Error("restore_upload_error", "from", m.to, "to", m.from, "error", err)
		}
	}
}

func (s *ProductService) RemoveImage(ctx context.Context, caller Caller, productID, imageID uint) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	websiteID, err := caller.Website()
	if err != nil {
		return err
	}
	var image *models.ProductImage
	err = s.UOW.Do(ctx, func(ctx context.Context) error {
		if _, err := s.find(ctx, websiteID, productID); err != nil {
			return err
		}
		images := repo.Repo[models.ProductImage](s.UOW)
		var err error
		image, err = images.FindBy(ctx, repo.ByID(imageID), repo.Eq("product_id", productID))
		if err != nil {
			return err
		}
		if image == nil {
			return NotFound("ProductImage", imageID)
		}
		return images.Remove(ctx, image)
	})
	if err != nil {
		return err
	}
	if s.Files != nil {
		if err := s.Files.Delete(ctx, image.Path); err != nil {
			logging.FromContext(ctx).Warn("remove_image_file_error", "path", image.Path, "error", err)
		}
	}
	return nil
}
