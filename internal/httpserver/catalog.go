package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) Tree(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.tree")

	roots, err := h.Svc.Tree(ctx, authmw.CallerFrom(c))
	if err != nil {
		return fail(l, "category_tree_error", err)
	}
	return ok(c, transport.ToCategoryTree(roots))
}

func (h *CategoryHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.search")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "search_categories_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), req.Search, req.Paging())
	if err != nil {
		return fail(l, "search_categories_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToCategoryResponse))
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	category, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return ok(c, transport.ToCategoryResponse(*category))
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_category_error", err)
	}
	category, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	return created(c, transport.ToCategoryResponse(*category))
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	var req transport.CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "update_category_error", err)
	}
	category, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return ok(c, transport.ToCategoryResponse(*category))
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_category_error", err)
	}
	if err := h.Svc.Delete(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return ok[any](c, nil)
}

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	var req transport.ProductSearchRequest
	var err error
	if req.PageRequest, err = bindPage(c); err != nil {
		return fail(l, "search_products_error", err)
	}
	if req.CategoryID, err = queryID(c, "categoryId"); err != nil {
		return fail(l, "search_products_error", err)
	}
	page, err := h.Svc.Search(ctx, authmw.CallerFrom(c), service.ProductFilter{
		Text:       req.Search,
		CategoryID: req.CategoryID,
		Paging:     req.Paging(),
	})
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return ok(c, transport.ToPaged(page, transport.ToProductResponse))
}

// FullTextSearch answers /products/search?search=... from the search index.
func (h *ProductHTTP) FullTextSearch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.full_text_search")

	req, err := bindPage(c)
	if err != nil {
		return fail(l, "full_text_search_error", err)
	}
	page, err := h.Svc.FullTextSearch(ctx, authmw.CallerFrom(c), req.Search, req.Paging())
	if err != nil {
		return fail(l, "full_text_search_error", err)
	}
	l.Info("full_text_search_success", "total", page.Total)
	return ok(c, transport.ToPaged(page, transport.ToProductResponse))
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	product, err := h.Svc.Get(ctx, authmw.CallerFrom(c), id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return ok(c, transport.ToProductResponse(*product))
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "create_product_error", err)
	}
	product, err := h.Svc.Create(ctx, authmw.CallerFrom(c), req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	l.Info("create_product_success", "product_id", product.ID)
	return created(c, transport.ToProductResponse(*product))
}

func (h *ProductHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "patch_product_error", err)
	}
	var req transport.PatchProductRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "patch_product_error", err)
	}
	product, err := h.Svc.Update(ctx, authmw.CallerFrom(c), id, req)
	if err != nil {
		return fail(l, "patch_product_error", err)
	}
	l.Info("patch_product_success", "product_id", id)
	return ok(c, transport.ToProductResponse(*product))
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_product_error", err)
	}
	if err := h.Svc.Delete(ctx, authmw.CallerFrom(c), id); err != nil {
		return fail(l, "delete_product_error", err)
	}
	l.Info("delete_product_success", "product_id", id)
	return ok[any](c, nil)
}

// Upload stores the multipart "file" field in the temporary area.
func (h *ProductHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.upload")

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(l, "upload_error", service.Validationf("file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(l, "upload_error", err)
	}
	defer f.Close()

	key, err := h.Svc.UploadImage(ctx, authmw.CallerFrom(c), fh.Filename, f, fh.Size, fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return fail(l, "upload_error", err)
	}
	l.Info("upload_success", "key", key)
	return created(c, transport.UploadResponse{Key: key})
}

func (h *ProductHTTP) AddImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add_images")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "add_images_error", err)
	}
	var req transport.AddImagesRequest
	if err := bindBody(c, &req); err != nil {
		return fail(l, "add_images_error", err)
	}
	product, err := h.Svc.AddImages(ctx, authmw.CallerFrom(c), id, req.Keys)
	if err != nil {
		return fail(l, "add_images_error", err)
	}
	return ok(c, transport.ToProductResponse(*product))
}

func (h *ProductHTTP) RemoveImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.remove_image")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "remove_image_error", err)
	}
	imageID, err := pathID(c, "imageId")
	if err != nil {
		return fail(l, "remove_image_error", err)
	}
	if err := h.Svc.RemoveImage(ctx, authmw.CallerFrom(c), id, imageID); err != nil {
		return fail(l, "remove_image_error", err)
	}
	return ok[any](c, nil)
}
