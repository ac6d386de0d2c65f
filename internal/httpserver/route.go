package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/multisite_shop/internal/middleware/auth"
	"github.com/Skotchmaster/multisite_shop/internal/middleware/csrf"
)

type Deps struct {
	JWTSecret []byte
	Sites     authmw.WebsiteChecker
	// Ready reports whether the database answers; nil means always ready.
	Ready func(ctx context.Context) error

	AuthHandler          *AuthHTTP
	CompanyHandler       *CompanyHTTP
	WebsiteHandler       *WebsiteHTTP
	UserHandler          *UserHTTP
	CategoryHandler      *CategoryHTTP
	ProductHandler       *ProductHTTP
	CartHandler          *CartHTTP
	AnonymousCartHandler *AnonymousCartHTTP
	OrderHandler         *OrderHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	tenant := authmw.Tenant(d.Sites)
	public := []echo.MiddlewareFunc{authmw.OptionalLogin(d.JWTSecret), tenant}
	private := []echo.MiddlewareFunc{authmw.RequireLogin(d.JWTSecret), tenant}
	admin := append(private[:len(private):len(private)], authmw.AdminOnly())
	superAdmin := append(private[:len(private):len(private)], authmw.SuperAdminOnly())

	v1 := e.Group("/api/v1", csrf.Middleware(csrf.Config{Secure: d.AuthHandler.SecureCookies}))

	auth := v1.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/register", d.AuthHandler.Register, public...)

	companies := v1.Group("/companies", superAdmin...)
	companies.GET("", d.CompanyHandler.Search)
	companies.GET("/:id", d.CompanyHandler.Get)
	companies.POST("", d.CompanyHandler.Create)
	companies.PUT("/:id", d.CompanyHandler.Update)
	companies.DELETE("/:id", d.CompanyHandler.Delete)

	v1.GET("/websites/by-path/:urlPath", d.WebsiteHandler.GetByURLPath)
	websites := v1.Group("/websites", admin...)
	websites.GET("", d.WebsiteHandler.Search)
	websites.GET("/:id", d.WebsiteHandler.Get)
	websites.POST("", d.WebsiteHandler.Create)
	websites.PUT("/:id", d.WebsiteHandler.Update)
	websites.POST("/:id/secret-key", d.WebsiteHandler.RegenerateSecretKey)
	websites.DELETE("/:id", d.WebsiteHandler.Delete)

	users := v1.Group("/users", private...)
	users.GET("/me", d.UserHandler.Me)
	users.PUT("/me/password", d.UserHandler.ChangePassword)
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Update)
	users.GET("", d.UserHandler.Search, authmw.AdminOnly())
	users.POST("", d.UserHandler.Create, authmw.AdminOnly())
	users.DELETE("/:id", d.UserHandler.Delete, authmw.AdminOnly())

	categories := v1.Group("/categories")
	categories.GET("", d.CategoryHandler.Tree, public...)
	categories.GET("/search", d.CategoryHandler.Search, public...)
	categories.GET("/:id", d.CategoryHandler.Get, public...)
	categories.POST("", d.CategoryHandler.Create, admin...)
	categories.PUT("/:id", d.CategoryHandler.Update, admin...)
	categories.DELETE("/:id", d.CategoryHandler.Delete, admin...)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.Search, public...)
	products.GET("/search", d.ProductHandler.FullTextSearch, public...)
	products.GET("/:id", d.ProductHandler.Get, public...)
	products.POST("", d.ProductHandler.Create, admin...)
	products.PATCH("/:id", d.ProductHandler.Patch, admin...)
	products.DELETE("/:id", d.ProductHandler.Delete, admin...)
	products.POST("/images", d.ProductHandler.Upload, admin...)
	products.POST("/:id/images", d.ProductHandler.AddImages, admin...)
	products.DELETE("/:id/images/:imageId", d.ProductHandler.RemoveImage, admin...)

	carts := v1.Group("/carts", private...)
	carts.GET("", d.CartHandler.Get)
	carts.POST("", d.CartHandler.Add)
	carts.POST("/merge", d.CartHandler.Merge)
	carts.PUT("/:id", d.CartHandler.UpdateQuantity)
	carts.DELETE("/:id", d.CartHandler.Remove)
	carts.DELETE("", d.CartHandler.Clear)

	anon := v1.Group("/anonymous-carts", public...)
	anon.POST("", d.AnonymousCartHandler.New)
	anon.GET("/:anonymousId", d.AnonymousCartHandler.Get)
	anon.POST("/:anonymousId", d.AnonymousCartHandler.Add)
	anon.PUT("/:anonymousId/:id", d.AnonymousCartHandler.UpdateQuantity)
	anon.DELETE("/:anonymousId/:id", d.AnonymousCartHandler.Remove)
	anon.DELETE("/:anonymousId", d.AnonymousCartHandler.Clear)

	orders := v1.Group("/orders", private...)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("/my", d.OrderHandler.Mine)
	orders.GET("", d.OrderHandler.Search, authmw.AdminOnly())
	orders.GET("/:id", d.OrderHandler.Get)
	orders.PUT("/:id", d.OrderHandler.Update)
	orders.PUT("/:id/state", d.OrderHandler.ChangeState)
}
