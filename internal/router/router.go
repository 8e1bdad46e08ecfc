package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts.
type Controllers struct {
	Auth         *controller.AuthController
	Profile      *controller.ProfileController
	User         *controller.UserController
	Catalog      *controller.CatalogController
	Plan         *controller.PlanController
	Cart         *controller.CartController
	Order        *controller.OrderController
	Consultation *controller.ConsultationController
	News         *controller.NewsController
	Report       *controller.ReportController
	Upload       *controller.UploadController
	Feed         *controller.FeedController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	pageViews      service.PageViewService
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	pageViews service.PageViewService,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		pageViews:      pageViews,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	ctl := r.controllers
	login := r.authMiddleware.RequireLogin()
	optional := r.authMiddleware.OptionalAuthenticate()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(r.config.Session))
	if r.pageViews != nil {
		v1.Use(middleware.PageViewMiddleware(r.pageViews))
	}
	{
		v1.GET("/home", optional, ctl.Catalog.Home)
		v1.GET("/categories", ctl.Catalog.ListCategories)
		v1.GET("/categories/:slug/products", ctl.Catalog.ListByCategory)

		products := v1.Group("/products")
		{
			products.GET("", ctl.Catalog.ListProducts)
			products.GET("/check-name", ctl.Catalog.CheckProductName)
			products.GET("/:slug", ctl.Catalog.GetProduct)
			products.GET("/:slug/plans", ctl.Catalog.ListProductPlans)
		}

		news := v1.Group("/news")
		{
			news.GET("", ctl.News.List)
			news.GET("/:slug", ctl.News.Get)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/refresh", ctl.Auth.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), ctl.Auth.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), ctl.Auth.Me)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.POST("/add", login, ctl.Cart.AddToCart)
			cart.PUT("/items/:product_id", login, ctl.Cart.UpdateCartItem)
			cart.DELETE("/items/:product_id", login, ctl.Cart.RemoveCartItem)
			cart.POST("/remove", login, ctl.Cart.RemoveMany)
			cart.DELETE("", login, ctl.Cart.ClearCart)
			cart.POST("/checkout", login, ctl.Order.Checkout)
		}

		orders := v1.Group("/orders")
		orders.Use(login)
		{
			orders.GET("", ctl.Order.MyOrders)
			orders.GET("/:id", ctl.Order.MyOrder)
		}

		v1.GET("/subscriptions", login, ctl.Plan.MySubscriptions)
		v1.POST("/consultations", login, ctl.Consultation.Create)

		profile := v1.Group("/profile")
		profile.Use(login)
		{
			profile.GET("", ctl.Profile.GetProfile)
			profile.PUT("", ctl.Profile.UpdateProfile)
			profile.POST("/images", ctl.Profile.AddImage)
			profile.DELETE("/images/:id", ctl.Profile.DeleteImage)
		}

		v1.POST("/uploads/presigned-url", r.authMiddleware.Authenticate(), ctl.Upload.GeneratePresignedURL)

		r.staffRoutes(v1.Group("/staff"))
	}

	return router
}

func (r *Router) staffRoutes(staff *gin.RouterGroup) {
	ctl := r.controllers
	staff.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireStaff())

	staff.POST("/categories", ctl.Catalog.CreateCategory)
	staff.PUT("/categories/:id", ctl.Catalog.UpdateCategory)
	staff.DELETE("/categories/:id", ctl.Catalog.DeleteCategory)

	staff.GET("/products", ctl.Catalog.StaffListProducts)
	staff.POST("/products", ctl.Catalog.CreateProduct)
	staff.GET("/products/:id", ctl.Catalog.StaffGetProduct)
	staff.PUT("/products/:id", ctl.Catalog.UpdateProduct)
	staff.DELETE("/products/:id", ctl.Catalog.DeleteProduct)
	staff.POST("/products/:id/images", ctl.Catalog.AddProductImage)
	staff.DELETE("/product-images/:id", ctl.Catalog.DeleteProductImage)

	staff.GET("/products/:id/plans", ctl.Plan.ListPlans)
	staff.POST("/products/:id/plans", ctl.Plan.CreatePlan)
	staff.PUT("/plans/:id", ctl.Plan.UpdatePlan)
	staff.DELETE("/plans/:id", ctl.Plan.DeletePlan)
	staff.GET("/subscriptions", ctl.Plan.ListSubscriptions)

	staff.GET("/orders", ctl.Order.ListOrders)
	staff.POST("/orders/bulk-cancel", ctl.Order.BulkCancel)
	staff.GET("/orders/:id", ctl.Order.GetOrder)
	staff.POST("/orders/:id/confirm", ctl.Order.ConfirmOrder)
	staff.POST("/orders/:id/cancel", ctl.Order.CancelOrder)

	staff.GET("/consultations", ctl.Consultation.List)
	staff.GET("/consultations/:id", ctl.Consultation.Get)
	staff.POST("/consultations/:id/status", ctl.Consultation.SetStatus)
	staff.POST("/consultations/:id/done", ctl.Consultation.MarkDone)
	staff.POST("/consultations/:id/order", ctl.Consultation.CreateOrder)

	staff.GET("/users", ctl.User.ListUsers)
	staff.GET("/users/:id", ctl.User.GetUser)
	staff.PUT("/users/:id", ctl.User.UpdateUser)
	staff.POST("/users/:id/toggle-active", ctl.User.ToggleActive)

	staff.GET("/news/:id", ctl.News.StaffGet)
	staff.POST("/news", ctl.News.Create)
	staff.PUT("/news/:id", ctl.News.Update)
	staff.DELETE("/news/:id", ctl.News.Delete)

	staff.GET("/reports", ctl.Report.Report)
	staff.GET("/reports/export", ctl.Report.Export)

	if ctl.Feed != nil {
		staff.GET("/feed", ctl.Feed.Connect)
	}
}

// corsMiddleware allows the configured frontends. An empty list or "*"
// opens the API to any origin.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.SessionIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.SessionIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
