package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret  = "test-secret"
	testSuccessURL = "/checkout/success"
)

type recordedEvent struct {
	Type string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSigner struct {
	err error
}

func (f *fakeSigner) PresignUpload(_ context.Context, filename, contentType, folder string) (*storage.PresignedURLResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := storage.Folders[folder]; !ok {
		return nil, storage.ErrInvalidFolder
	}
	key := folder + "/" + filename
	return &storage.PresignedURLResponse{
		UploadURL: "https://upload.example.com/" + key,
		FileURL:   "https://cdn.example.com/" + key,
		Key:       key,
	}, nil
}

type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	publisher *recordingPublisher
	signer    *fakeSigner
}

// setupControllerTest wires every controller over an in-memory database the
// way the production router does.
func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	planRepo := repository.NewPlanRepository(testDB)
	subRepo := repository.NewSubscriptionRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	consultRepo := repository.NewConsultationRepository(testDB)
	newsRepo := repository.NewNewsRepository(testDB)

	store := session.NewMemoryCartStore()
	publisher := &recordingPublisher{}
	signer := &fakeSigner{}

	authService := service.NewAuthService(userRepo, nil, testJWTSecret, 15*time.Minute, 24*time.Hour)
	accountService := service.NewAccountService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, newsRepo)
	planService := service.NewPlanService(planRepo, productRepo, subRepo)
	cartService := service.NewCartService(store, productRepo, planRepo)
	orderService := service.NewOrderService(orderRepo, subRepo, store, publisher, testDB)
	consultationService := service.NewConsultationService(consultRepo, productRepo, userRepo, orderRepo, publisher)
	reportService := service.NewReportService(repository.NewReportRepository(testDB), time.UTC)

	authCtrl := NewAuthController(authService)
	profileCtrl := NewProfileController(accountService)
	userCtrl := NewUserController(accountService, authService)
	catalogCtrl := NewCatalogController(catalogService, planService)
	planCtrl := NewPlanController(planService)
	cartCtrl := NewCartController(cartService)
	orderCtrl := NewOrderController(orderService, authService, testSuccessURL)
	consultCtrl := NewConsultationController(consultationService, authService)
	newsCtrl := NewNewsController(service.NewNewsService(newsRepo), authService)
	reportCtrl := NewReportController(reportService, authService)
	uploadCtrl := NewUploadController(signer)

	auth := middleware.NewAuthMiddleware(testJWTSecret, nil).WithAccounts(authService)
	login := auth.RequireLogin()

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(config.SessionConfig{CookieName: "sid", TTL: time.Hour}))

	v1.POST("/auth/register", authCtrl.Register)
	v1.POST("/auth/login", authCtrl.Login)
	v1.POST("/auth/refresh", authCtrl.Refresh)
	v1.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	v1.GET("/auth/me", auth.Authenticate(), authCtrl.Me)

	v1.GET("/products", catalogCtrl.ListProducts)
	v1.GET("/products/check-name", catalogCtrl.CheckProductName)
	v1.GET("/products/:slug", catalogCtrl.GetProduct)
	v1.GET("/products/:slug/plans", catalogCtrl.ListProductPlans)
	v1.GET("/news", newsCtrl.List)
	v1.GET("/news/:slug", newsCtrl.Get)

	v1.GET("/cart", cartCtrl.GetCart)
	v1.POST("/cart/add", login, cartCtrl.AddToCart)
	v1.PUT("/cart/items/:product_id", login, cartCtrl.UpdateCartItem)
	v1.DELETE("/cart/items/:product_id", login, cartCtrl.RemoveCartItem)
	v1.POST("/cart/checkout", login, orderCtrl.Checkout)
	v1.GET("/orders", login, orderCtrl.MyOrders)
	v1.GET("/orders/:id", login, orderCtrl.MyOrder)
	v1.GET("/subscriptions", login, planCtrl.MySubscriptions)
	v1.POST("/consultations", login, consultCtrl.Create)
	v1.GET("/profile", login, profileCtrl.GetProfile)
	v1.PUT("/profile", login, profileCtrl.UpdateProfile)
	v1.POST("/uploads/presigned-url", auth.Authenticate(), uploadCtrl.GeneratePresignedURL)

	staff := v1.Group("/staff", auth.Authenticate(), auth.RequireStaff())
	staff.POST("/categories", catalogCtrl.CreateCategory)
	staff.POST("/products", catalogCtrl.CreateProduct)
	staff.PUT("/products/:id", catalogCtrl.UpdateProduct)
	staff.POST("/products/:id/plans", planCtrl.CreatePlan)
	staff.GET("/orders", orderCtrl.ListOrders)
	staff.POST("/orders/bulk-cancel", orderCtrl.BulkCancel)
	staff.POST("/orders/:id/confirm", orderCtrl.ConfirmOrder)
	staff.POST("/orders/:id/cancel", orderCtrl.CancelOrder)
	staff.POST("/consultations/:id/done", consultCtrl.MarkDone)
	staff.GET("/users", userCtrl.ListUsers)
	staff.POST("/users/:id/toggle-active", userCtrl.ToggleActive)
	staff.POST("/news", newsCtrl.Create)
	staff.GET("/reports", reportCtrl.Report)
	staff.GET("/reports/export", reportCtrl.Export)

	return &testEnv{db: testDB, router: r, publisher: publisher, signer: signer}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	session string
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	httpReq := httptest.NewRequest(req.method, req.path, &body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.session != "" {
		httpReq.Header.Set(middleware.SessionIDHeader, req.session)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httpReq)
	return w
}

// createUser inserts an active account and returns it with an access token.
func (e *testEnv) createUser(t *testing.T, username string, role model.UserRole) (*model.User, string) {
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Profile:      &model.Profile{},
	}
	require.NoError(t, e.db.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(role), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (e *testEnv) createProduct(t *testing.T, name, price string) *model.Product {
	category := &model.Category{Name: name + " category", Slug: util.Slugify(name + " category")}
	require.NoError(t, e.db.Create(category).Error)

	product := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       util.Slugify(name),
		Price:      decimal.RequireFromString(price),
		Stock:      10,
		Supplier:   "Acme",
		IsActive:   true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
