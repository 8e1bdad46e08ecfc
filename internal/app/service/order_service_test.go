package service

import (
	"context"
	"sync"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	eventType string
	data      interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, data: data})
}

type orderFixture struct {
	orders    OrderService
	cart      CartService
	store     *session.MemoryCartStore
	publisher *recordingPublisher
	db        *gorm.DB
	customer  *model.User
	staff     *model.User
	vps       *model.Product
	domain    *model.Product
	monthly   *model.ServicePlan
}

func setupOrderServiceTest(t *testing.T) *orderFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := session.NewMemoryCartStore()
	publisher := &recordingPublisher{}
	productRepo := repository.NewProductRepository(testDB)
	planRepo := repository.NewPlanRepository(testDB)

	f := &orderFixture{
		orders: NewOrderService(
			repository.NewOrderRepository(testDB),
			repository.NewSubscriptionRepository(testDB),
			store,
			publisher,
			testDB,
		),
		cart:      NewCartService(store, productRepo, planRepo),
		store:     store,
		publisher: publisher,
		db:        testDB,
		customer:  createTestUser(t, testDB, "customer", model.RoleUser),
		staff:     createTestUser(t, testDB, "staff", model.RoleStaff),
	}

	category := createTestCategory(t, testDB, "Hosting")
	f.vps = createTestProduct(t, testDB, category, "VPS", "10.00")
	f.domain = createTestProduct(t, testDB, category, "Domain", "2.50")
	f.monthly = createTestPlan(t, testDB, f.vps, "Monthly", model.TermMonth, "9.00")
	return f
}

func (f *orderFixture) placeOrder(t *testing.T) *model.Order {
	ctx := context.Background()
	_, err := f.cart.Add(ctx, testSessionID, f.domain.ID, 2, false, nil)
	require.NoError(t, err)
	order, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{ProductIDs: []uint{f.domain.ID}}, "")
	require.NoError(t, err)
	return order
}

func TestOrderService_Checkout(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, testSessionID, f.vps.ID, 3, false, &f.monthly.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, testSessionID, f.domain.ID, 4, false, nil)
	require.NoError(t, err)

	order, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{
		Items: []CheckoutItem{{ProductID: f.vps.ID, Quantity: 1}},
	}, "call after 5pm")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPendingAdmin, order.Status)
	assert.Equal(t, "call after 5pm", order.Note)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)
	require.NotNil(t, order.Items[0].PlanID)
	assert.Equal(t, f.monthly.ID, *order.Items[0].PlanID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("9")))

	view, err := f.cart.View(ctx, testSessionID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, f.domain.ID, view.Items[0].ProductID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventOrderPending, f.publisher.events[0].eventType)

	t.Run("Selection by id takes the cart quantity", func(t *testing.T) {
		order, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{ProductIDs: []uint{f.domain.ID}}, "")
		require.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 4, order.Items[0].Quantity)
		assert.True(t, order.Total.Equal(decimal.RequireFromString("10")))
	})

	t.Run("Empty selection", func(t *testing.T) {
		_, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{}, "")
		assert.ErrorIs(t, err, ErrNothingSelected)
	})

	t.Run("Products not in the cart are ignored", func(t *testing.T) {
		_, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{ProductIDs: []uint{f.vps.ID}}, "")
		assert.ErrorIs(t, err, ErrNothingSelected)
	})
}

func TestOrderService_Checkout_SkipsDeletedProducts(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, testSessionID, f.domain.ID, 1, false, nil)
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&model.Product{}, f.domain.ID).Error)

	_, err = f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{ProductIDs: []uint{f.domain.ID}}, "")
	assert.ErrorIs(t, err, ErrNothingSelected)

	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

// failingOrderRepository writes the order and then panics mid-transaction.
type failingOrderRepository struct {
	repository.OrderRepository
}

func (r failingOrderRepository) WithTx(tx *gorm.DB) repository.OrderRepository {
	return failingOrderRepository{r.OrderRepository.WithTx(tx)}
}

func (r failingOrderRepository) Create(order *model.Order) error {
	if err := r.OrderRepository.Create(order); err != nil {
		return err
	}
	panic("storage exploded")
}

func TestOrderService_Checkout_PanicRollsBackAndPropagates(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	orders := NewOrderService(
		failingOrderRepository{repository.NewOrderRepository(f.db)},
		repository.NewSubscriptionRepository(f.db),
		f.store,
		f.publisher,
		f.db,
	)
	_, err := f.cart.Add(ctx, testSessionID, f.domain.ID, 1, false, nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "storage exploded", func() {
		_, _ = orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{ProductIDs: []uint{f.domain.ID}}, "")
	})

	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	view, err := f.cart.View(ctx, testSessionID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Empty(t, f.publisher.events)
}

func TestOrderService_MyOrders(t *testing.T) {
	f := setupOrderServiceTest(t)
	order := f.placeOrder(t)
	stranger := createTestUser(t, f.db, "stranger", model.RoleUser)

	page, err := f.orders.ListMyOrders(f.customer.ID, "", "")
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.True(t, page.Orders[0].Total.Equal(decimal.RequireFromString("5")))

	page, err = f.orders.ListMyOrders(f.customer.ID, model.OrderStatusConfirmed, "")
	require.NoError(t, err)
	assert.Empty(t, page.Orders)

	_, err = f.orders.ListMyOrders(f.customer.ID, "SHIPPED", "")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	found, err := f.orders.GetMyOrder(f.customer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = f.orders.GetMyOrder(stranger.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_Confirm(t *testing.T) {
	f := setupOrderServiceTest(t)
	ctx := context.Background()

	_, err := f.cart.Add(ctx, testSessionID, f.vps.ID, 1, false, &f.monthly.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, testSessionID, f.domain.ID, 1, false, nil)
	require.NoError(t, err)
	order, err := f.orders.Checkout(ctx, f.customer.ID, testSessionID, CheckoutSelection{
		ProductIDs: []uint{f.vps.ID, f.domain.ID},
	}, "")
	require.NoError(t, err)

	confirmed, err := f.orders.Confirm(order.ID, f.staff)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedByID)
	assert.Equal(t, f.staff.ID, *confirmed.ConfirmedByID)
	assert.NotNil(t, confirmed.ConfirmedAt)

	var subs []model.Subscription
	require.NoError(t, f.db.Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, f.customer.ID, subs[0].UserID)
	assert.Equal(t, f.monthly.ID, subs[0].PlanID)
	assert.Equal(t, model.SubscriptionActive, subs[0].Status)
	require.NotNil(t, subs[0].EndsAt)
	assert.InDelta(t, 30*24.0, subs[0].EndsAt.Sub(subs[0].StartedAt).Hours(), 1.0)

	t.Run("Second confirm is rejected", func(t *testing.T) {
		_, err := f.orders.Confirm(order.ID, f.staff)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var count int64
		require.NoError(t, f.db.Model(&model.Subscription{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Confirmed order cannot be cancelled", func(t *testing.T) {
		_, err := f.orders.Cancel(order.ID, f.staff, "late")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("Unknown order", func(t *testing.T) {
		_, err := f.orders.Confirm(9999, f.staff)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	f := setupOrderServiceTest(t)
	order := f.placeOrder(t)

	cancelled, err := f.orders.Cancel(order.ID, f.staff, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "duplicate", cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledByID)
	assert.Equal(t, f.staff.ID, *cancelled.CancelledByID)

	_, err = f.orders.Confirm(order.ID, f.staff)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.orders.Cancel(9999, f.staff, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_BulkCancel(t *testing.T) {
	f := setupOrderServiceTest(t)
	first := f.placeOrder(t)
	second := f.placeOrder(t)
	third := f.placeOrder(t)

	_, err := f.orders.Confirm(third.ID, f.staff)
	require.NoError(t, err)

	draft := &model.Order{UserID: f.customer.ID, Status: model.OrderStatusDraft}
	require.NoError(t, f.db.Create(draft).Error)

	cancelled, err := f.orders.BulkCancel([]uint{first.ID, second.ID, third.ID, draft.ID, 9999}, f.staff, "cleanup")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)

	page, err := f.orders.ListOrders(model.OrderStatusCancelled, "")
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, model.OrderStatusCancelled, page.Status)

	page, err = f.orders.ListOrders("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)

	cancelled, err = f.orders.BulkCancel(nil, f.staff, "")
	require.NoError(t, err)
	assert.Zero(t, cancelled)
}
