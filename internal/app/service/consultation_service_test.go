package service

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type consultationFixture struct {
	service   ConsultationService
	publisher *recordingPublisher
	db        *gorm.DB
	customer  *model.User
	staff     *model.User
	product   *model.Product
}

func setupConsultationServiceTest(t *testing.T) *consultationFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	publisher := &recordingPublisher{}
	f := &consultationFixture{
		service: NewConsultationService(
			repository.NewConsultationRepository(testDB),
			repository.NewProductRepository(testDB),
			repository.NewUserRepository(testDB),
			repository.NewOrderRepository(testDB),
			publisher,
		),
		publisher: publisher,
		db:        testDB,
		customer:  createTestUser(t, testDB, "customer", model.RoleUser),
		staff:     createTestUser(t, testDB, "staff", model.RoleStaff),
	}
	category := createTestCategory(t, testDB, "Hosting")
	f.product = createTestProduct(t, testDB, category, "VPS", "10.00")

	phone := "+84901234567"
	require.NoError(t, testDB.Model(&model.Profile{}).Where("user_id = ?", f.customer.ID).Update("phone", phone).Error)
	return f
}

func TestConsultationService_Create(t *testing.T) {
	f := setupConsultationServiceTest(t)

	req, err := f.service.Create(f.customer.ID, f.product.ID, "  please call  ")
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationNew, req.Status)
	assert.Equal(t, "please call", req.Note)
	assert.Equal(t, "+84901234567", req.CustomerPhone)
	require.NotNil(t, req.Product)
	assert.Equal(t, "VPS", req.Product.Name)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventConsultationNew, f.publisher.events[0].eventType)

	_, err = f.service.Create(f.customer.ID, f.product.ID, "again")
	assert.ErrorIs(t, err, ErrConsultationTooFrequent)

	_, err = f.service.Create(f.customer.ID, 9999, "")
	assert.ErrorIs(t, err, ErrProductNotFound)

	t.Run("Allowed again after the cooldown", func(t *testing.T) {
		f.service.(*consultationService).now = func() time.Time {
			return time.Now().Add(ConsultationCooldown + time.Minute)
		}
		_, err := f.service.Create(f.customer.ID, f.product.ID, "third")
		assert.NoError(t, err)
	})

	t.Run("Allowed again once the first is handled", func(t *testing.T) {
		f.service.(*consultationService).now = time.Now
		other := createTestUser(t, f.db, "other", model.RoleUser)
		first, err := f.service.Create(other.ID, f.product.ID, "")
		require.NoError(t, err)
		_, err = f.service.SetStatus(first.ID, model.ConsultationContacted, f.staff)
		require.NoError(t, err)

		_, err = f.service.Create(other.ID, f.product.ID, "")
		assert.NoError(t, err)
	})
}

func TestConsultationService_Workflow(t *testing.T) {
	f := setupConsultationServiceTest(t)

	req, err := f.service.Create(f.customer.ID, f.product.ID, "first note")
	require.NoError(t, err)

	contacted, err := f.service.SetStatus(req.ID, model.ConsultationContacted, f.staff)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationContacted, contacted.Status)
	require.NotNil(t, contacted.HandledByID)
	assert.Equal(t, f.staff.ID, *contacted.HandledByID)

	_, err = f.service.SetStatus(req.ID, model.ConsultationDone, f.staff)
	assert.ErrorIs(t, err, ErrInvalidConsultStatus)

	_, err = f.service.SetStatus(req.ID, "archived", f.staff)
	assert.ErrorIs(t, err, ErrInvalidConsultStatus)

	_, err = f.service.SetStatus(9999, model.ConsultationCancelled, f.staff)
	assert.ErrorIs(t, err, ErrConsultationNotFound)

	done, err := f.service.MarkDone(req.ID, f.staff, "sold the yearly plan")
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationDone, done.Status)
	assert.NotNil(t, done.HandledAt)
	assert.Equal(t, "first note\nsold the yearly plan", done.Note)

	_, err = f.service.MarkDone(9999, f.staff, "")
	assert.ErrorIs(t, err, ErrConsultationNotFound)

	page, err := f.service.List(model.ConsultationDone, "")
	require.NoError(t, err)
	assert.Len(t, page.Requests, 1)

	_, err = f.service.List("archived", "")
	assert.ErrorIs(t, err, ErrInvalidConsultStatus)
}

func TestConsultationService_CreateOrder(t *testing.T) {
	f := setupConsultationServiceTest(t)

	req, err := f.service.Create(f.customer.ID, f.product.ID, "")
	require.NoError(t, err)

	order, err := f.service.CreateOrder(req.ID, 3, "quoted by phone")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDraft, order.Status)
	assert.Equal(t, f.customer.ID, order.UserID)
	require.NotNil(t, order.ConsultationID)
	assert.Equal(t, req.ID, *order.ConsultationID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30")))

	_, err = f.service.CreateOrder(req.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.service.CreateOrder(9999, 1, "")
	assert.ErrorIs(t, err, ErrConsultationNotFound)
}
