package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	MyOrdersPerPage    = 10
	StaffOrdersPerPage = 20

	EventOrderPending    = "order.pending"
	EventConsultationNew = "consultation.new"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrNothingSelected    = errors.New("no cart lines selected")
	ErrInvalidTransition  = errors.New("order status does not allow this change")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

// EventPublisher pushes events to connected staff clients.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

type CheckoutItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CheckoutSelection picks cart lines, either with an explicit quantity or by id.
type CheckoutSelection struct {
	Items      []CheckoutItem `json:"items"`
	ProductIDs []uint         `json:"product_ids"`
}

type OrderPage struct {
	Orders []model.Order     `json:"orders"`
	Status model.OrderStatus `json:"status,omitempty"`
	util.Page
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, sessionID string, selection CheckoutSelection, note string) (*model.Order, error)
	ListMyOrders(userID uint, status model.OrderStatus, page string) (*OrderPage, error)
	GetMyOrder(userID, orderID uint) (*model.Order, error)

	ListOrders(status model.OrderStatus, page string) (*OrderPage, error)
	GetOrder(orderID uint) (*model.Order, error)
	Confirm(orderID uint, staff *model.User) (*model.Order, error)
	Cancel(orderID uint, staff *model.User, reason string) (*model.Order, error)
	BulkCancel(orderIDs []uint, staff *model.User, reason string) (int64, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	subRepo   repository.SubscriptionRepository
	store     session.CartStore
	publisher EventPublisher
	db        *gorm.DB
}

// NewOrderService wires the order flow. publisher may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	subRepo repository.SubscriptionRepository,
	store session.CartStore,
	publisher EventPublisher,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		subRepo:   subRepo,
		store:     store,
		publisher: publisher,
		db:        db,
	}
}

type selectedLine struct {
	productID uint
	quantity  int
	line      model.CartLine
}

// selectLines keeps only selected products present in the cart. The quantity
// is the requested one when positive, else the cart quantity, else 1.
func selectLines(cart model.Cart, selection CheckoutSelection) []selectedLine {
	var (
		lines []selectedLine
		seen  = map[uint]bool{}
	)
	pick := func(productID uint, quantity int) {
		if seen[productID] {
			return
		}
		line, ok := cart[model.CartKey(productID)]
		if !ok {
			return
		}
		seen[productID] = true
		switch {
		case quantity > 0:
		case line.Quantity > 0:
			quantity = line.Quantity
		default:
			quantity = 1
		}
		lines = append(lines, selectedLine{productID: productID, quantity: quantity, line: line})
	}

	for _, item := range selection.Items {
		pick(item.ProductID, item.Quantity)
	}
	for _, id := range selection.ProductIDs {
		pick(id, 0)
	}
	return lines
}

func (s *orderService) Checkout(ctx context.Context, userID uint, sessionID string, selection CheckoutSelection, note string) (*model.Order, error) {
	logger.Info("Checking out cart", map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	})

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines := selectLines(cart, selection)
	if len(lines) == 0 {
		logger.Warn("Checkout rejected: nothing selected", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrNothingSelected
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
			panic(r)
		}
	}()

	order := &model.Order{
		UserID: userID,
		Status: model.OrderStatusPendingAdmin,
		Note:   note,
	}
	ordered := make([]uint, 0, len(lines))
	for _, l := range lines {
		var product model.Product
		if err := tx.Select("id").First(&product, l.productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Skipping cart line for missing product", map[string]interface{}{
					"user_id":    userID,
					"product_id": l.productID,
				})
				continue
			}
			tx.Rollback()
			return nil, err
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID: l.productID,
			PlanID:    l.line.PlanID,
			Price:     l.line.Price,
			Quantity:  l.quantity,
		})
		ordered = append(ordered, l.productID)
	}
	if len(order.Items) == 0 {
		tx.Rollback()
		return nil, ErrNothingSelected
	}

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	for _, id := range ordered {
		delete(cart, model.CartKey(id))
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		// the order exists; a stale cart line is only a nuisance
		logger.Warn("Failed to remove ordered lines from cart", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id": created.ID,
		"user_id":  userID,
		"items":    len(created.Items),
		"total":    created.Total.String(),
	})
	s.publish(EventOrderPending, created)
	return created, nil
}

func (s *orderService) publish(eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, data)
	}
}

func (s *orderService) ListMyOrders(userID uint, status model.OrderStatus, page string) (*OrderPage, error) {
	return s.orderPage(repository.OrderFilter{UserID: &userID, Status: status}, MyOrdersPerPage, page)
}

func (s *orderService) ListOrders(status model.OrderStatus, page string) (*OrderPage, error) {
	return s.orderPage(repository.OrderFilter{Status: status}, StaffOrdersPerPage, page)
}

func (s *orderService) orderPage(filter repository.OrderFilter, perPage int, page string) (*OrderPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	countFilter := filter
	countFilter.Limit = 1
	_, total, err := s.orderRepo.List(countFilter)
	if err != nil {
		return nil, err
	}
	p := util.Paginate(page, perPage, total)
	filter.Offset = p.Offset()
	filter.Limit = p.PerPage

	orders, _, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Status: filter.Status, Page: p}, nil
}

func (s *orderService) GetMyOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order requested by another user", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

var openStatuses = []model.OrderStatus{model.OrderStatusDraft, model.OrderStatusPendingAdmin}

// Confirm accepts an open order and activates a subscription for every line
// that carries a plan, all in one transaction.
func (s *orderService) Confirm(orderID uint, staff *model.User) (*model.Order, error) {
	logger.Info("Confirming order", map[string]interface{}{
		"order_id": orderID,
		"staff_id": staff.ID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order confirmation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
			panic(r)
		}
	}()

	now := time.Now()
	orders := s.orderRepo.WithTx(tx)
	affected, err := orders.ChangeStatus([]uint{orderID}, repository.StatusChange{
		From: openStatuses,
		To:   model.OrderStatusConfirmed,
		Fields: map[string]interface{}{
			"confirmed_by_id": staff.ID,
			"confirmed_at":    now,
			"cancelled_by_id": nil,
			"cancelled_at":    nil,
			"cancel_reason":   "",
		},
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if affected == 0 {
		err := s.transitionError(orders, orderID)
		tx.Rollback()
		return nil, err
	}

	order, err := orders.FindByID(orderID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	subs := s.subRepo.WithTx(tx)
	activated := 0
	for _, item := range order.Items {
		if item.PlanID == nil {
			continue
		}
		itemID := item.ID
		sub := &model.Subscription{
			UserID:      order.UserID,
			ProductID:   item.ProductID,
			PlanID:      *item.PlanID,
			OrderItemID: &itemID,
			StartedAt:   now,
			Status:      model.SubscriptionActive,
			Plan:        item.Plan,
		}
		if err := subs.Create(sub); err != nil {
			tx.Rollback()
			return nil, err
		}
		activated++
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order confirmation", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order confirmed", map[string]interface{}{
		"order_id":      orderID,
		"staff_id":      staff.ID,
		"subscriptions": activated,
	})
	return s.GetOrder(orderID)
}

// transitionError tells a missing order from one in the wrong state.
func (s *orderService) transitionError(orders repository.OrderRepository, orderID uint) error {
	if _, err := orders.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return ErrInvalidTransition
}

func (s *orderService) Cancel(orderID uint, staff *model.User, reason string) (*model.Order, error) {
	affected, err := s.orderRepo.ChangeStatus([]uint{orderID}, repository.StatusChange{
		From:   openStatuses,
		To:     model.OrderStatusCancelled,
		Fields: cancelFields(staff, reason),
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.transitionError(s.orderRepo, orderID)
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
		"staff_id": staff.ID,
	})
	return s.GetOrder(orderID)
}

// BulkCancel cancels the pending orders among ids and returns how many moved.
func (s *orderService) BulkCancel(orderIDs []uint, staff *model.User, reason string) (int64, error) {
	affected, err := s.orderRepo.ChangeStatus(orderIDs, repository.StatusChange{
		From:   []model.OrderStatus{model.OrderStatusPendingAdmin},
		To:     model.OrderStatusCancelled,
		Fields: cancelFields(staff, reason),
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Orders bulk cancelled", map[string]interface{}{
		"requested": len(orderIDs),
		"cancelled": affected,
		"staff_id":  staff.ID,
	})
	return affected, nil
}

func cancelFields(staff *model.User, reason string) map[string]interface{} {
	return map[string]interface{}{
		"cancelled_by_id": staff.ID,
		"cancelled_at":    time.Now(),
		"cancel_reason":   reason,
	}
}
