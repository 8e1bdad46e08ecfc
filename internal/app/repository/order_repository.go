package repository

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID *uint
	Status model.OrderStatus
	Offset int
	Limit  int
}

// StatusChange describes a guarded status transition.
type StatusChange struct {
	From   []model.OrderStatus
	To     model.OrderStatus
	Fields map[string]interface{} // extra columns written with the status
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	List(filter OrderFilter) ([]model.Order, int64, error)
	Total(orderID uint) (decimal.Decimal, error)
	ChangeStatus(ids []uint, change StatusChange) (int64, error)
	StatusCounts() (map[model.OrderStatus]int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC").Preload("Product").Preload("Plan")
	}).Preload("User").Preload("ConfirmedBy").Preload("CancelledBy")
}

// Create inserts the order and its items.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"status":  order.Status,
		"items":   len(order.Items),
	})

	if err := r.db.Omit("User", "ConfirmedBy", "CancelledBy").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Debug("Order not found", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	total, err := r.Total(order.ID)
	if err != nil {
		return nil, err
	}
	order.Total = total
	return &order, nil
}

func (r *orderRepository) List(filter OrderFilter) ([]model.Order, int64, error) {
	logger.Debug("Listing orders", map[string]interface{}{
		"user_id": filter.UserID,
		"status":  filter.Status,
		"offset":  filter.Offset,
		"limit":   filter.Limit,
	})

	query := r.db.Model(&model.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err)
		return nil, 0, err
	}

	var orders []model.Order
	query = query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC").Preload("Product").Preload("Plan")
	}).Preload("User").Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders", err)
		return nil, 0, err
	}

	if err := r.fillTotals(orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type orderTotalRow struct {
	OrderID uint
	Total   decimal.Decimal
}

// fillTotals sets Order.Total from one aggregate query.
func (r *orderRepository) fillTotals(orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	var rows []orderTotalRow
	err := r.db.Model(&model.OrderItem{}).
		Select("order_id, COALESCE(SUM(price * quantity), 0) AS total").
		Where("order_id IN ?", ids).
		Group("order_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate order totals", err)
		return err
	}

	totals := make(map[uint]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.OrderID] = row.Total
	}
	for i := range orders {
		orders[i].Total = totals[orders[i].ID]
	}
	return nil
}

// Total is SUM(price * quantity) of the order's items.
func (r *orderRepository) Total(orderID uint) (decimal.Decimal, error) {
	var row orderTotalRow
	err := r.db.Model(&model.OrderItem{}).
		Select("order_id, COALESCE(SUM(price * quantity), 0) AS total").
		Where("order_id = ?", orderID).
		Group("order_id").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ChangeStatus moves the orders whose current status is in change.From.
// The status guard lives in the WHERE clause so concurrent transitions
// cannot both succeed; the caller inspects the affected row count.
func (r *orderRepository) ChangeStatus(ids []uint, change StatusChange) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	fields := map[string]interface{}{
		"status":     change.To,
		"updated_at": time.Now(),
	}
	for k, v := range change.Fields {
		fields[k] = v
	}

	result := r.db.Model(&model.Order{}).
		Where("id IN ? AND status IN ?", ids, change.From).
		Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to change order status", result.Error, map[string]interface{}{
			"order_ids": ids,
			"to":        change.To,
		})
		return 0, result.Error
	}

	logger.Debug("Order status changed", map[string]interface{}{
		"order_ids": ids,
		"to":        change.To,
		"affected":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}

type statusCountRow struct {
	Status model.OrderStatus
	Count  int64
}

func (r *orderRepository) StatusCounts() (map[model.OrderStatus]int64, error) {
	var rows []statusCountRow
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
