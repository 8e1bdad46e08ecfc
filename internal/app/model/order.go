package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "DRAFT"         // drafted by staff, e.g. from a consultation
	OrderStatusPendingAdmin OrderStatus = "PENDING_ADMIN" // placed by a customer, waiting for staff
	OrderStatusConfirmed    OrderStatus = "CONFIRMED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPendingAdmin, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	}
	return false
}

// Open reports whether staff can still confirm or cancel the order.
func (s OrderStatus) Open() bool {
	return s == OrderStatusDraft || s == OrderStatusPendingAdmin
}

type Order struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	UserID         uint        `gorm:"not null;index" json:"user_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING_ADMIN';index" json:"status"`
	Note           string      `gorm:"type:text" json:"note"`
	ConsultationID *uint       `gorm:"index" json:"consultation_id,omitempty"`
	ConfirmedByID  *uint       `json:"confirmed_by_id,omitempty"`
	ConfirmedAt    *time.Time  `json:"confirmed_at,omitempty"`
	CancelledByID  *uint       `json:"cancelled_by_id,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
	CancelReason   string      `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// Total is SUM(price*quantity) over the items, filled by the repository.
	Total decimal.Decimal `gorm:"-" json:"total"`

	User        *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ConfirmedBy *User       `gorm:"foreignKey:ConfirmedByID" json:"confirmed_by,omitempty"`
	CancelledBy *User       `gorm:"foreignKey:CancelledByID" json:"cancelled_by,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// ItemsTotal sums the loaded items. Repositories prefer the SQL aggregate.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	PlanID    *uint           `gorm:"index" json:"plan_id,omitempty"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"` // unit price at checkout
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`

	Order   *Order       `gorm:"foreignKey:OrderID" json:"-"`
	Product *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Plan    *ServicePlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
