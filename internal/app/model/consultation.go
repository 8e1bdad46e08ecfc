package model

import "time"

type ConsultationStatus string

const (
	ConsultationNew       ConsultationStatus = "new"
	ConsultationContacted ConsultationStatus = "contacted"
	ConsultationDone      ConsultationStatus = "done"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationNew, ConsultationContacted, ConsultationDone, ConsultationCancelled:
		return true
	}
	return false
}

// ConsultationRequest is a "call me back about this product" ticket.
type ConsultationRequest struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	UserID        uint               `gorm:"not null;index:idx_consult_user_product" json:"user_id"`
	ProductID     uint               `gorm:"not null;index:idx_consult_user_product" json:"product_id"`
	Note          string             `gorm:"type:text" json:"note"`
	Status        ConsultationStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CustomerPhone string             `gorm:"type:varchar(20)" json:"customer_phone"` // profile phone at request time
	HandledByID   *uint              `gorm:"index" json:"handled_by_id,omitempty"`
	HandledAt     *time.Time         `json:"handled_at,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	User      *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	HandledBy *User    `gorm:"foreignKey:HandledByID" json:"handled_by,omitempty"`
}

func (ConsultationRequest) TableName() string {
	return "consultation_requests"
}
