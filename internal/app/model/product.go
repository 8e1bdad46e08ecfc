package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null;index" json:"name"`
	Slug      string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	CategoryID   uint                `gorm:"not null;index" json:"category_id"`
	Name         string              `gorm:"type:varchar(200);not null;index" json:"name"` // unique case-insensitively among live rows
	Slug         string              `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Image        string              `gorm:"type:varchar(500)" json:"image"`
	Description  string              `gorm:"type:text" json:"description"`
	Price        decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	ComparePrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"compare_price"` // strike-through price
	Stock        int                 `gorm:"not null;default:0" json:"stock"`
	Supplier     string              `gorm:"type:varchar(200);index" json:"supplier"`
	IsActive     bool                `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	DeletedAt    gorm.DeletedAt      `gorm:"index" json:"-"`

	Category *Category      `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Plans    []ServicePlan  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"plans,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Image     string    `gorm:"type:varchar(500);not null" json:"image"`
	Alt       string    `gorm:"type:varchar(200)" json:"alt"`
	Ordering  int       `gorm:"not null;default:0" json:"ordering"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
