package model

import (
	"time"

	"gorm.io/gorm"
)

type News struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Slug        string         `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Body        string         `gorm:"type:text" json:"body"`
	Image       string         `gorm:"type:varchar(500)" json:"image"`
	AuthorID    *uint          `gorm:"index" json:"author_id,omitempty"`
	PublishedAt time.Time      `gorm:"not null;index" json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

func (News) TableName() string {
	return "news"
}
