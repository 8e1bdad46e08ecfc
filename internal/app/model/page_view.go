package model

import "time"

const (
	PageViewPathMaxLen      = 255
	PageViewUserAgentMaxLen = 300
)

// PageView is one visit per session per day, feeding the traffic report.
type PageView struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SessionKey string    `gorm:"type:varchar(64);not null;index:idx_page_views_session_created" json:"session_key"`
	IP         string    `gorm:"type:varchar(45)" json:"ip"`
	UserAgent  string    `gorm:"type:varchar(300)" json:"user_agent"`
	Path       string    `gorm:"type:varchar(255);not null" json:"path"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt  time.Time `gorm:"index:idx_page_views_session_created;index" json:"created_at"`
}

func (PageView) TableName() string {
	return "page_views"
}
