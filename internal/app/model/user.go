package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"  // customer
	RoleStaff UserRole = "staff" // back office
	RoleAdmin UserRole = "admin" // superuser, may grant staff
)

// IsStaff reports whether the role can use the back office.
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"` // compared case-insensitively
	Email        string         `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`    // stored lowercased
	PasswordHash string         `gorm:"not null" json:"-"`
	FirstName    string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string         `gorm:"type:varchar(150)" json:"last_name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user';index" json:"role"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"` // date joined, used by reports
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// Profile extends a user with contact details. Created together with the user.
type Profile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Phone     *string   `gorm:"type:varchar(20);uniqueIndex" json:"phone"` // normalized, nil until set
	Avatar    string    `gorm:"type:varchar(500)" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Images []ProfileImage `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// PhoneValue returns the stored phone or "".
func (p *Profile) PhoneValue() string {
	if p == nil || p.Phone == nil {
		return ""
	}
	return *p.Phone
}

type ProfileImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProfileID uint      `gorm:"not null;index" json:"profile_id"`
	Image     string    `gorm:"type:varchar(500);not null" json:"image"`
	Caption   string    `gorm:"type:varchar(255)" json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProfileImage) TableName() string {
	return "profile_images"
}
