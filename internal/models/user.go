// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account: readers, editors, and admins.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:user" json:"role"`

	IsVerified           bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken    *string    `gorm:"index" json:"-"`
	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	Bio       string     `json:"bio"`
	Website   string     `json:"website"`
	Location  string     `json:"location"`
	ImageURL  string     `json:"image_url"`
	LastLogin *time.Time `json:"last_login"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Articles keeps a weak reference: deleting a user nulls author_id.
	Articles []Article `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"articles,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanPublish reports whether the user may set article status directly.
func (u *User) CanPublish() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// AuthorRef is the trimmed author projection embedded in article responses.
type AuthorRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the trimmed projection of the user.
func (u *User) Ref() AuthorRef {
	return AuthorRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
