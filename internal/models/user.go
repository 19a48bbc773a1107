package models

import (
	"time"
)

// User is an account selectable from the user picker. Sellers (vendedores)
// are the users commissions are computed for.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:160;uniqueIndex" json:"email"`
	Role      string    `gorm:"size:20;not null;index" json:"role"`
	Active    bool      `gorm:"not null;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin  = "admin"
	RoleSeller = "vendedor"
)

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSeller returns true if user has seller role
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

// IsValidRole reports whether role is one of the known roles
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSeller
}
