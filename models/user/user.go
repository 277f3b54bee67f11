package user

import (
	"time"
)

// Role values. Admin and superadmin accounts are only ever seeded; the
// register endpoint always creates plain users.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User represents a portal account.
type User struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	Password string  `gorm:"type:varchar(255);not null" json:"-"`
	FullName string  `gorm:"type:varchar(255);not null" json:"full_name"`
	Email    string  `gorm:"type:varchar(255);not null;unique" json:"email"`
	Phone    *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Role     string  `gorm:"type:varchar(20);not null;default:user" json:"role"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// Public returns the subset of user fields safe to embed in shared
// payloads such as admin booking lists and public report downloads.
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"full_name": u.FullName,
		"email":     u.Email,
		"phone":     u.Phone,
	}
}
