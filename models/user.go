// models/user.go
package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
	RoleStaff   UserRole = "STAFF"
)

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         UserRole  `bson:"role" json:"role"`
	DepartmentID string    `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	IsActive     bool      `bson:"isActive" json:"isActive"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}
