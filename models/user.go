package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer     UserRole = "customer"
	RoleAdmin        UserRole = "admin"
	RoleManager      UserRole = "manager"
	RoleKitchenStaff UserRole = "kitchen_staff"
)

// Permission is a closed capability identifier checked against a role
type Permission string

const (
	PermManageOrders    Permission = "manage_orders"
	PermManageMenu      Permission = "manage_menu"
	PermManageStaff     Permission = "manage_staff"
	PermViewAnalytics   Permission = "view_analytics"
	PermViewFeedback    Permission = "view_feedback"
	PermJoinKitchenRoom Permission = "join_kitchen_room"
	PermJoinAdminRoom   Permission = "join_admin_room"
)

// rolePermissions is the authoritative role → capability table.
// API gating and room joins both go through Has, never raw role strings.
var rolePermissions = map[UserRole][]Permission{
	RoleAdmin: {
		PermManageOrders, PermManageMenu, PermManageStaff,
		PermViewAnalytics, PermViewFeedback, PermJoinKitchenRoom, PermJoinAdminRoom,
	},
	RoleManager: {
		PermManageOrders, PermManageMenu,
		PermViewAnalytics, PermViewFeedback, PermJoinKitchenRoom, PermJoinAdminRoom,
	},
	RoleKitchenStaff: {
		PermManageOrders, PermJoinKitchenRoom,
	},
	RoleCustomer: {},
}

// Has reports whether the role carries the given capability
func (r UserRole) Has(p Permission) bool {
	for _, have := range rolePermissions[r] {
		if have == p {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to back-office personnel
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleKitchenStaff
}

// HealthProfile holds the customer's dietary preferences, used for
// allergy alerts on orders and for recommendation scoring
type HealthProfile struct {
	Allergies   []string `json:"allergies" gorm:"serializer:json"`
	DietaryPlan string   `json:"dietaryPlan"`
	HealthGoals []string `json:"healthGoals" gorm:"serializer:json"`
}

type User struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	Name          string        `json:"name" gorm:"not null"`
	Email         string        `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string        `json:"-" gorm:"not null"`
	Role          UserRole      `json:"role" gorm:"not null;default:'customer'"`
	Phone         string        `json:"phone"`
	Active        bool          `json:"active" gorm:"default:true"`
	HealthProfile HealthProfile `json:"healthProfile" gorm:"embedded;embeddedPrefix:health_"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
