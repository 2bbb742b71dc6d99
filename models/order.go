package models

import "time"

// OrderStatus represents a position in the fixed preparation pipeline
type OrderStatus string

const (
	StatusReceived     OrderStatus = "received"
	StatusPreparing    OrderStatus = "preparing"
	StatusQualityCheck OrderStatus = "quality_check"
	StatusReady        OrderStatus = "ready"
	StatusDelivered    OrderStatus = "delivered"
	StatusCancelled    OrderStatus = "cancelled"
)

// Priority levels for kitchen display ordering. Priority is independent of
// status and only affects how queued orders are sorted for staff.
const (
	PriorityNormal = 1
	PriorityHigh   = 2
	PriorityUrgent = 3
)

// ValidPriority reports whether p is one of the three defined levels
func ValidPriority(p int) bool {
	return p >= PriorityNormal && p <= PriorityUrgent
}

// Customizations captures per-line-item choices made at order time.
// Portion "Large" applies the 1.5x price/nutrition multiplier; everything
// else is informational for the kitchen.
type Customizations struct {
	Portion             string   `json:"portion"`
	SpiceLevel          int      `json:"spiceLevel"`
	RemovedIngredients  []string `json:"removedIngredients" gorm:"serializer:json"`
	SpecialInstructions string   `json:"specialInstructions"`
}

type Order struct {
	ID                uint        `json:"id" gorm:"primaryKey"`
	OrderNumber       string      `json:"orderNumber" gorm:"uniqueIndex;not null"`
	TableNumber       int         `json:"tableNumber" gorm:"not null;index"`
	GuestName         string      `json:"guestName"`
	CustomerID        *uint       `json:"customerId"`
	Customer          *User       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items             []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Subtotal          float64     `json:"subtotal"`
	Tax               float64     `json:"tax"`
	Total             float64     `json:"total"`
	Status            OrderStatus `json:"status" gorm:"not null;default:'received';index"`
	Priority          int         `json:"priority" gorm:"not null;default:1"`
	Version           int         `json:"version" gorm:"not null;default:1"` // monotonic, bumped on every mutation
	EstimatedPrepTime int         `json:"estimatedPrepTime"`                 // minutes
	SpecialRequests   string      `json:"specialRequests"`
	AllergyAlerts     []string    `json:"allergyAlerts" gorm:"serializer:json"`
	StatusHistory     []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrderID        uint           `json:"orderId" gorm:"not null;index"`
	MenuItemID     uint           `json:"menuItemId" gorm:"not null"`
	MenuItem       *MenuItem      `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID"`
	Name           string         `json:"name"`  // snapshot at order time
	Price          float64        `json:"price"` // snapshot standard-portion price
	Quantity       int            `json:"quantity" gorm:"not null"`
	Customizations Customizations `json:"customizations" gorm:"embedded;embeddedPrefix:custom_"`
	TotalPrice     float64        `json:"totalPrice"` // price x portion multiplier x quantity
}

// OrderStatusHistory tracks every status change for audit and metrics
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy" gorm:"index"` // staff user ID, 0 for system
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Active reports whether the order still sits in the kitchen pipeline
func (o *Order) Active() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled
}
