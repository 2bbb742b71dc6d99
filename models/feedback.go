package models

import "time"

type Feedback struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrderID        uint      `json:"orderId" gorm:"not null;uniqueIndex"`
	Order          *Order    `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	TableNumber    int       `json:"tableNumber"`
	FoodRating     int       `json:"foodRating" gorm:"not null"`
	ServiceRating  int       `json:"serviceRating" gorm:"not null"`
	OverallRating  int       `json:"overallRating" gorm:"not null"`
	Comment        string    `json:"comment"`
	WouldRecommend bool      `json:"wouldRecommend"`
	CreatedAt      time.Time `json:"createdAt"`
}
