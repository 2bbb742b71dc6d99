package models

import "time"

// DiningTable is a physical table a guest claims by scanning its QR code
type DiningTable struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    int       `json:"number" gorm:"uniqueIndex;not null"`
	Seats     int       `json:"seats" gorm:"default:4"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
