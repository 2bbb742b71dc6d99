package models

import "time"

// MenuCategory is the closed set of menu sections shown to customers
type MenuCategory string

const (
	CategoryAppetizers MenuCategory = "Appetizers"
	CategoryMainCourse MenuCategory = "Main Course"
	CategoryDesserts   MenuCategory = "Desserts"
	CategoryDrinks     MenuCategory = "Drinks"
)

// AllCategories returns the fixed category list in display order
func AllCategories() []MenuCategory {
	return []MenuCategory{CategoryAppetizers, CategoryMainCourse, CategoryDesserts, CategoryDrinks}
}

// ValidCategory reports whether c is one of the known menu sections
func ValidCategory(c MenuCategory) bool {
	for _, known := range AllCategories() {
		if known == c {
			return true
		}
	}
	return false
}

// Nutrition describes one standard serving. A Large portion scales every
// field by the portion multiplier at order time; no variant row is stored.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Sodium   float64 `json:"sodium"`
	Fiber    float64 `json:"fiber"`
}

// Scaled returns a copy of n with every field multiplied by factor
func (n Nutrition) Scaled(factor float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Carbs:    n.Carbs * factor,
		Fat:      n.Fat * factor,
		Sodium:   n.Sodium * factor,
		Fiber:    n.Fiber * factor,
	}
}

type MenuItem struct {
	ID                  uint         `json:"id" gorm:"primaryKey"`
	Name                string       `json:"name" gorm:"not null"`
	Description         string       `json:"description"`
	Price               float64      `json:"price" gorm:"not null"`
	Category            MenuCategory `json:"category" gorm:"index"`
	Image               string       `json:"image"`
	IsAvailable         bool         `json:"isAvailable" gorm:"default:true"`
	Ingredients         []string     `json:"ingredients" gorm:"serializer:json"`
	Allergens           []string     `json:"allergens" gorm:"serializer:json"`
	Serves              int          `json:"serves" gorm:"default:1"`
	PreparationTime     int          `json:"preparationTime"` // minutes per standard serving
	NutritionPerServing Nutrition    `json:"nutritionPerServing" gorm:"embedded;embeddedPrefix:nutrition_"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}
