package handlers

import (
	"net/http"

	"vibedine-api/config"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
)

// ListMenu returns menu items with optional category/availability/search filters
func ListMenu(c *gin.Context) {
	var items []models.MenuItem
	query := config.DB

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if available := c.Query("available"); available == "true" {
		query = query.Where("is_available = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	query.Order("category, name").Find(&items)

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// GetMenuCategories returns the fixed category list
func GetMenuCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.AllCategories())
}

// GetMenuItem returns one item with full nutrition detail
func GetMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type MenuItemRequest struct {
	Name                string              `json:"name" binding:"required"`
	Description         string              `json:"description"`
	Price               float64             `json:"price" binding:"required,gt=0"`
	Category            models.MenuCategory `json:"category" binding:"required"`
	Image               string              `json:"image"`
	Ingredients         []string            `json:"ingredients"`
	Allergens           []string            `json:"allergens"`
	Serves              int                 `json:"serves"`
	PreparationTime     int                 `json:"preparationTime"`
	NutritionPerServing models.Nutrition    `json:"nutritionPerServing"`
}

// CreateMenuItem adds a new dish (admin/manager)
func CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}

	item := models.MenuItem{
		Name:                req.Name,
		Description:         req.Description,
		Price:               req.Price,
		Category:            req.Category,
		Image:               req.Image,
		IsAvailable:         true,
		Ingredients:         req.Ingredients,
		Allergens:           req.Allergens,
		Serves:              req.Serves,
		PreparationTime:     req.PreparationTime,
		NutritionPerServing: req.NutritionPerServing,
	}
	if item.Serves == 0 {
		item.Serves = 1
	}

	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem replaces a dish's editable fields (admin/manager)
func UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found"})
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.Category = req.Category
	item.Image = req.Image
	item.Ingredients = req.Ingredients
	item.Allergens = req.Allergens
	item.Serves = req.Serves
	item.PreparationTime = req.PreparationTime
	item.NutritionPerServing = req.NutritionPerServing

	if err := config.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// SetMenuItemAvailability toggles availability without touching the rest
// of the record
func SetMenuItemAvailability(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	config.DB.Model(&item).Update("is_available", *req.IsAvailable)
	item.IsAvailable = *req.IsAvailable

	c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "item": item})
}

// DeleteMenuItem removes a dish from the menu (admin/manager)
func DeleteMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found"})
		return
	}
	config.DB.Delete(&item)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
