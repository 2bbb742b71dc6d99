package handlers

import (
	"net/http"

	"vibedine-api/config"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
)

// ScanTable verifies a table's QR code and reports whether it already has
// an active order
func ScanTable(c *gin.Context) {
	var table models.DiningTable
	if err := config.DB.Where("number = ?", c.Param("number")).First(&table).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Table not found"})
		return
	}

	var activeCount int64
	config.DB.Model(&models.Order{}).
		Where("table_number = ? AND status NOT IN ?", table.Number,
			[]models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Count(&activeCount)

	c.JSON(http.StatusOK, gin.H{
		"table":    table,
		"occupied": activeCount > 0,
	})
}
