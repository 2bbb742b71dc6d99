package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"vibedine-api/config"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
)

type CreateFeedbackRequest struct {
	OrderID        uint   `json:"orderId" binding:"required"`
	FoodRating     int    `json:"foodRating" binding:"required,min=1,max=5"`
	ServiceRating  int    `json:"serviceRating" binding:"required,min=1,max=5"`
	OverallRating  int    `json:"overallRating" binding:"required,min=1,max=5"`
	Comment        string `json:"comment"`
	WouldRecommend bool   `json:"wouldRecommend"`
}

// CreateFeedback records ratings for a delivered order
func CreateFeedback(c *gin.Context) {
	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	if order.Status != models.StatusDelivered {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Feedback is accepted only for delivered orders"})
		return
	}

	var existing models.Feedback
	if result := config.DB.Where("order_id = ?", order.ID).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Feedback already submitted for this order"})
		return
	}

	feedback := models.Feedback{
		OrderID:        order.ID,
		TableNumber:    order.TableNumber,
		FoodRating:     req.FoodRating,
		ServiceRating:  req.ServiceRating,
		OverallRating:  req.OverallRating,
		Comment:        req.Comment,
		WouldRecommend: req.WouldRecommend,
	}
	if err := config.DB.Create(&feedback).Error; err != nil {
		// The unique index on order_id catches a duplicate that slipped past
		// the read above
		if strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, gin.H{"message": "Feedback already submitted for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your feedback", "feedback": feedback})
}

// ListFeedback returns recent feedback entries, newest first (staff)
func ListFeedback(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var feedback []models.Feedback
	config.DB.Preload("Order").Order("created_at desc").Limit(limit).Find(&feedback)

	c.JSON(http.StatusOK, gin.H{
		"count":    len(feedback),
		"feedback": feedback,
	})
}

// FeedbackStats aggregates ratings and the recommendation rate (staff)
func FeedbackStats(c *gin.Context) {
	var feedback []models.Feedback
	config.DB.Find(&feedback)

	total := len(feedback)
	if total == 0 {
		c.JSON(http.StatusOK, gin.H{
			"totalFeedback":      0,
			"avgFoodRating":      0,
			"avgServiceRating":   0,
			"avgOverallRating":   0,
			"recommendationRate": 0,
		})
		return
	}

	var food, service, overall, recommends int
	for _, f := range feedback {
		food += f.FoodRating
		service += f.ServiceRating
		overall += f.OverallRating
		if f.WouldRecommend {
			recommends++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalFeedback":      total,
		"avgFoodRating":      round1(float64(food) / float64(total)),
		"avgServiceRating":   round1(float64(service) / float64(total)),
		"avgOverallRating":   round1(float64(overall) / float64(total)),
		"recommendationRate": round1(float64(recommends) / float64(total) * 100),
	})
}
