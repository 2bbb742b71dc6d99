package handlers

import (
	"net/http"
	"sort"
	"strings"

	"vibedine-api/config"
	"vibedine-api/middleware"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
)

type reason struct {
	Text string `json:"text"`
	Type string `json:"type"` // health | dietary | popular | history
}

type recommendation struct {
	models.MenuItem
	Score   float64  `json:"score"`
	Reasons []reason `json:"reasons"`
}

// orderCounts returns how many times each menu item has been ordered,
// optionally restricted to one customer's orders
func orderCounts(customerID *uint) map[uint]int {
	var items []models.OrderItem
	query := config.DB.Model(&models.OrderItem{})
	if customerID != nil {
		query = query.Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.customer_id = ?", *customerID)
	}
	query.Find(&items)

	counts := map[uint]int{}
	for _, it := range items {
		counts[it.MenuItemID] += it.Quantity
	}
	return counts
}

// GetRecommendations scores available dishes for the logged-in customer:
// allergen conflicts are dropped outright, then dietary plan, health goals
// and order history each add weight
func GetRecommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var items []models.MenuItem
	config.DB.Where("is_available = ?", true).Find(&items)

	popularity := orderCounts(nil)
	mine := orderCounts(&userID)

	allergies := map[string]bool{}
	for _, a := range user.HealthProfile.Allergies {
		allergies[strings.ToLower(a)] = true
	}

	var recs []recommendation
	for _, item := range items {
		conflict := false
		for _, allergen := range item.Allergens {
			if allergies[strings.ToLower(allergen)] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		rec := recommendation{MenuItem: item, Score: 0.5}
		for _, goal := range user.HealthProfile.HealthGoals {
			if text, ok := goalMatch(goal, item.NutritionPerServing); ok {
				rec.Score += 0.15
				rec.Reasons = append(rec.Reasons, reason{Text: text, Type: "health"})
			}
		}
		if text, ok := dietaryMatch(user.HealthProfile.DietaryPlan, item); ok {
			rec.Score += 0.15
			rec.Reasons = append(rec.Reasons, reason{Text: text, Type: "dietary"})
		}
		if popularity[item.ID] >= 5 {
			rec.Score += 0.1
			rec.Reasons = append(rec.Reasons, reason{Text: "Popular choice", Type: "popular"})
		}
		if mine[item.ID] > 0 {
			rec.Score += 0.1
			rec.Reasons = append(rec.Reasons, reason{Text: "You ordered this before", Type: "history"})
		}
		if len(rec.Reasons) == 0 {
			rec.Reasons = append(rec.Reasons, reason{Text: "Safe for your profile", Type: "health"})
		}
		if rec.Score > 1 {
			rec.Score = 1
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > 12 {
		recs = recs[:12]
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func goalMatch(goal string, n models.Nutrition) (string, bool) {
	switch goal {
	case "Weight Loss":
		if n.Calories > 0 && n.Calories <= 500 {
			return "Under 500 kcal for weight loss", true
		}
	case "Muscle Gain", "High Protein":
		if n.Protein >= 25 {
			return "High protein", true
		}
	case "Low Sodium":
		if n.Sodium > 0 && n.Sodium <= 400 {
			return "Low sodium", true
		}
	case "Keto":
		if n.Carbs > 0 && n.Carbs <= 15 {
			return "Keto friendly", true
		}
	}
	return "", false
}

func dietaryMatch(plan string, item models.MenuItem) (string, bool) {
	switch plan {
	case "Vegan", "Vegetarian":
		for _, ing := range item.Ingredients {
			lower := strings.ToLower(ing)
			for _, animal := range []string{"chicken", "beef", "pork", "fish", "shrimp", "bacon", "lamb"} {
				if strings.Contains(lower, animal) {
					return "", false
				}
			}
		}
		return "Fits your " + strings.ToLower(plan) + " plan", true
	}
	return "", false
}

// GetPopularRecommendations returns the most-ordered available dishes;
// used for guests without a profile
func GetPopularRecommendations(c *gin.Context) {
	var items []models.MenuItem
	config.DB.Where("is_available = ?", true).Find(&items)

	popularity := orderCounts(nil)

	var recs []recommendation
	for _, item := range items {
		recs = append(recs, recommendation{
			MenuItem: item,
			Score:    0.5 + float64(popularity[item.ID])*0.01,
			Reasons:  []reason{{Text: "Popular choice", Type: "popular"}},
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > 12 {
		recs = recs[:12]
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
