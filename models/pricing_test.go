package models_test

import (
	"testing"

	"vibedine-api/models"

	"github.com/stretchr/testify/assert"
)

func TestPortionMultiplier(t *testing.T) {
	assert.Equal(t, 1.5, models.PortionMultiplier(models.PortionLarge))
	assert.Equal(t, 1.0, models.PortionMultiplier(models.PortionStandard))
	assert.Equal(t, 1.0, models.PortionMultiplier(""))
	assert.Equal(t, 1.0, models.PortionMultiplier("large")) // case sensitive by contract
}

func TestLineTotal(t *testing.T) {
	t.Run("large portion scales price by 1.5", func(t *testing.T) {
		// $10.00 x 1.5 x 2 = $30.00
		assert.Equal(t, 30.0, models.LineTotal(10.00, models.PortionLarge, 2))
	})

	t.Run("standard portion is unscaled", func(t *testing.T) {
		assert.Equal(t, 25.8, models.LineTotal(12.90, models.PortionStandard, 2))
	})

	t.Run("rounds to cents", func(t *testing.T) {
		// 9.99 x 1.5 = 14.985 → 14.99 per unit quantity 1
		assert.Equal(t, 14.99, models.LineTotal(9.99, models.PortionLarge, 1))
	})
}

func TestOrderTotals(t *testing.T) {
	t.Run("tax is 10 percent and grand total adds up", func(t *testing.T) {
		items := []models.OrderItem{
			{TotalPrice: models.LineTotal(10.00, models.PortionLarge, 2)},
		}
		subtotal, tax, total := models.OrderTotals(items)

		assert.Equal(t, 30.0, subtotal)
		assert.Equal(t, 3.0, tax)
		assert.Equal(t, 33.0, total)
	})

	t.Run("sums multiple lines", func(t *testing.T) {
		items := []models.OrderItem{
			{TotalPrice: 12.50},
			{TotalPrice: 7.25},
		}
		subtotal, tax, total := models.OrderTotals(items)

		assert.Equal(t, 19.75, subtotal)
		assert.Equal(t, 1.98, tax)
		assert.Equal(t, 21.73, total)
	})

	t.Run("empty order totals zero", func(t *testing.T) {
		subtotal, tax, total := models.OrderTotals(nil)
		assert.Zero(t, subtotal)
		assert.Zero(t, tax)
		assert.Zero(t, total)
	})
}

func TestNutritionScaled(t *testing.T) {
	n := models.Nutrition{Calories: 400, Protein: 20, Carbs: 50, Fat: 10, Sodium: 600, Fiber: 4}
	large := n.Scaled(1.5)

	assert.Equal(t, 600.0, large.Calories)
	assert.Equal(t, 30.0, large.Protein)
	assert.Equal(t, 75.0, large.Carbs)
	assert.Equal(t, 15.0, large.Fat)
	assert.Equal(t, 900.0, large.Sodium)
	assert.Equal(t, 6.0, large.Fiber)
}

func TestEstimatePrepTime(t *testing.T) {
	menu := map[uint]models.MenuItem{
		1: {ID: 1, PreparationTime: 10},
		2: {ID: 2, PreparationTime: 25},
	}

	t.Run("uses the slowest item plus two minutes per extra line", func(t *testing.T) {
		items := []models.OrderItem{{MenuItemID: 1}, {MenuItemID: 2}}
		assert.Equal(t, 27, models.EstimatePrepTime(items, menu))
	})

	t.Run("single line has no surcharge", func(t *testing.T) {
		items := []models.OrderItem{{MenuItemID: 2}}
		assert.Equal(t, 25, models.EstimatePrepTime(items, menu))
	})

	t.Run("falls back to a default when items carry no estimate", func(t *testing.T) {
		items := []models.OrderItem{{MenuItemID: 99}}
		assert.Equal(t, 15, models.EstimatePrepTime(items, menu))
	})
}
