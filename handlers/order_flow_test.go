package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"vibedine-api/config"
	"vibedine-api/middleware"
	"vibedine-api/models"
	"vibedine-api/realtime"
	"vibedine-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var router *gin.Engine

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.OpenDB("file::memory:?cache=shared")

	hub := realtime.NewHub()
	go hub.Run()

	router = gin.New()
	routes.SetupRoutes(router, hub)

	os.Exit(m.Run())
}

func seedBasics(t *testing.T) (menuItem models.MenuItem, staffToken string) {
	t.Helper()

	config.DB.Where("1 = 1").Delete(&models.OrderStatusHistory{})
	config.DB.Where("1 = 1").Delete(&models.OrderItem{})
	config.DB.Where("1 = 1").Delete(&models.Feedback{})
	config.DB.Where("1 = 1").Delete(&models.Order{})
	config.DB.Where("1 = 1").Delete(&models.MenuItem{})
	config.DB.Where("1 = 1").Delete(&models.DiningTable{})
	config.DB.Where("1 = 1").Delete(&models.User{})

	require.NoError(t, config.DB.Create(&models.DiningTable{Number: 1, Seats: 4}).Error)

	menuItem = models.MenuItem{
		Name:            "Pad Thai",
		Price:           10.00,
		Category:        models.CategoryMainCourse,
		IsAvailable:     true,
		Ingredients:     []string{"Rice noodles", "Egg", "Peanuts"},
		Allergens:       []string{"Peanuts", "Egg"},
		Serves:          1,
		PreparationTime: 12,
	}
	require.NoError(t, config.DB.Create(&menuItem).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("kitchen123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	staff := models.User{
		Name:         "Chef",
		Email:        "chef@vibedine.local",
		PasswordHash: string(hash),
		Role:         models.RoleKitchenStaff,
		Active:       true,
	}
	require.NoError(t, config.DB.Create(&staff).Error)

	staffToken, err = middleware.GenerateToken(&staff)
	require.NoError(t, err)
	return menuItem, staffToken
}

func doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func placeOrder(t *testing.T, menuItemID uint) models.Order {
	t.Helper()
	w := doJSON(t, http.MethodPost, "/api/orders", "", gin.H{
		"tableNumber": 1,
		"guestName":   "Table 1",
		"items": []gin.H{
			{
				"menuItemId": menuItemID,
				"quantity":   2,
				"customizations": gin.H{
					"portion": "Large",
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Order
}

func TestCreateOrder(t *testing.T) {
	item, _ := seedBasics(t)

	t.Run("prices the cart server-side with large portion and tax", func(t *testing.T) {
		order := placeOrder(t, item.ID)

		// $10.00 x 1.5 x 2 = $30.00, tax $3.00, total $33.00
		assert.Equal(t, 30.0, order.Subtotal)
		assert.Equal(t, 3.0, order.Tax)
		assert.Equal(t, 33.0, order.Total)
		assert.Equal(t, models.StatusReceived, order.Status)
		assert.Equal(t, models.PriorityNormal, order.Priority)
		assert.Equal(t, 1, order.Version)
		assert.NotEmpty(t, order.OrderNumber)
		assert.Equal(t, 12, order.EstimatedPrepTime)
	})

	t.Run("rejects unknown table", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/orders", "", gin.H{
			"tableNumber": 99,
			"items":       []gin.H{{"menuItemId": item.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects unavailable items", func(t *testing.T) {
		config.DB.Model(&models.MenuItem{}).Where("id = ?", item.ID).Update("is_available", false)
		defer config.DB.Model(&models.MenuItem{}).Where("id = ?", item.ID).Update("is_available", true)

		w := doJSON(t, http.MethodPost, "/api/orders", "", gin.H{
			"tableNumber": 1,
			"items":       []gin.H{{"menuItemId": item.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/orders", "", gin.H{
			"tableNumber": 1,
			"items":       []gin.H{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("flags allergy conflicts from the customer profile", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
		require.NoError(t, err)
		customer := models.User{
			Name:         "Alex",
			Email:        "alex@example.com",
			PasswordHash: string(hash),
			Role:         models.RoleCustomer,
			Active:       true,
			HealthProfile: models.HealthProfile{
				Allergies: []string{"peanuts"},
			},
		}
		require.NoError(t, config.DB.Create(&customer).Error)
		token, err := middleware.GenerateToken(&customer)
		require.NoError(t, err)

		w := doJSON(t, http.MethodPost, "/api/orders", token, gin.H{
			"tableNumber": 1,
			"items":       []gin.H{{"menuItemId": item.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Order models.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"Peanuts"}, resp.Order.AllergyAlerts)
	})
}

func TestOrderLifecycle(t *testing.T) {
	item, staffToken := seedBasics(t)
	order := placeOrder(t, item.ID)

	advance := func(to models.OrderStatus) *httptest.ResponseRecorder {
		return doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
			staffToken, gin.H{"status": to})
	}

	t.Run("walks the full pipeline one step at a time", func(t *testing.T) {
		for i, to := range []models.OrderStatus{
			models.StatusPreparing, models.StatusQualityCheck,
			models.StatusReady, models.StatusDelivered,
		} {
			w := advance(to)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp struct {
				CurrentStatus models.OrderStatus `json:"currentStatus"`
				Version       int                `json:"version"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, to, resp.CurrentStatus)
			assert.Equal(t, i+2, resp.Version, "version must grow with every transition")
		}
	})

	t.Run("rejects transitions out of delivered", func(t *testing.T) {
		w := advance(models.StatusPreparing)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects priority changes on a finished order", func(t *testing.T) {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/priority", order.ID),
			staffToken, gin.H{"priority": 3})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("records the audit trail", func(t *testing.T) {
		var history []models.OrderStatusHistory
		config.DB.Where("order_id = ?", order.ID).Order("id").Find(&history)
		require.Len(t, history, 5) // placement + four transitions
		assert.Equal(t, models.StatusReceived, history[0].ToStatus)
		assert.Equal(t, models.StatusDelivered, history[4].ToStatus)
	})
}

func TestOrderStatusGuards(t *testing.T) {
	item, staffToken := seedBasics(t)
	order := placeOrder(t, item.ID)

	t.Run("rejects skipping pipeline steps", func(t *testing.T) {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
			staffToken, gin.H{"status": models.StatusReady})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			ValidNextStates []models.OrderStatus `json:"validNextStates"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []models.OrderStatus{models.StatusPreparing, models.StatusCancelled}, resp.ValidNextStates)
	})

	t.Run("allows cancellation from any active state", func(t *testing.T) {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
			staffToken, gin.H{"status": models.StatusCancelled})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requires a staff token", func(t *testing.T) {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
			"", gin.H{"status": models.StatusPreparing})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// Version must step exactly once per mutation regardless of which field
// changed; the bump happens inside the UPDATE itself so interleaved status
// and priority writers can never share a version number.
func TestVersionMonotonicAcrossMutations(t *testing.T) {
	item, staffToken := seedBasics(t)
	order := placeOrder(t, item.ID)
	require.Equal(t, 1, order.Version)

	setPriority := func(p int) int {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/priority", order.ID),
			staffToken, gin.H{"priority": p})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Version int `json:"version"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Version
	}
	setStatus := func(s models.OrderStatus) int {
		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
			staffToken, gin.H{"status": s})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Version int `json:"version"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Version
	}

	assert.Equal(t, 2, setPriority(models.PriorityHigh))
	assert.Equal(t, 3, setStatus(models.StatusPreparing))
	assert.Equal(t, 4, setPriority(models.PriorityUrgent))
	assert.Equal(t, 5, setStatus(models.StatusQualityCheck))

	var stored models.Order
	require.NoError(t, config.DB.First(&stored, order.ID).Error)
	assert.Equal(t, 5, stored.Version)
	assert.Equal(t, models.PriorityUrgent, stored.Priority)
}

func TestActiveOrderQueue(t *testing.T) {
	item, staffToken := seedBasics(t)

	first := placeOrder(t, item.ID)
	second := placeOrder(t, item.ID)
	third := placeOrder(t, item.ID)

	// Bump the newest order to urgent
	w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/priority", third.ID),
		staffToken, gin.H{"priority": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, http.MethodGet, "/api/orders/active", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count  int            `json:"count"`
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)

	// Urgent first, then equal priorities by arrival order
	assert.Equal(t, third.ID, resp.Orders[0].ID)
	assert.Equal(t, first.ID, resp.Orders[1].ID)
	assert.Equal(t, second.ID, resp.Orders[2].ID)
}

func TestFeedbackFlow(t *testing.T) {
	item, staffToken := seedBasics(t)
	order := placeOrder(t, item.ID)

	submit := func() *httptest.ResponseRecorder {
		return doJSON(t, http.MethodPost, "/api/feedback", "", gin.H{
			"orderId":        order.ID,
			"foodRating":     5,
			"serviceRating":  4,
			"overallRating":  5,
			"comment":        "Great pad thai",
			"wouldRecommend": true,
		})
	}

	t.Run("rejects feedback before delivery", func(t *testing.T) {
		w := submit()
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("accepts feedback once delivered", func(t *testing.T) {
		for _, to := range []models.OrderStatus{
			models.StatusPreparing, models.StatusQualityCheck,
			models.StatusReady, models.StatusDelivered,
		} {
			w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID),
				staffToken, gin.H{"status": to})
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := submit()
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("rejects duplicate feedback for the same order", func(t *testing.T) {
		w := submit()
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("database itself refuses a second feedback row", func(t *testing.T) {
		err := config.DB.Create(&models.Feedback{
			OrderID:       order.ID,
			TableNumber:   order.TableNumber,
			FoodRating:    1,
			ServiceRating: 1,
			OverallRating: 1,
		}).Error
		require.Error(t, err, "unique index on order_id must hold without the handler check")
	})
}

func TestMenuPermissions(t *testing.T) {
	item, staffToken := seedBasics(t)

	t.Run("kitchen staff cannot mutate the menu", func(t *testing.T) {
		w := doJSON(t, http.MethodDelete, fmt.Sprintf("/api/menu/%d", item.ID), staffToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin can toggle availability", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		require.NoError(t, err)
		admin := models.User{
			Name: "Boss", Email: "boss@vibedine.local",
			PasswordHash: string(hash), Role: models.RoleAdmin, Active: true,
		}
		require.NoError(t, config.DB.Create(&admin).Error)
		adminToken, err := middleware.GenerateToken(&admin)
		require.NoError(t, err)

		w := doJSON(t, http.MethodPatch, fmt.Sprintf("/api/menu/%d/availability", item.ID),
			adminToken, gin.H{"isAvailable": false})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var reloaded models.MenuItem
		require.NoError(t, config.DB.First(&reloaded, item.ID).Error)
		assert.False(t, reloaded.IsAvailable)
	})
}
