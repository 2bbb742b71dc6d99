package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"vibedine-api/config"
	"vibedine-api/middleware"
	"vibedine-api/models"
	"vibedine-api/realtime"
	"vibedine-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	TableNumber     int    `json:"tableNumber" binding:"required,min=1"`
	GuestName       string `json:"guestName"`
	SpecialRequests string `json:"specialRequests"`
	Items           []struct {
		MenuItemID     uint                  `json:"menuItemId" binding:"required"`
		Quantity       int                   `json:"quantity" binding:"required,min=1"`
		Customizations models.Customizations `json:"customizations"`
	} `json:"items" binding:"required,min=1"`
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// orderEvent is the payload every order room event carries. Version lets
// clients discard stale poll responses arriving after a newer event.
func orderEvent(o *models.Order) gin.H {
	return gin.H{
		"orderId":     o.ID,
		"orderNumber": o.OrderNumber,
		"tableNumber": o.TableNumber,
		"status":      o.Status,
		"priority":    o.Priority,
		"version":     o.Version,
	}
}

// CreateOrder turns a cart into an order. Runs with optional auth: a
// logged-in customer gets allergy alerts from their health profile,
// a guest orders with just a table number.
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var table models.DiningTable
	if err := config.DB.Where("number = ?", req.TableNumber).First(&table).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Table not found"})
		return
	}

	// Snapshot menu items and price every line server-side
	var orderItems []models.OrderItem
	menuByID := map[uint]models.MenuItem{}
	for _, reqItem := range req.Items {
		var menuItem models.MenuItem
		if err := config.DB.First(&menuItem, reqItem.MenuItemID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Menu item not found"})
			return
		}
		if !menuItem.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Menu item '" + menuItem.Name + "' is not available"})
			return
		}
		menuByID[menuItem.ID] = menuItem

		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:     menuItem.ID,
			Name:           menuItem.Name,
			Price:          menuItem.Price,
			Quantity:       reqItem.Quantity,
			Customizations: reqItem.Customizations,
			TotalPrice:     models.LineTotal(menuItem.Price, reqItem.Customizations.Portion, reqItem.Quantity),
		})
	}

	subtotal, tax, total := models.OrderTotals(orderItems)

	order := models.Order{
		OrderNumber:       newOrderNumber(),
		TableNumber:       req.TableNumber,
		GuestName:         req.GuestName,
		Items:             orderItems,
		Subtotal:          subtotal,
		Tax:               tax,
		Total:             total,
		Status:            models.StatusReceived,
		Priority:          models.PriorityNormal,
		Version:           1,
		EstimatedPrepTime: models.EstimatePrepTime(orderItems, menuByID),
		SpecialRequests:   req.SpecialRequests,
	}

	// Allergy alerts: intersect the customer's allergies with every
	// ordered item's allergens so the kitchen sees conflicts up front
	if userID := middleware.GetUserID(c); userID != 0 {
		order.CustomerID = &userID
		var user models.User
		if err := config.DB.First(&user, userID).Error; err == nil {
			order.AllergyAlerts = allergyAlerts(user.HealthProfile.Allergies, orderItems, menuByID)
			if order.GuestName == "" {
				order.GuestName = user.Name
			}
		}
	}

	if err := config.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to place order"})
		return
	}

	if err := config.DB.Create(&models.OrderStatusHistory{
		OrderID:  order.ID,
		ToStatus: models.StatusReceived,
		Note:     "Order placed",
	}).Error; err != nil {
		log.Printf("order %s: failed to record status history: %v", order.OrderNumber, err)
	}

	if err := config.DB.Preload("Items.MenuItem").First(&order, order.ID).Error; err != nil {
		log.Printf("order %s: failed to reload after create: %v", order.OrderNumber, err)
	}

	emit(realtime.RoomKitchen, realtime.EventNewOrder, orderEvent(&order))
	emit(realtime.RoomAdmin, realtime.EventNewOrder, orderEvent(&order))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func allergyAlerts(allergies []string, items []models.OrderItem, menu map[uint]models.MenuItem) []string {
	if len(allergies) == 0 {
		return nil
	}
	lookup := map[string]bool{}
	for _, a := range allergies {
		lookup[strings.ToLower(a)] = true
	}
	var alerts []string
	seen := map[string]bool{}
	for _, it := range items {
		m, ok := menu[it.MenuItemID]
		if !ok {
			continue
		}
		for _, allergen := range m.Allergens {
			key := strings.ToLower(allergen)
			if lookup[key] && !seen[key] {
				alerts = append(alerts, allergen)
				seen[key] = true
			}
		}
	}
	return alerts
}

// GetOrder returns a single order with items and history. Public so that
// guests can track their table's order.
func GetOrder(c *gin.Context) {
	var order models.Order
	if err := config.DB.
		Preload("Items.MenuItem").
		Preload("StatusHistory").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders returns all orders for back-office views, newest first
func ListOrders(c *gin.Context) {
	var orders []models.Order
	query := config.DB.Preload("Items.MenuItem")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if tableNumber := c.Query("table"); tableNumber != "" {
		query = query.Where("table_number = ?", tableNumber)
	}

	query.Order("created_at desc").Find(&orders)

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(orders),
		"orderSummary": summary,
		"orders":       orders,
	})
}

// ListActiveOrders returns the kitchen queue: everything still in the
// pipeline, priority first, oldest first within a priority
func ListActiveOrders(c *gin.Context) {
	var orders []models.Order
	config.DB.Preload("Items.MenuItem").
		Where("status NOT IN ?", []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Find(&orders)

	statemachine.SortQueue(orders)

	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus advances an order one step (or cancels it). The UPDATE
// carries the expected current status so two staff members advancing the
// same order concurrently cannot double-step it; the loser gets 409.
func UpdateOrderStatus(c *gin.Context) {
	staffID := middleware.GetUserID(c)

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":         "Invalid state transition",
			"currentStatus":   order.Status,
			"requested":       req.Status,
			"reason":          err.Error(),
			"validNextStates": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	// The version bump happens in SQL so a concurrent priority change can
	// never produce two mutations sharing one version number
	prevStatus := order.Status
	result := config.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, prevStatus).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Order was updated by someone else, refresh and retry"})
		return
	}

	if err := config.DB.Create(&models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: prevStatus,
		ToStatus:   req.Status,
		ChangedBy:  staffID,
		Note:       req.Note,
	}).Error; err != nil {
		log.Printf("order %s: failed to record status history: %v", order.OrderNumber, err)
	}

	config.DB.First(&order, order.ID)

	emit(realtime.TableRoom(order.TableNumber), realtime.EventOrderStatusUpdate, orderEvent(&order))
	emit(realtime.RoomKitchen, realtime.EventOrderUpdated, orderEvent(&order))
	emit(realtime.RoomAdmin, realtime.EventOrderUpdated, orderEvent(&order))

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order status updated",
		"orderId":        order.ID,
		"previousStatus": prevStatus,
		"currentStatus":  order.Status,
		"version":        order.Version,
	})
}

type UpdateOrderPriorityRequest struct {
	Priority int `json:"priority" binding:"required"`
}

// UpdateOrderPriority sets urgency independently of status. Terminal
// orders are frozen: their priority can no longer change.
func UpdateOrderPriority(c *gin.Context) {
	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	var req UpdateOrderPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Priority must be 1 (normal), 2 (high) or 3 (urgent)"})
		return
	}
	if statemachine.IsTerminal(order.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":       "Cannot change priority of a finished order",
			"currentStatus": order.Status,
		})
		return
	}

	// Guarded the same way as status updates: the order may have gone
	// terminal between the read above and this write
	result := config.DB.Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", order.ID,
			[]models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Updates(map[string]interface{}{
			"priority": req.Priority,
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Cannot change priority of a finished order",
		})
		return
	}

	config.DB.First(&order, order.ID)

	emitOrderRooms(order.TableNumber, realtime.EventOrderPriorityUpdate, orderEvent(&order))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order priority updated",
		"orderId":  order.ID,
		"priority": order.Priority,
		"version":  order.Version,
	})
}

// RequestWaiter notifies staff rooms that the order's table wants service
func RequestWaiter(c *gin.Context) {
	serviceRequest(c, realtime.EventWaiterRequest, "Waiter requested")
}

// RequestBill notifies staff rooms that the order's table wants the bill
func RequestBill(c *gin.Context) {
	serviceRequest(c, realtime.EventBillRequest, "Bill requested")
}

func serviceRequest(c *gin.Context, event, message string) {
	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	payload := gin.H{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"tableNumber": order.TableNumber,
		"requestedAt": time.Now(),
	}
	emit(realtime.RoomKitchen, event, payload)
	emit(realtime.RoomAdmin, event, payload)

	c.JSON(http.StatusOK, gin.H{"message": message})
}
