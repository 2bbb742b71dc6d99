package handlers

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"vibedine-api/config"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// prepMinutes returns minutes from order creation until it reached the
// given status, based on the audit trail. Returns false when the order
// never reached that status.
func prepMinutes(order *models.Order, history []models.OrderStatusHistory, to models.OrderStatus) (float64, bool) {
	for _, h := range history {
		if h.OrderID == order.ID && h.ToStatus == to {
			return h.CreatedAt.Sub(order.CreatedAt).Minutes(), true
		}
	}
	return 0, false
}

// Dashboard returns today's headline numbers for the back-office landing page
func Dashboard(c *gin.Context) {
	today := startOfToday()

	var orders []models.Order
	config.DB.Where("created_at >= ?", today).Find(&orders)

	var revenue float64
	active := 0
	occupied := map[int]bool{}
	for _, o := range orders {
		if o.Status == models.StatusDelivered {
			revenue += o.Total
		}
		if o.Active() {
			active++
			occupied[o.TableNumber] = true
		}
	}

	var history []models.OrderStatusHistory
	config.DB.Where("created_at >= ? AND to_status = ?", today, models.StatusReady).Find(&history)
	var prepSum float64
	prepCount := 0
	for i := range orders {
		if m, ok := prepMinutes(&orders[i], history, models.StatusReady); ok {
			prepSum += m
			prepCount++
		}
	}
	avgPrep := 0.0
	if prepCount > 0 {
		avgPrep = round1(prepSum / float64(prepCount))
	}

	var totalTables int64
	config.DB.Model(&models.DiningTable{}).Count(&totalTables)

	c.JSON(http.StatusOK, gin.H{
		"todayStats": gin.H{
			"orders":         len(orders),
			"revenue":        round2(revenue),
			"activeOrders":   active,
			"avgPrepTime":    avgPrep,
			"tablesOccupied": len(occupied),
			"totalTables":    totalTables,
		},
	})
}

func parsePeriod(raw string) time.Duration {
	switch strings.TrimSpace(raw) {
	case "30d":
		return 30 * 24 * time.Hour
	case "90d":
		return 90 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Analytics aggregates revenue, popularity and status distribution over a period
func Analytics(c *gin.Context) {
	since := time.Now().Add(-parsePeriod(c.Query("period")))

	var orders []models.Order
	config.DB.Preload("Items").Where("created_at >= ?", since).Find(&orders)

	revenueByDay := map[string]*struct {
		Revenue float64
		Orders  int
	}{}
	itemCounts := map[string]int{}
	statusCounts := map[models.OrderStatus]int{}
	var totalRevenue float64

	for _, o := range orders {
		statusCounts[o.Status]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Total
			day := o.CreatedAt.Format("2006-01-02")
			if revenueByDay[day] == nil {
				revenueByDay[day] = &struct {
					Revenue float64
					Orders  int
				}{}
			}
			revenueByDay[day].Revenue += o.Total
			revenueByDay[day].Orders++
		}
		for _, it := range o.Items {
			itemCounts[it.Name] += it.Quantity
		}
	}

	// Day buckets in chronological order, empty days included so charts
	// keep a continuous axis
	var days []gin.H
	for d := since; !d.After(time.Now()); d = d.Add(24 * time.Hour) {
		key := d.Format("2006-01-02")
		entry := gin.H{"date": key, "revenue": 0.0, "orders": 0}
		if b, ok := revenueByDay[key]; ok {
			entry["revenue"] = round2(b.Revenue)
			entry["orders"] = b.Orders
		}
		days = append(days, entry)
	}

	var popular []gin.H
	for name, count := range itemCounts {
		popular = append(popular, gin.H{"name": name, "count": count})
	}
	// Highest count first
	sort.Slice(popular, func(i, j int) bool {
		return popular[i]["count"].(int) > popular[j]["count"].(int)
	})
	if len(popular) > 10 {
		popular = popular[:10]
	}

	var byStatus []gin.H
	for _, s := range []models.OrderStatus{
		models.StatusReceived, models.StatusPreparing, models.StatusQualityCheck,
		models.StatusReady, models.StatusDelivered, models.StatusCancelled,
	} {
		if statusCounts[s] > 0 {
			byStatus = append(byStatus, gin.H{"status": s, "count": statusCounts[s]})
		}
	}

	delivered := statusCounts[models.StatusDelivered]
	avgOrderValue := 0.0
	if delivered > 0 {
		avgOrderValue = round2(totalRevenue / float64(delivered))
	}

	c.JSON(http.StatusOK, gin.H{
		"revenueByDay":   days,
		"popularItems":   popular,
		"ordersByStatus": byStatus,
		"avgOrderValue":  avgOrderValue,
		"totalRevenue":   round2(totalRevenue),
		"totalOrders":    len(orders),
	})
}

// ServiceMetrics reports kitchen timing over the whole history: prep time
// is created → ready, total time is created → delivered
func ServiceMetrics(c *gin.Context) {
	var orders []models.Order
	config.DB.Find(&orders)

	var history []models.OrderStatusHistory
	config.DB.Where("to_status IN ?", []models.OrderStatus{models.StatusReady, models.StatusDelivered}).Find(&history)

	var prepTimes, totalTimes []float64
	cancelled := 0
	for i := range orders {
		if orders[i].Status == models.StatusCancelled {
			cancelled++
		}
		if m, ok := prepMinutes(&orders[i], history, models.StatusReady); ok {
			prepTimes = append(prepTimes, m)
		}
		if m, ok := prepMinutes(&orders[i], history, models.StatusDelivered); ok {
			totalTimes = append(totalTimes, m)
		}
	}

	avg := func(vals []float64) float64 {
		if len(vals) == 0 {
			return 0
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return round1(sum / float64(len(vals)))
	}
	minMax := func(vals []float64) (float64, float64) {
		if len(vals) == 0 {
			return 0, 0
		}
		lo, hi := vals[0], vals[0]
		for _, v := range vals {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		return round1(lo), round1(hi)
	}

	minPrep, maxPrep := minMax(prepTimes)
	accuracy := 100.0
	if len(orders) > 0 {
		accuracy = round1(float64(len(orders)-cancelled) / float64(len(orders)) * 100)
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics": gin.H{
			"avgPrepTime":   avg(prepTimes),
			"minPrepTime":   minPrep,
			"maxPrepTime":   maxPrep,
			"avgTotalTime":  avg(totalTimes),
			"totalOrders":   len(orders),
			"orderAccuracy": accuracy,
		},
	})
}

// ListStaff returns all back-office accounts
func ListStaff(c *gin.Context) {
	var staff []models.User
	config.DB.Where("role IN ?", []models.UserRole{
		models.RoleAdmin, models.RoleManager, models.RoleKitchenStaff,
	}).Find(&staff)

	c.JSON(http.StatusOK, gin.H{"count": len(staff), "staff": staff})
}

type CreateStaffRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Phone    string          `json:"phone"`
	Role     models.UserRole `json:"role" binding:"required"`
}

// CreateStaff adds a back-office account (admin only)
func CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !req.Role.IsStaff() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Role must be admin, manager or kitchen_staff"})
		return
	}

	var existing models.User
	if result := config.DB.Where("email = ?", req.Email).First(&existing); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        req.Phone,
		Active:       true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create staff member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Staff member added", "staff": user})
}

// StaffPerformance reports today's per-staff throughput from the audit trail
func StaffPerformance(c *gin.Context) {
	today := startOfToday()

	var history []models.OrderStatusHistory
	config.DB.Where("created_at >= ? AND changed_by > 0", today).Find(&history)

	type perf struct {
		orders   map[uint]bool
		prepSum  float64
		prepared int
	}
	byStaff := map[uint]*perf{}
	for _, h := range history {
		p := byStaff[h.ChangedBy]
		if p == nil {
			p = &perf{orders: map[uint]bool{}}
			byStaff[h.ChangedBy] = p
		}
		p.orders[h.OrderID] = true
	}

	// Attribute prep time to whoever moved the order to ready
	var readyOrders []models.Order
	config.DB.Where("created_at >= ?", today).Find(&readyOrders)
	for _, h := range history {
		if h.ToStatus != models.StatusReady {
			continue
		}
		for i := range readyOrders {
			if readyOrders[i].ID == h.OrderID {
				if p := byStaff[h.ChangedBy]; p != nil {
					p.prepSum += h.CreatedAt.Sub(readyOrders[i].CreatedAt).Minutes()
					p.prepared++
				}
				break
			}
		}
	}

	var performance []gin.H
	for staffID, p := range byStaff {
		entry := gin.H{
			"staffId":       staffID,
			"ordersHandled": len(p.orders),
		}
		if p.prepared > 0 {
			entry["avgPrepTime"] = round1(p.prepSum / float64(p.prepared))
		}
		performance = append(performance, entry)
	}

	c.JSON(http.StatusOK, gin.H{"performance": performance})
}
