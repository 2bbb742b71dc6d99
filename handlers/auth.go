package handlers

import (
	"net/http"

	"vibedine-api/config"
	"vibedine-api/middleware"
	"vibedine-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Hub is the realtime fan-out sink, set once from main. Handlers emit
// through it after every order mutation; nil means no-op (tests).
var Hub RealtimeEmitter

// RealtimeEmitter is what handlers need from the websocket hub
type RealtimeEmitter interface {
	Emit(room, event string, data interface{})
	EmitOrderRooms(tableNumber int, event string, data interface{})
}

func emit(room, event string, data interface{}) {
	if Hub != nil {
		Hub.Emit(room, event, data)
	}
}

func emitOrderRooms(tableNumber int, event string, data interface{}) {
	if Hub != nil {
		Hub.EmitOrderRooms(tableNumber, event, data)
	}
}

type RegisterRequest struct {
	Name          string                `json:"name" binding:"required"`
	Email         string                `json:"email" binding:"required,email"`
	Password      string                `json:"password" binding:"required,min=6"`
	Phone         string                `json:"phone"`
	HealthProfile *models.HealthProfile `json:"healthProfile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"role":          user.Role,
		"healthProfile": user.HealthProfile,
	}
}

// Register creates a new customer account. Staff accounts are created by
// an admin through the staff endpoints, never by self-registration.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
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
		Role:         models.RoleCustomer,
		Phone:        req.Phone,
		Active:       true,
	}
	if req.HealthProfile != nil {
		user.HealthProfile = *req.HealthProfile
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    userPayload(&user),
	})
}

// Login authenticates any account and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, ok := authenticate(c, req.Email, req.Password)
	if !ok {
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userPayload(user),
	})
}

// AdminLogin authenticates back-office staff only; customer accounts are
// rejected here even with a valid password
func AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, ok := authenticate(c, req.Email, req.Password)
	if !ok {
		return
	}
	if !user.Role.IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Staff account required"})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userPayload(user),
	})
}

func authenticate(c *gin.Context, email, password string) (*models.User, bool) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return nil, false
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account is deactivated"})
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return nil, false
	}
	return &user, true
}

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateHealthProfile replaces the caller's dietary preferences
func UpdateHealthProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.HealthProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	user.HealthProfile = req
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update health profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Health profile updated",
		"healthProfile": user.HealthProfile,
	})
}
