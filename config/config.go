package config

import (
	"log"
	"os"

	"vibedine-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign tokens, read from env or fallback
var JWTSecret []byte

func init() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	JWTSecret = []byte(GetEnv("JWT_SECRET", "vibedine_super_secret_2024"))
}

// GetEnv reads an environment variable with a fallback default
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the sqlite database named by DB_PATH and migrates all models
func InitDB() {
	OpenDB(GetEnv("DB_PATH", "vibedine.db"))
}

// OpenDB opens an explicit DSN; tests use ":memory:"
func OpenDB(dsn string) {
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Feedback{},
		&models.DiningTable{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database connected and migrated")
}

// Seed ensures dining tables and a default admin account exist
func Seed() {
	var tableCount int64
	DB.Model(&models.DiningTable{}).Count(&tableCount)
	if tableCount == 0 {
		numTables := 12
		for n := 1; n <= numTables; n++ {
			DB.Create(&models.DiningTable{Number: n, Seats: 4})
		}
		log.Printf("Seeded %d dining tables", numTables)
	}

	adminEmail := GetEnv("ADMIN_EMAIL", "admin@vibedine.local")
	var admin models.User
	if err := DB.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword(
			[]byte(GetEnv("ADMIN_PASSWORD", "admin1234")), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash seed admin password:", err)
		}
		DB.Create(&models.User{
			Name:         "Administrator",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Active:       true,
		})
		log.Printf("Seeded admin account %s", adminEmail)
	}
}
