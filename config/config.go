package config

import (
	"fmt"
	"os"

	"backend/logger"
	"backend/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// GetEnv reads an environment variable with a fallback default.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded, relying on environment", zap.Error(err))
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	err = DB.AutoMigrate(
		&models.FoodDefinition{},
		&models.LoggedEntry{},
		&models.DailyTotal{},
	)
	if err != nil {
		logger.Fatal("AutoMigrate failed", zap.Error(err))
	}
}
