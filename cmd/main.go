package main

import (
	"backend/config"
	"backend/logger"
	"backend/routes"

	"go.uber.org/zap"
)

func main() {
	logger.InitializeLogger()
	defer logger.Close()

	config.InitDB()
	r := routes.SetupRouter()

	port := config.GetEnv("PORT", "8080")
	logger.Info("server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
