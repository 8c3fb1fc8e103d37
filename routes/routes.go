// routes/routes.go
package routes

import (
	"net/http"

	"backend/controllers"
	"backend/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.RequestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Analyze accepts the preview sentinel without a token, so auth is
		// optional here and the handler enforces it for persistence.
		api.POST("/meals/analyze", middlewares.OptionalAuth(), controllers.AnalyzeMeal)

		authed := api.Group("")
		authed.Use(middlewares.AuthMiddleware())
		{
			authed.POST("/meals/refine", controllers.RefineMeal)
			authed.GET("/meals", controllers.ListMeals)
			authed.GET("/progress/daily", controllers.GetDailyProgress)
		}
	}

	return r
}
