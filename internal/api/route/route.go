package route

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/app"
)

// SetupRoutes registers every API endpoint on the given engine.
func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	publicRouter := r.Group("")
	timeout := appCtx.Config.Server.RequestTimeout

	NewNewsRouter(timeout, publicRouter, appCtx.Store)
	NewSettingsRouter(timeout, publicRouter, appCtx.Store)
	NewStorageRouter(timeout, publicRouter, appCtx.Store)
}
