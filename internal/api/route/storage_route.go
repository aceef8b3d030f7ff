package route

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/api/controller"
	"github.com/davoli/staticms/internal/api/middleware"
)

func NewStorageRouter(timeout time.Duration, group *gin.RouterGroup, manager controller.StorageManager) {
	g := group.Group("")
	g.Use(middleware.RequestTimeout(timeout))

	sc := controller.NewStorageController(manager)

	g.GET("storage/status", sc.Status)
	g.GET("storage/files/*path", sc.GetFile)
	g.PUT("storage/files/*path", sc.SaveFile)
	g.DELETE("storage/files/*path", sc.DeleteFile)
}
