package route

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/api/controller"
	"github.com/davoli/staticms/internal/api/middleware"
)

func NewNewsRouter(timeout time.Duration, group *gin.RouterGroup, store controller.NewsStore) {
	g := group.Group("")
	g.Use(middleware.RequestTimeout(timeout))

	nc := controller.NewNewsController(store)

	g.GET("news", nc.AllNews)
	g.POST("news", nc.CreateNews)
	g.PUT("news/:id", nc.UpdateNews)
	g.DELETE("news/:id", nc.DeleteNews)
}
