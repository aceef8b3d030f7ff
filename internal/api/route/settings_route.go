package route

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/api/controller"
	"github.com/davoli/staticms/internal/api/middleware"
)

func NewSettingsRouter(timeout time.Duration, group *gin.RouterGroup, store controller.SettingsStore) {
	g := group.Group("")
	g.Use(middleware.RequestTimeout(timeout))

	sc := controller.NewSettingsController(store)

	g.GET("settings", sc.GetSiteSettings)
	g.PUT("settings", sc.UpdateSiteSettings)
	g.GET("social", sc.GetSocialLinks)
	g.PUT("social", sc.UpdateSocialLinks)
	g.GET("admin", sc.GetAdminSettings)
	g.PUT("admin", sc.UpdateAdminSettings)
}
