package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/davoli/staticms/internal/content"
	"github.com/davoli/staticms/internal/logger"
)

// SettingsStore is the storage API needed by the settings handlers.
type SettingsStore interface {
	GetSiteSettings(ctx context.Context) (content.SiteSettings, error)
	SaveSiteSettings(ctx context.Context, settings content.SiteSettings) error
	GetSocialLinks(ctx context.Context) (content.SocialLinks, error)
	SaveSocialLinks(ctx context.Context, links content.SocialLinks) error
	GetAdminSettings(ctx context.Context) (content.AdminSettings, error)
	SaveAdminSettings(ctx context.Context, settings content.AdminSettings) error
}

// SettingsController handles the three settings documents.
type SettingsController struct {
	store     SettingsStore
	validator *validator.Validate
}

// NewSettingsController creates a new SettingsController backed by the given store.
func NewSettingsController(store SettingsStore) *SettingsController {
	return &SettingsController{
		store:     store,
		validator: validator.New(),
	}
}

// GetSiteSettings handles GET /settings.
func (sc *SettingsController) GetSiteSettings(c *gin.Context) {
	settings, err := sc.store.GetSiteSettings(c.Request.Context())
	if err != nil {
		logger.WithComponent("settings-controller").Errorf("get site settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read site settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSiteSettings handles PUT /settings.
func (sc *SettingsController) UpdateSiteSettings(c *gin.Context) {
	var settings content.SiteSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := sc.validator.Struct(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.store.SaveSiteSettings(c.Request.Context(), settings); err != nil {
		logger.WithComponent("settings-controller").Errorf("save site settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save site settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetSocialLinks handles GET /social.
func (sc *SettingsController) GetSocialLinks(c *gin.Context) {
	links, err := sc.store.GetSocialLinks(c.Request.Context())
	if err != nil {
		logger.WithComponent("settings-controller").Errorf("get social links: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read social links"})
		return
	}
	c.JSON(http.StatusOK, links)
}

// UpdateSocialLinks handles PUT /social.
func (sc *SettingsController) UpdateSocialLinks(c *gin.Context) {
	var links content.SocialLinks
	if err := c.ShouldBindJSON(&links); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := sc.validator.Struct(&links); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.store.SaveSocialLinks(c.Request.Context(), links); err != nil {
		logger.WithComponent("settings-controller").Errorf("save social links: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save social links"})
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetAdminSettings handles GET /admin.
func (sc *SettingsController) GetAdminSettings(c *gin.Context) {
	settings, err := sc.store.GetAdminSettings(c.Request.Context())
	if err != nil {
		logger.WithComponent("settings-controller").Errorf("get admin settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read admin settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateAdminSettings handles PUT /admin.
func (sc *SettingsController) UpdateAdminSettings(c *gin.Context) {
	var settings content.AdminSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := sc.validator.Struct(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.store.SaveAdminSettings(c.Request.Context(), settings); err != nil {
		logger.WithComponent("settings-controller").Errorf("save admin settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save admin settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
