package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davoli/staticms/internal/content"
	"github.com/davoli/staticms/internal/logger"
)

// NewsStore is the storage API needed by the news handlers. The store only
// knows whole-collection reads and writes, so every mutation here is a
// read-modify-write of the full news list.
type NewsStore interface {
	GetNewsItems(ctx context.Context) ([]content.NewsItem, error)
	SaveNewsItems(ctx context.Context, items []content.NewsItem) error
}

// NewsController handles news-related HTTP endpoints.
type NewsController struct {
	store     NewsStore
	validator *validator.Validate
}

// NewNewsController creates a new NewsController backed by the given store.
func NewNewsController(store NewsStore) *NewsController {
	return &NewsController{
		store:     store,
		validator: validator.New(),
	}
}

// AllNews handles GET /news - returns the full news collection.
func (nc *NewsController) AllNews(c *gin.Context) {
	items, err := nc.store.GetNewsItems(c.Request.Context())
	if err != nil {
		logger.WithComponent("news-controller").Errorf("list news: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read news items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateNews handles POST /news - adds an item to the collection.
// A missing ID is assigned server-side.
func (nc *NewsController) CreateNews(c *gin.Context) {
	var item content.NewsItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.ApplyDefaults()

	if err := nc.validator.Struct(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	items, err := nc.store.GetNewsItems(ctx)
	if err != nil {
		logger.WithComponent("news-controller").Errorf("create news: read collection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read news items"})
		return
	}

	for _, existing := range items {
		if existing.ID == item.ID {
			c.JSON(http.StatusConflict, gin.H{"error": "news item already exists"})
			return
		}
	}

	items = append(items, item)
	if err := nc.store.SaveNewsItems(ctx, items); err != nil {
		logger.WithComponent("news-controller").Errorf("create news: save collection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save news items"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateNews handles PUT /news/:id - replaces an existing item.
func (nc *NewsController) UpdateNews(c *gin.Context) {
	id := c.Param("id")

	var item content.NewsItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	item.ID = id
	item.ApplyDefaults()

	if err := nc.validator.Struct(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	items, err := nc.store.GetNewsItems(ctx)
	if err != nil {
		logger.WithComponent("news-controller").Errorf("update news %s: read collection: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read news items"})
		return
	}

	found := false
	for i := range items {
		if items[i].ID != id {
			continue
		}
		item.CreatedAt = items[i].CreatedAt
		now := time.Now().UTC()
		item.UpdatedAt = &now
		items[i] = item
		found = true
		break
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "news item not found"})
		return
	}

	if err := nc.store.SaveNewsItems(ctx, items); err != nil {
		logger.WithComponent("news-controller").Errorf("update news %s: save collection: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save news items"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteNews handles DELETE /news/:id - removes an item from the collection.
func (nc *NewsController) DeleteNews(c *gin.Context) {
	id := c.Param("id")

	ctx := c.Request.Context()
	items, err := nc.store.GetNewsItems(ctx)
	if err != nil {
		logger.WithComponent("news-controller").Errorf("delete news %s: read collection: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read news items"})
		return
	}

	remaining := make([]content.NewsItem, 0, len(items))
	for _, existing := range items {
		if existing.ID != id {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == len(items) {
		c.JSON(http.StatusNotFound, gin.H{"error": "news item not found"})
		return
	}

	if err := nc.store.SaveNewsItems(ctx, remaining); err != nil {
		logger.WithComponent("news-controller").Errorf("delete news %s: save collection: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save news items"})
		return
	}

	c.JSON(http.StatusOK, remaining)
}
