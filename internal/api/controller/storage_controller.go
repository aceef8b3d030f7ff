package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/logger"
	"github.com/davoli/staticms/internal/store"
)

// StorageManager is the slice of the store manager the diagnostics
// endpoints need: the selected backend's name and, when available, its
// path-level file operations.
type StorageManager interface {
	Initialize(ctx context.Context) string
	FileStore(ctx context.Context) (store.FileStore, bool)
}

// StorageController exposes backend status and direct file operations for
// diagnostics. Unlike the document endpoints, failures here carry the
// underlying error message.
type StorageController struct {
	manager StorageManager
}

// NewStorageController creates a new StorageController.
func NewStorageController(manager StorageManager) *StorageController {
	return &StorageController{manager: manager}
}

// Status handles GET /storage/status - reports the selected backend.
func (sc *StorageController) Status(c *gin.Context) {
	backend := sc.manager.Initialize(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"backend": backend})
}

// GetFile handles GET /storage/files/*path.
func (sc *StorageController) GetFile(c *gin.Context) {
	path, fs, ok := sc.filePath(c)
	if !ok {
		return
	}

	file, err := fs.GetFile(c.Request.Context(), path)
	if err != nil {
		logger.WithComponent("storage-controller").Errorf("get file %s: %v", path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":    path,
		"content": string(file.Content),
		"sha":     file.SHA,
	})
}

// SaveFile handles PUT /storage/files/*path.
func (sc *StorageController) SaveFile(c *gin.Context) {
	path, fs, ok := sc.filePath(c)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if body.Message == "" {
		body.Message = "Update " + path
	}

	result, err := fs.SaveFile(c.Request.Context(), path, []byte(body.Content), body.Message)
	if err != nil {
		logger.WithComponent("storage-controller").Errorf("save file %s: %v", path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commit": result.SHA, "sha": result.FileSHA})
}

// DeleteFile handles DELETE /storage/files/*path.
func (sc *StorageController) DeleteFile(c *gin.Context) {
	path, fs, ok := sc.filePath(c)
	if !ok {
		return
	}

	message := c.Query("message")
	if message == "" {
		message = "Delete " + path
	}

	result, err := fs.DeleteFile(c.Request.Context(), path, message)
	if err != nil {
		if errdefs.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		logger.WithComponent("storage-controller").Errorf("delete file %s: %v", path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commit": result.SHA})
}

// filePath extracts the wildcard path and resolves the file-capable backend,
// writing the error response itself when either is unavailable.
func (sc *StorageController) filePath(c *gin.Context) (string, store.FileStore, bool) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file path"})
		return "", nil, false
	}

	fs, ok := sc.manager.FileStore(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "file operations require the github backend"})
		return "", nil, false
	}
	return path, fs, true
}
