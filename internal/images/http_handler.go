package images

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opengallery/gallery/utils"
)

// Handler exposes the image gallery HTTP surface
type Handler struct {
	images  *Service
	uploads *UploadService
}

func NewHandler(images *Service, uploads *UploadService) *Handler {
	return &Handler{images: images, uploads: uploads}
}

// Register mounts all routes on the engine
func (h *Handler) Register(r *gin.Engine) {
	files := r.Group("/ImageFiles")
	files.GET("", h.GetImages)
	files.POST("/postUpload", h.PostUpload)
	files.PUT("/:id", h.UpdateImage)
	files.DELETE("/:id", h.DeleteImage)

	r.POST("/AWSS3/presignedUrls", h.GeneratePresignedUrls)
	r.GET("/health", h.HealthCheck)
}

// PostUploadRequest is the completion-endpoint payload
type PostUploadRequest struct {
	FileUploadedItems []FileUploadedItem `json:"fileUploadedItems"`
}

// PostUploadResponse reports the batch outcome, including partial failure
type PostUploadResponse struct {
	Message        string          `json:"message"`
	IsSuccessfully bool            `json:"isSuccessfully"`
	SuccessCount   int             `json:"successCount"`
	FailedItems    []UploadFailure `json:"failedItems,omitempty"`
}

// PresignRequest is the batch presigned-upload-URL payload
type PresignRequest struct {
	FileNames []string `json:"fileNames"`
}

type updateImageRequest struct {
	Description string `json:"description"`
}

func (h *Handler) GetImages(c *gin.Context) {
	var pagePtr, limitPtr *int

	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'page' query parameter, must be an integer"})
			return
		}
		pagePtr = &page
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' query parameter, must be an integer"})
			return
		}
		limitPtr = &limit
	}
	page, limit := utils.GetPageParams(pagePtr, limitPtr)

	res, err := h.images.List(c.Request.Context(), ListParams{
		Page:   page,
		Limit:  limit,
		SortBy: SortField(c.DefaultQuery("sortBy", string(SortByName))),
		Order:  SortOrder(c.DefaultQuery("order", string(OrderAsc))),
		Search: c.Query("search"),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSortField) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(c.Request.Context(), "listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list images"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) PostUpload(c *gin.Context) {
	var req PostUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.uploads.Complete(c.Request.Context(), req.FileUploadedItems)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "upload completion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process uploads"})
		return
	}

	resp := PostUploadResponse{
		Message:        "Information processed successfully!",
		IsSuccessfully: len(res.Failures) == 0,
		SuccessCount:   res.SuccessCount,
		FailedItems:    res.Failures,
	}
	if len(res.Failures) > 0 {
		resp.Message = fmt.Sprintf("Processed %d of %d uploads.", res.SuccessCount, len(req.FileUploadedItems))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateImage(c *gin.Context) {
	id := c.Param("id")

	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.images.UpdateDescription(c.Request.Context(), id, req.Description); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found in database."})
			return
		}
		slog.ErrorContext(c.Request.Context(), "update failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File updated successfully!"})
}

func (h *Handler) DeleteImage(c *gin.Context) {
	id := c.Param("id")

	if err := h.images.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found in database."})
			return
		}
		slog.ErrorContext(c.Request.Context(), "delete failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully!"})
}

func (h *Handler) GeneratePresignedUrls(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	urls, err := h.images.IssueUploadURLs(c.Request.Context(), req.FileNames)
	if err != nil {
		if errors.Is(err, ErrNoFileNames) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "FileNames are required."})
			return
		}
		slog.ErrorContext(c.Request.Context(), "presigning failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate presigned urls"})
		return
	}

	c.JSON(http.StatusOK, urls)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
