package handlers

import (
	"errors"
	"log"
	"net/http"

	"chemequip/internal/service"

	"github.com/gin-gonic/gin"
)

type EquipmentHandler struct {
	service service.EquipmentService
}

func NewEquipmentHandler(service service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// Upload replaces the stored readings with the rows of the multipart "file" field.
func (h *EquipmentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "File too large",
			})
			return
		}
		respondUploadError(c, &service.ValidationError{Kind: service.MissingFile})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondUploadError(c, &service.ValidationError{Kind: service.MalformedInput, Err: err})
		return
	}
	defer file.Close()

	entry, err := h.service.Upload(ctx, fileHeader.Filename, file)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "CSV uploaded successfully",
		"total_records": entry.TotalRecords,
	})
}

func respondUploadError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	log.Printf("Upload failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "failed to store upload",
		"message": err.Error(),
	})
}

func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.service.ListEquipment(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get equipment",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *EquipmentHandler) Summary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get summary",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *EquipmentHandler) History(c *gin.Context) {
	history, err := h.service.GetHistory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get upload history",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, history)
}
