package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"chemequip/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// PDF renders the report into memory first so a storage error can still produce a JSON 500.
func (h *ReportHandler) PDF(c *gin.Context) {
	var buf bytes.Buffer
	pages, err := h.service.WritePDF(c.Request.Context(), &buf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to generate PDF report",
			"message": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="equipment_report.pdf"`)
	c.Header("X-Report-Pages", strconv.Itoa(pages))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *ReportHandler) Excel(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.WriteExcel(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to generate Excel report",
			"message": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="equipment_report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
