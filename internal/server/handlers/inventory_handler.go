package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/megg/internal/domain/models"
	"github.com/mamadbah2/megg/internal/service/export"
	"github.com/mamadbah2/megg/internal/service/inventory"
)

// InventoryHandler exposes the batch pipeline over HTTP.
type InventoryHandler struct {
	svc      *inventory.Service
	exporter *export.Service
	logger   *zap.Logger
	now      func() time.Time
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, exporter *export.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = export.NewService(nil, "", logger)
	}
	return &InventoryHandler{svc: svc, exporter: exporter, logger: logger, now: time.Now}
}

type statusRequest struct {
	Status string `json:"status"`
}

type compareRequest struct {
	BatchIDs []string `json:"batchIds" binding:"required,min=2,max=3,dive,required"`
}

// ListBatches returns one page of the filtered and sorted batch list.
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	view, err := viewFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.svc.Browse(c.Request.Context(), c.Param("accountId"), view)
	if err != nil {
		h.respondError(c, "list batches", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetBatch returns the summary of one batch.
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context(), c.Param("accountId"), c.Param("batchId"))
	if err != nil {
		h.respondError(c, "get batch", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateStatus sets or toggles the status of one batch.
func (h *InventoryHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid status payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	status, err := h.svc.SetStatus(c.Request.Context(), c.Param("accountId"), c.Param("batchId"), req.Status)
	if err != nil {
		h.respondError(c, "update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batchNumber": c.Param("batchId"), "status": status})
}

// Metrics returns fleet metrics over every batch of the account.
func (h *InventoryHandler) Metrics(c *gin.Context) {
	metrics, err := h.svc.FleetMetrics(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.respondError(c, "fleet metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// Trends returns the defect-rate and production trends of the account.
func (h *InventoryHandler) Trends(c *gin.Context) {
	trends, err := h.svc.Trends(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.respondError(c, "trends", err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// Compare compares two or three batches.
func (h *InventoryHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compare payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "batchIds must list 2 to 3 batches"})
		return
	}

	fields, batches, err := h.svc.Compare(c.Request.Context(), c.Param("accountId"), req.BatchIDs)
	if err != nil {
		h.respondError(c, "compare batches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches, "differences": fields})
}

// Export downloads the filtered batch list as CSV or pushes it to Google Sheets.
// An optional comma separated batchIds narrows the export to those batches.
func (h *InventoryHandler) Export(c *gin.Context) {
	view, err := viewFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selected, err := h.svc.Filtered(c.Request.Context(), c.Param("accountId"), view)
	if err != nil {
		h.respondError(c, "export", err)
		return
	}
	if ids := splitCSV(c.Query("batchIds")); len(ids) > 0 {
		selected = slices.DeleteFunc(selected, func(s models.BatchSummary) bool {
			return !slices.Contains(ids, string(s.BatchNumber))
		})
	}
	rows := export.Rows(selected)

	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		now := h.now()
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, rows, now.In(h.svc.Location())); err != nil {
			h.respondError(c, "export csv", err)
			return
		}
		filename := fmt.Sprintf("inventory-batches-%s.csv", now.Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "sheets":
		if err := h.exporter.PushToSheet(c.Request.Context(), rows); err != nil {
			h.respondError(c, "export sheets", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"exported": len(rows)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format " + format})
	}
}

// GetView returns the persisted list view state.
func (h *InventoryHandler) GetView(c *gin.Context) {
	view, err := h.svc.LoadView(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.respondError(c, "load view", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SaveView persists the list view state.
func (h *InventoryHandler) SaveView(c *gin.Context) {
	var view models.ViewState
	if err := c.ShouldBindJSON(&view); err != nil {
		h.logger.Warn("invalid view payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.svc.SaveView(c.Request.Context(), c.Param("accountId"), view)
	if err != nil {
		h.respondError(c, "save view", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *InventoryHandler) respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, models.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInvalidStatus), errors.Is(err, inventory.ErrComparisonSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, export.ErrSheetsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream store unavailable"})
	}
}

// viewFromQuery reads filter, sort and pagination parameters.
func viewFromQuery(c *gin.Context) (models.ViewState, error) {
	view := models.ViewState{
		Filters: models.FilterState{
			Search:   c.Query("search"),
			DateFrom: c.Query("dateFrom"),
			DateTo:   c.Query("dateTo"),
			Status:   c.DefaultQuery("status", models.StatusFilterAll),
			Sizes:    splitCSV(c.Query("sizes")),
		},
		Sort: models.SortSpec{
			Key:       models.SortKey(c.DefaultQuery("sortBy", string(models.DefaultSort.Key))),
			Direction: models.SortDirection(c.DefaultQuery("sortDir", string(models.DefaultSort.Direction))),
		},
	}

	if raw := c.Query("minDefectRate"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 {
			return models.ViewState{}, fmt.Errorf("minDefectRate must be a non-negative number")
		}
		view.Filters.DefectRateThreshold = threshold
	}

	var err error
	if view.CurrentPage, err = intQuery(c, "page", 1); err != nil {
		return models.ViewState{}, err
	}
	if view.PageSize, err = intQuery(c, "pageSize", inventory.DefaultPageSize); err != nil {
		return models.ViewState{}, err
	}
	return view, nil
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return value, nil
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
