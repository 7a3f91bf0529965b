package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) parseFilter(c *gin.Context) domain.RecordFilter {
	filter := domain.RecordFilter{
		Page:     1,
		PageSize: 25,
		Mode:     domain.ModeAll,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "25")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if location := strings.TrimSpace(c.Query("location")); location != "" {
		filter.Location = location
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = search
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("mode"))) {
	case domain.ModeOrder:
		filter.Mode = domain.ModeOrder
	case domain.ModeReturnable:
		filter.Mode = domain.ModeReturnable
	}

	if class := strings.ToUpper(strings.TrimSpace(c.Query("abc_class"))); class != "" {
		filter.ABCClass = class
	}
	if movement := strings.TrimSpace(c.Query("movement")); movement != "" {
		filter.Movement = movement
	}

	if sortField := strings.TrimSpace(c.Query("sort_field")); sortField != "" {
		filter.SortField = strings.ToLower(sortField)
	}
	sortDir := strings.ToLower(strings.TrimSpace(c.Query("sort_direction")))
	if sortDir != "desc" {
		sortDir = "asc"
	}
	filter.SortDir = sortDir

	parseDays := func(param string) int {
		if v, err := strconv.Atoi(strings.TrimSpace(c.Query(param))); err == nil && v > 0 {
			return v
		}
		return 0
	}
	filter.Params = domain.ReplenishParams{
		LeadTimeDays: parseDays("lead_time_days"),
		SafetyDays:   parseDays("safety_days"),
		CoverDays:    parseDays("cover_days"),
	}

	return filter
}

func respondLoadState(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrNotLoaded), errors.Is(err, service.ErrReportsNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return true
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed", "details": err.Error()})
		return true
	}
}

func (h *InventoryHandler) GetItems(c *gin.Context) {
	filter := h.parseFilter(c)
	result, err := h.service.Query(c.Request.Context(), filter)
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) GetDashboard(c *gin.Context) {
	filter := h.parseFilter(c)
	dash, err := h.service.Dashboard(c.Request.Context(), filter)
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (h *InventoryHandler) GetLocations(c *gin.Context) {
	locations, err := h.service.Locations()
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (h *InventoryHandler) Export(c *gin.Context) {
	filter := h.parseFilter(c)
	headers, rows, err := h.service.Export(c.Request.Context(), filter)
	if respondLoadState(c, err) {
		return
	}

	filename := "inventory-" + time.Now().Format("20060102-150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	// UTF-8 BOM so spreadsheet tools pick the right encoding.
	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return
	}

	w := csv.NewWriter(c.Writer)
	if err := w.Write(headers); err != nil {
		return
	}
	if err := w.WriteAll(rows); err != nil {
		return
	}
}

func (h *InventoryHandler) Reload(c *gin.Context) {
	if err := h.service.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "reload failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "loaded_at": h.service.LoadedAt()})
}
