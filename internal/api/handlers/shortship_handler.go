package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ShortShipHandler struct {
	service *service.ShortShipService
}

func NewShortShipHandler(service *service.ShortShipService) *ShortShipHandler {
	return &ShortShipHandler{service: service}
}

func (h *ShortShipHandler) parseFilter(c *gin.Context) domain.DiffFilter {
	filter := domain.DiffFilter{
		Page:     1,
		PageSize: 25,
		Note:     domain.NoteEmpty,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "25")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = search
	}
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		filter.Date = date
	}
	if month := strings.TrimSpace(c.Query("month")); month != "" {
		filter.Month = month
	}
	if quarter := strings.TrimSpace(c.Query("quarter")); quarter != "" {
		filter.Quarter = quarter
	}
	if partType := strings.TrimSpace(c.Query("part_type")); partType != "" {
		filter.PartType = partType
	}
	if location := strings.TrimSpace(c.Query("location")); location != "" {
		filter.Location = location
	}
	if movement := strings.TrimSpace(c.Query("movement")); movement != "" {
		filter.Movement = movement
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("note"))) {
	case domain.NoteAny:
		filter.Note = domain.NoteAny
	case domain.NoteNotEmpty:
		filter.Note = domain.NoteNotEmpty
	}

	return filter
}

func (h *ShortShipHandler) GetItems(c *gin.Context) {
	filter := h.parseFilter(c)
	result, err := h.service.Query(c.Request.Context(), filter)
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ShortShipHandler) GetDashboard(c *gin.Context) {
	filter := h.parseFilter(c)
	dash, err := h.service.Dashboard(c.Request.Context(), filter)
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (h *ShortShipHandler) GetFilters(c *gin.Context) {
	opts, err := h.service.Filters(c.Request.Context())
	if respondLoadState(c, err) {
		return
	}

	c.JSON(http.StatusOK, opts)
}

func (h *ShortShipHandler) GetOutboxStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.OutboxStatus())
}

func (h *ShortShipHandler) SubmitCorrection(c *gin.Context) {
	var entry domain.CorrectionEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid correction payload", "details": err.Error()})
		return
	}

	entry.DocumentNumber = strings.TrimSpace(entry.DocumentNumber)
	entry.ItemCode = strings.TrimSpace(entry.ItemCode)
	if entry.DocumentNumber == "" || entry.ItemCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentNumber and itemCode are required"})
		return
	}

	status, err := h.service.SubmitCorrection(c.Request.Context(), entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue correction", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "outbox": status})
}

func (h *ShortShipHandler) Reload(c *gin.Context) {
	if err := h.service.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "reload failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "loaded_at": h.service.LoadedAt()})
}
