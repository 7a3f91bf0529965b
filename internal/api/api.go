// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/abc-shortship/backend-go/internal/api/handlers"
	"github.com/abc-shortship/backend-go/internal/api/middleware"
	"github.com/abc-shortship/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	InventoryService *service.InventoryService
	ShortShipService *service.ShortShipService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.InventoryService != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
			inventoryGroup := apiGroup.Group("/inventory")
			{
				inventoryGroup.GET("/items", inventoryHandler.GetItems)
				inventoryGroup.GET("/dashboard", inventoryHandler.GetDashboard)
				inventoryGroup.GET("/locations", inventoryHandler.GetLocations)
				inventoryGroup.GET("/export", inventoryHandler.Export)
				inventoryGroup.POST("/reload", inventoryHandler.Reload)
			}
		}

		if services.ShortShipService != nil {
			shortShipHandler := handlers.NewShortShipHandler(services.ShortShipService)
			shortShipGroup := apiGroup.Group("/shortship")
			{
				shortShipGroup.GET("/items", shortShipHandler.GetItems)
				shortShipGroup.GET("/dashboard", shortShipHandler.GetDashboard)
				shortShipGroup.GET("/filters", shortShipHandler.GetFilters)
				shortShipGroup.GET("/outbox", shortShipHandler.GetOutboxStatus)
				shortShipGroup.POST("/corrections", shortShipHandler.SubmitCorrection)
				shortShipGroup.POST("/reload", shortShipHandler.Reload)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
