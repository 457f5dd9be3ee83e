package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nimbleretail/poolalloc/internal/api/handlers"
	"github.com/nimbleretail/poolalloc/internal/api/middleware"
	"github.com/nimbleretail/poolalloc/internal/service"
)

func NewRouter(planService *service.PlanService, allowedOrigins []string, topN int) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
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

	if planService != nil {
		planHandler := handlers.NewPlanHandler(planService, topN)
		planGroup := apiGroup.Group("/plan")
		{
			planGroup.GET("/rows", planHandler.GetChannelRows)
			planGroup.GET("/seller", planHandler.GetSellerRows)
			planGroup.GET("/status", planHandler.GetStatus)
			planGroup.POST("/refresh", planHandler.Refresh)

			summaryGroup := planGroup.Group("/summary")
			{
				summaryGroup.GET("/locations", planHandler.GetLocationSummaries)
				summaryGroup.GET("/top_skus", planHandler.GetTopSKUs)
				summaryGroup.GET("/top_styles", planHandler.GetTopStyles)
				summaryGroup.GET("/seller", planHandler.GetSellerSummary)
				summaryGroup.GET("/pool", planHandler.GetPoolUsage)
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
