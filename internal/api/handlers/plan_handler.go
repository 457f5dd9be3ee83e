package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nimbleretail/poolalloc/internal/service"
)

type PlanHandler struct {
	service *service.PlanService

	// defaultTopN bounds top-N summaries when the client sends no limit.
	defaultTopN int
}

func NewPlanHandler(service *service.PlanService, defaultTopN int) *PlanHandler {
	if defaultTopN <= 0 {
		defaultTopN = 10
	}
	return &PlanHandler{service: service, defaultTopN: defaultTopN}
}

// GetChannelRows serves channel-fulfilled decision rows, optionally
// filtered by ?channel=.
func (h *PlanHandler) GetChannelRows(c *gin.Context) {
	rows, err := h.service.ChannelRows(c.Query("channel"))
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// GetSellerRows serves direct/seller decision rows.
func (h *PlanHandler) GetSellerRows(c *gin.Context) {
	rows, err := h.service.SellerRows()
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

// GetLocationSummaries serves per-location roll-ups, optionally
// filtered by ?channel=.
func (h *PlanHandler) GetLocationSummaries(c *gin.Context) {
	summaries, err := h.service.LocationSummaries(c.Request.Context(), c.Query("channel"))
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// GetTopSKUs serves the ?limit= highest-selling SKUs, optionally within
// ?channel=.
func (h *PlanHandler) GetTopSKUs(c *gin.Context) {
	summaries, err := h.service.TopSKUs(c.Query("channel"), h.parseLimit(c))
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skus": summaries})
}

// GetTopStyles serves the ?limit= highest-selling styles, optionally
// within ?channel=.
func (h *PlanHandler) GetTopStyles(c *gin.Context) {
	summaries, err := h.service.TopStyles(c.Query("channel"), h.parseLimit(c))
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"styles": summaries})
}

// GetSellerSummary serves the direct/seller roll-up.
func (h *PlanHandler) GetSellerSummary(c *gin.Context) {
	summary, err := h.service.SellerSummary()
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetPoolUsage serves per-pool-SKU consumption plus totals.
func (h *PlanHandler) GetPoolUsage(c *gin.Context) {
	usage, totals, err := h.service.PoolUsage()
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "totals": totals})
}

// GetStatus reports whether a plan is held and its shape.
func (h *PlanHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// Refresh fetches fresh extracts and recomputes the plan.
func (h *PlanHandler) Refresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.Status())
}

func (h *PlanHandler) parseLimit(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return h.defaultTopN
}

func planError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoPlan) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
