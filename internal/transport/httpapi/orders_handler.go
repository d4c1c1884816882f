package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func (s *Server) handleGetOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order))
}

func (s *Server) handleOrderTimeline(c *gin.Context) {
	events, err := s.orders.Timeline(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": newTimelineView(events)})
}

func (s *Server) handleListUserOrders(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	list, err := s.orders.ListByUser(c.Param("id"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	views := make([]orderView, 0, len(list))
	for _, order := range list {
		views = append(views, newOrderView(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views, "total": len(views)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// handleUpdateStatus — админский перевод статуса. В отличие от checkout
// здесь бизнес-ошибки отдаются жёсткими 4xx: вызывающая сторона — не
// покупатель, а фулфилмент, и ей нужен честный код ответа.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := s.orders.UpdateStatus(c.Param("id"), domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order))
}
