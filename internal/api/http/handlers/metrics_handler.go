package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// MetricsHandler serves dashboard counters and the request counters.
type MetricsHandler struct {
	service  *service.MetricsService
	requests *observability.Metrics
}

// NewMetricsHandler builds handler. requests may be nil.
func NewMetricsHandler(metricsService *service.MetricsService, requests *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{service: metricsService, requests: requests}
}

// Summary GET /api/metrics.
func (h *MetricsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.MetricsResponse{
		Total:      summary.Total,
		ByStatus:   summary.ByStatus,
		ByPriority: summary.ByPriority,
	}
	if resp.ByStatus == nil {
		resp.ByStatus = map[domain.TicketStatus]int{}
	}
	if resp.ByPriority == nil {
		resp.ByPriority = map[domain.Priority]int{}
	}
	return c.JSON(resp)
}

// Requests GET /api/metrics/requests.
func (h *MetricsHandler) Requests(c *fiber.Ctx) error {
	requests, errors := h.requests.Snapshot()
	return c.JSON(dto.RequestStatsResponse{Requests: requests, Errors: errors})
}
