package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// MetricsService aggregates dashboard counters.
type MetricsService struct {
	tickets repository.TicketRepository
}

// NewMetricsService constructs the service.
func NewMetricsService(tickets repository.TicketRepository) *MetricsService {
	return &MetricsService{tickets: tickets}
}

// Summary counts tickets overall, per status and per priority.
func (s *MetricsService) Summary(ctx context.Context) (*domain.TicketMetrics, error) {
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	byPriority, err := s.tickets.CountByPriority(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	return &domain.TicketMetrics{Total: total, ByStatus: byStatus, ByPriority: byPriority}, nil
}
