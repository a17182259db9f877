package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/repotest"
)

func TestMemoryRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Repositories { return New() })
}

func TestMemoryRejectsDanglingReferences(t *testing.T) {
	repos := New()
	err := repos.Tickets.Create(context.Background(), &domain.Ticket{ID: "t1", UserID: "nobody", CategoryID: "c1"})
	assert.ErrorIs(t, err, ErrForeignKey)

	err = repos.History.Create(context.Background(), &domain.TicketHistory{ID: "h1", TicketID: "t1"})
	assert.ErrorIs(t, err, ErrForeignKey)
}
