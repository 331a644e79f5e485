package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appforge/internal/domain"
	"appforge/internal/mocks"
	"appforge/internal/repository/memory"
)

func TestWatchdog_SweepFlagsStaleOrders(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()

	stale := domain.Order{
		ID: "ord_stale", UserID: "u",
		Status:    domain.StatusGeneratingCore,
		CreatedAt: now.Add(-48 * time.Hour),
		UpdatedAt: now.Add(-30 * time.Hour),
	}
	fresh := domain.Order{
		ID: "ord_fresh", UserID: "u",
		Status:    domain.StatusGeneratingCore,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}
	staleButDone := domain.Order{
		ID: "ord_done", UserID: "u",
		Status:    domain.StatusCompleted,
		CreatedAt: now.Add(-90 * 24 * time.Hour),
		UpdatedAt: now.Add(-60 * 24 * time.Hour),
	}
	staleButDelivered := domain.Order{
		ID: "ord_delivered", UserID: "u",
		Status:    domain.StatusDelivered,
		CreatedAt: now.Add(-90 * 24 * time.Hour),
		UpdatedAt: now.Add(-60 * 24 * time.Hour),
	}
	require.NoError(t, repo.Save(&stale))
	require.NoError(t, repo.Save(&fresh))
	require.NoError(t, repo.Save(&staleButDone))
	require.NoError(t, repo.Save(&staleButDelivered))

	publisher := &mocks.MockPublisher{}
	publisher.On("Publish", mock.Anything, domain.EventOrderStuck, mock.MatchedBy(func(e domain.OrderStuckEvent) bool {
		return e.OrderID == "ord_stale"
	})).Return(nil).Once()

	w := NewWatchdog(repo, publisher, "@every 1h", 24*time.Hour)
	w.Sweep()

	publisher.AssertExpectations(t)
}
