package service

import (
	"context"
	"testing"
	"time"

	"bistro-service/internal/models"
	"bistro-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)
	repo := store.NewMemoryStore()

	for i, o := range []struct {
		total  int64
		status models.OrderStatus
		at     time.Time
	}{
		{100, models.OrderStatusCompleted, now.Add(-2 * time.Hour)},
		{200, models.OrderStatusPending, now.Add(-time.Hour)},
		{500, models.OrderStatusCancelled, now},
		{400, models.OrderStatusCompleted, now.AddDate(0, 0, -3)},
		{900, models.OrderStatusCompleted, now.AddDate(-1, 0, 0)},
	} {
		require.NoError(t, repo.AppendOrder(ctx, &models.Order{
			ID:        "ORD-" + string(rune('A'+i)),
			Total:     o.total,
			Status:    o.status,
			Timestamp: o.at.UnixMilli(),
		}))
	}

	svc := NewAnalyticsService(repo, AnalyticsOptions{Location: time.UTC})
	svc.now = func() time.Time { return now }

	got, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.DailyRevenue)
	assert.Equal(t, int64(700), got.MonthlyRevenue)
	assert.Equal(t, 4, got.TotalOrders)
	require.Len(t, got.ChartData, 7)
	assert.Equal(t, "Thu", got.ChartData[6].Date)
	assert.Equal(t, int64(400), got.ChartData[3].Revenue)
	assert.Zero(t, got.ChartData[0].Revenue)

	svc.opts.MonthIgnoresYear = true
	got, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), got.MonthlyRevenue)
}

func TestAnalyticsPlaceholder(t *testing.T) {
	svc := NewAnalyticsService(store.NewMemoryStore(), AnalyticsOptions{ChartPlaceholder: true})
	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	for _, p := range got.ChartData {
		assert.GreaterOrEqual(t, p.Revenue, int64(1000))
		assert.Less(t, p.Revenue, int64(6000))
		assert.Equal(t, int(p.Revenue/250), p.Orders)
	}
	assert.Zero(t, got.TotalOrders)
}
