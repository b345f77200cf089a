package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bistro-service/internal/analytics"
	"bistro-service/internal/models"
	"bistro-service/internal/store"
)

// AnalyticsOptions configures the dashboard summary
type AnalyticsOptions struct {
	Location         *time.Location
	MonthIgnoresYear bool
	// ChartPlaceholder fills empty chart days with random demo revenue
	ChartPlaceholder bool
}

// AnalyticsService builds the admin dashboard from stored orders
type AnalyticsService struct {
	orders store.OrderRepository
	opts   AnalyticsOptions
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(orders store.OrderRepository, opts AnalyticsOptions) *AnalyticsService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &AnalyticsService{orders: orders, opts: opts, now: time.Now}
}

// Summary returns revenue totals and the last-week chart
func (s *AnalyticsService) Summary(ctx context.Context) (models.Analytics, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return models.Analytics{}, fmt.Errorf("failed to list orders: %w", err)
	}

	opts := analytics.Options{MonthIgnoresYear: s.opts.MonthIgnoresYear}
	if s.opts.ChartPlaceholder {
		opts.Placeholder = func() int64 { return 1000 + rand.Int63n(5000) }
	}
	return analytics.Summarize(orders, s.now().In(s.opts.Location), opts), nil
}
