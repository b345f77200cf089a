// Package analytics derives the admin dashboard summary from placed orders.
package analytics

import (
	"time"

	"bistro-service/internal/models"
)

// ChartDays is the number of days on the revenue chart, ending today
const ChartDays = 7

// placeholderOrderValue converts synthetic revenue into a synthetic order count
const placeholderOrderValue = 250

const dayKey = "2006-01-02"

// Options tunes Summarize
type Options struct {
	// MonthIgnoresYear matches monthly revenue on month alone, so the same
	// month of earlier years is counted too.
	MonthIgnoresYear bool

	// Placeholder, when set, supplies revenue for chart days without orders.
	Placeholder func() int64
}

// Summarize computes revenue figures and the last-week chart. Calendar days
// are evaluated in now's location. Cancelled orders are ignored.
func Summarize(orders []models.Order, now time.Time, opts Options) models.Analytics {
	loc := now.Location()
	today := dayOf(now)

	type bucket struct {
		revenue int64
		orders  int
	}
	days := make(map[string]*bucket, ChartDays)

	var summary models.Analytics
	for i := range orders {
		o := &orders[i]
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		summary.TotalOrders++

		created := o.CreatedAt().In(loc)
		day := dayOf(created)
		if day.Equal(today) {
			summary.DailyRevenue += o.Total
		}
		if created.Month() == now.Month() && (opts.MonthIgnoresYear || created.Year() == now.Year()) {
			summary.MonthlyRevenue += o.Total
		}

		key := day.Format(dayKey)
		b, ok := days[key]
		if !ok {
			b = &bucket{}
			days[key] = b
		}
		b.revenue += o.Total
		b.orders++
	}

	summary.ChartData = make([]models.SalesDataPoint, 0, ChartDays)
	for i := ChartDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		point := models.SalesDataPoint{Date: day.Format("Mon")}
		if b, ok := days[day.Format(dayKey)]; ok {
			point.Revenue = b.revenue
			point.Orders = b.orders
		}
		if point.Revenue == 0 && opts.Placeholder != nil {
			point.Revenue = opts.Placeholder()
			point.Orders = int(point.Revenue / placeholderOrderValue)
		}
		summary.ChartData = append(summary.ChartData, point)
	}

	return summary
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
