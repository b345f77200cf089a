package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_orders_placed_total",
		Help: "Total number of orders placed at checkout",
	}, []string{"payment_method"})

	OrderRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_order_revenue_rupees_total",
		Help: "Sum of order totals placed at checkout, in rupees",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_order_status_changes_total",
		Help: "Total number of order status changes",
	}, []string{"to"})

	OrderTransitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_order_transitions_rejected_total",
		Help: "Total number of rejected order status changes",
	}, []string{"reason"})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	MenuWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_menu_writes_total",
		Help: "Total number of catalog writes",
	})

	ChatRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_chat_requests_total",
		Help: "Total number of AI waiter requests",
	})

	ChatFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_chat_failures_total",
		Help: "Total number of AI waiter requests answered with a fallback",
	}, []string{"reason"})

	ChatLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bistro_chat_latency_seconds",
		Help:    "Latency of language model calls",
		Buckets: prometheus.DefBuckets,
	})

	AdminLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_admin_logins_total",
		Help: "Total number of admin login attempts",
	}, []string{"result"})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bistro_feed_subscribers",
		Help: "Number of connected admin feed subscribers",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
