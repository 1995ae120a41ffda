package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Business Metrics
var (
	RecipesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRecipesWritten,
			Help: HelpTextRecipesWritten,
		},
		[]string{LabelOperation},
	)

	RecipeMarks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRecipeMarks,
			Help: HelpTextRecipeMarks,
		},
		[]string{LabelKind, LabelAction},
	)

	Subscriptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSubscriptions,
			Help: HelpTextSubscriptions,
		},
		[]string{LabelAction},
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameShoppingListDownloads,
			Help: HelpTextShoppingListDownloads,
		},
	)

	ShoppingListMixedUnits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameShoppingListMixed,
			Help: HelpTextShoppingListMixed,
		},
	)
)
