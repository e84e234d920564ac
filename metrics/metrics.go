package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "calorie_tracker",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "calorie_tracker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	trackingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calorie_tracker",
			Subsystem: "tracking",
			Name:      "events_total",
			Help:      "Food and water entries added or removed.",
		},
		[]string{"event"},
	)
)

const (
	FoodAdded    = "food_added"
	FoodRemoved  = "food_removed"
	WaterAdded   = "water_added"
	WaterRemoved = "water_removed"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		trackingEvents,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Paths are labelled with
// the route template so ids do not blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		httpInFlight.Inc()
		start := time.Now()
		defer func() {
			status := c.Writer.Status()
			// A panic unwinding towards an outer Recovery has not been
			// turned into a response yet; count it as the 500 it becomes.
			rec := recover()
			if rec != nil {
				status = http.StatusInternalServerError
			}
			httpInFlight.Dec()
			observe(c, status, start)
			if rec != nil {
				panic(rec)
			}
		}()
		c.Next()
	}
}

func observe(c *gin.Context, status int, start time.Time) {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
}

func RecordTracking(event string) {
	trackingEvents.WithLabelValues(event).Inc()
}
