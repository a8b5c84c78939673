package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TestsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_match_tests_graded_total",
			Help: "Number of graded test submissions",
		},
		[]string{"passed"},
	)

	RemindersDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_match_reminders_dispatched_total",
			Help: "Interview reminders handled by the sweep, by outcome",
		},
		[]string{"result"},
	)

	ReminderSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talent_match_reminder_sweep_duration_seconds",
			Help:    "Duration of reminder sweeps",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15},
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(TestsGraded)
	prometheus.MustRegister(RemindersDispatched)
	prometheus.MustRegister(ReminderSweepDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
