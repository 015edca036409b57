package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal          *prometheus.CounterVec
	storiesGeneratedTotal *prometheus.CounterVec
	storyDuration         *prometheus.HistogramVec
	decisionsTotal        *prometheus.CounterVec
	checksTotal           *prometheus.CounterVec
	chatRepliesTotal      *prometheus.CounterVec
	chatDuration          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minerva",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "minerva",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "documents",
			Name:      "uploads_total",
			Help:      "Total document uploads by file type.",
		},
		[]string{"service", "file_type"},
	)
	storiesGeneratedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "stories",
			Name:      "generated_total",
			Help:      "Total generated stories by narrative framework.",
		},
		[]string{"service", "framework"},
	)
	storyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minerva",
			Subsystem: "stories",
			Name:      "generation_duration_seconds",
			Help:      "Story generation duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 180},
		},
		[]string{"service"},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "progress",
			Name:      "decisions_total",
			Help:      "Total decision point answers recorded.",
		},
		[]string{"service"},
	)
	checksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "progress",
			Name:      "knowledge_checks_total",
			Help:      "Total knowledge check submissions by result.",
		},
		[]string{"service", "result"},
	)
	chatRepliesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Total chat replies by context and response type.",
		},
		[]string{"service", "context", "type"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minerva",
			Subsystem: "chat",
			Name:      "reply_duration_seconds",
			Help:      "Chat reply duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "context"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		storiesGeneratedTotal,
		storyDuration,
		decisionsTotal,
		checksTotal,
		chatRepliesTotal,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		uploadsTotal:          uploadsTotal,
		storiesGeneratedTotal: storiesGeneratedTotal,
		storyDuration:         storyDuration,
		decisionsTotal:        decisionsTotal,
		checksTotal:           checksTotal,
		chatRepliesTotal:      chatRepliesTotal,
		chatDuration:          chatDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource IDs so path labels stay low-cardinality.
func normalizePath(path string) string {
	const prefix = "/api/v1/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	parts := strings.Split(strings.Trim(path[len(prefix):], "/"), "/")
	for i := 1; i < len(parts); i += 2 {
		parts[i] = "{id}"
	}
	return prefix + strings.Join(parts, "/")
}

func (m *HTTPServerMetrics) RecordUpload(service, fileType string) {
	if fileType == "" {
		fileType = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, fileType).Inc()
}

func (m *HTTPServerMetrics) RecordStoryGenerated(service, framework string, duration time.Duration) {
	if framework == "" {
		framework = "unknown"
	}
	m.storiesGeneratedTotal.WithLabelValues(service, framework).Inc()
	m.storyDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordDecision(service string) {
	m.decisionsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordKnowledgeCheck(service string, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.checksTotal.WithLabelValues(service, result).Inc()
}

func (m *HTTPServerMetrics) RecordChatReply(service, chatContext, responseType string, duration time.Duration) {
	if chatContext == "" {
		chatContext = "general"
	}
	if responseType == "" {
		responseType = "answer"
	}
	m.chatRepliesTotal.WithLabelValues(service, chatContext, responseType).Inc()
	m.chatDuration.WithLabelValues(service, chatContext).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
