package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"askdb/pkg/logger"
)

var (
	initOnce sync.Once

	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter

	requestDuration *prometheus.HistogramVec
)

// Init registers the client metrics on the default prometheus registry.
// Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "askdb_cache_hits_total",
			Help: "Requests served from the request cache (shared in-flight or settled entries).",
		})
		cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "askdb_cache_misses_total",
			Help: "Requests that created a new cache entry and hit the network.",
		})
		cacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "askdb_cache_evictions_total",
			Help: "Cache entries removed by TTL timers or invalidation.",
		})
		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "askdb_request_duration_seconds",
			Help:    "Duration of backend calls by endpoint and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"})
		prometheus.MustRegister(cacheHits, cacheMisses, cacheEvictions, requestDuration)
	})
}

// CacheHit counts a request served from an existing cache entry.
func CacheHit() {
	if cacheHits != nil {
		cacheHits.Inc()
	}
}

// CacheMiss counts a request that went to the network.
func CacheMiss() {
	if cacheMisses != nil {
		cacheMisses.Inc()
	}
}

// CacheEviction counts an entry removed by timer or invalidation.
func CacheEviction() {
	if cacheEvictions != nil {
		cacheEvictions.Inc()
	}
}

// ObserveRequest records one backend call.
func ObserveRequest(endpoint string, d time.Duration, err error) {
	if requestDuration == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestDuration.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}

// Serve exposes /metrics on addr until the process exits. Listener
// errors are logged, not fatal.
func Serve(addr string) {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	go func() {
		handler := func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/metrics" {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			h(ctx)
		}
		if err := fasthttp.ListenAndServe(addr, handler); err != nil {
			logger.Error("metrics_listener_failed", "addr", addr, "error", err)
		}
	}()
}
