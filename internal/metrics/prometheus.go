package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

var (
	fetchesTotal   prometheus.Counter
	visitsTotal    prometheus.Counter
	decisionsTotal *prometheus.CounterVec

	once sync.Once
)

// Init registers the Prometheus collectors. It is safe to call multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "news_crawler_fetches_total",
			Help: "Total number of fetch attempts, failed ones included.",
		})
		visitsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "news_crawler_visits_total",
			Help: "Total number of pages handed to the parser.",
		})
		decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "news_crawler_url_decisions_total",
			Help: "Total number of classified URLs, labeled by indicator.",
		}, []string{"indicator"})
	})
}

// observe forwards increments to the collectors once Init has run
func observe(fetches, visits, within, outside int) {
	if fetchesTotal == nil {
		return
	}
	fetchesTotal.Add(float64(fetches))
	visitsTotal.Add(float64(visits))
	decisionsTotal.WithLabelValues(telemetry.IndicatorWithin).Add(float64(within))
	decisionsTotal.WithLabelValues(telemetry.IndicatorOutside).Add(float64(outside))
}

// Handler returns an http.Handler exposing the Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a background /metrics endpoint on addr. Shut it down with the returned server.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.Infof("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Metrics endpoint failed: %v", err)
		}
	}()
	return srv
}
