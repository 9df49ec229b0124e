package imagecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_image_cache_hits_total",
		Help: "Total number of image cache hits",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_image_cache_misses_total",
		Help: "Total number of image cache misses",
	})

	cacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_image_cache_evictions_total",
		Help: "Total number of images evicted to stay within the byte budget",
	})

	cacheBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "books_image_cache_bytes",
		Help: "Bytes currently held by the image cache",
	})
)
