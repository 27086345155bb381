package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbbs_threads_created_total",
			Help: "Total number of threads created",
		},
		[]string{"board"},
	)

	commentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbbs_comments_created_total",
			Help: "Total number of comments created",
		},
		[]string{"board", "moderated"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbbs_rate_limited_total",
			Help: "Submissions rejected by the interval gate",
		},
		[]string{"board"},
	)
)
