package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_planner_refresh_total",
		Help: "Total refreshes by result",
	}, []string{"result"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mentor_planner_refresh_duration_seconds",
		Help:    "Refresh duration in seconds, requirements fetch included",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	resolutionPasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mentor_planner_resolution_passes",
		Help:    "Passes of the resolution loop per refresh",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	placementTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_planner_placement_total",
		Help: "Total placement attempts by result",
	}, []string{"result"})

	removedCourses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentor_planner_removed_courses_total",
		Help: "Courses taken off plans by repair or pruning",
	}, []string{"cause"})
)
